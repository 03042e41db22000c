package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Data         DataConfig
	Clinic       ClinicConfig
	Scheduler    SchedulerConfig
	Conversation ConversationConfig
	Reminders    ReminderConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DataConfig struct {
	Dir       string `mapstructure:"dir"`
	OutputDir string `mapstructure:"output_dir"`
}

type ClinicConfig struct {
	Name string `mapstructure:"name"`
}

type SchedulerConfig struct {
	LookaheadDays int `mapstructure:"lookahead_days"`
	MaxOffered    int `mapstructure:"max_offered"`
}

type ConversationConfig struct {
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
}

func (c ConversationConfig) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

type ReminderConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

func (c ReminderConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.output_dir", "outputs")
	viper.SetDefault("clinic.name", "Medical Center")
	viper.SetDefault("scheduler.lookahead_days", 14)
	viper.SetDefault("scheduler.max_offered", 10)
	viper.SetDefault("conversation.session_ttl_minutes", 30)
	viper.SetDefault("reminders.enabled", true)
	viper.SetDefault("reminders.interval_seconds", 60)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Credentials for the two notification channels come from the environment.
// Either channel may be absent; the notifier degrades it to a no-op.
type Credentials struct {
	Email EmailCredentials
	SMS   SMSCredentials
}

type EmailCredentials struct {
	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	Address  string `envconfig:"EMAIL_ADDRESS"`
	Password string `envconfig:"EMAIL_PASSWORD"`
}

func (c EmailCredentials) Configured() bool {
	return c.Address != "" && c.Password != ""
}

type SMSCredentials struct {
	AccountSID string `envconfig:"TWILIO_SID"`
	AuthToken  string `envconfig:"TWILIO_TOKEN"`
	FromNumber string `envconfig:"TWILIO_PHONE"`
}

func (c SMSCredentials) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return &creds, nil
}
