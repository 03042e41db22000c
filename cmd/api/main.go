package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medicenter/booking-api/internal/config"
	"github.com/medicenter/booking-api/internal/email"
	appointmentHandler "github.com/medicenter/booking-api/internal/handler/appointment"
	chatHandler "github.com/medicenter/booking-api/internal/handler/chat"
	doctorHandler "github.com/medicenter/booking-api/internal/handler/doctor"
	healthHandler "github.com/medicenter/booking-api/internal/handler/health"
	patientHandler "github.com/medicenter/booking-api/internal/handler/patient"
	reportHandler "github.com/medicenter/booking-api/internal/handler/report"
	scheduleHandler "github.com/medicenter/booking-api/internal/handler/schedule"
	"github.com/medicenter/booking-api/internal/repository/csvstore"
	"github.com/medicenter/booking-api/internal/router"
	"github.com/medicenter/booking-api/internal/service/conversation"
	"github.com/medicenter/booking-api/internal/service/notification"
	patientService "github.com/medicenter/booking-api/internal/service/patient"
	reportService "github.com/medicenter/booking-api/internal/service/report"
	schedulerService "github.com/medicenter/booking-api/internal/service/scheduler"
	"github.com/medicenter/booking-api/internal/sms"
	"github.com/medicenter/booking-api/internal/worker"
	"github.com/medicenter/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load credentials")
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	m := metrics.NewMetrics("booking")

	// Repositories over the flat CSV tables
	store := csvstore.New(cfg.Data.Dir)
	patientRepo := csvstore.NewPatientRepository(store)
	doctorRepo := csvstore.NewDoctorRepository(store)
	slotRepo := csvstore.NewSlotRepository(store)
	appointmentRepo := csvstore.NewAppointmentRepository(store)

	// Services
	patientSvc := patientService.NewService(patientRepo)
	schedulerSvc := schedulerService.NewService(slotRepo, appointmentRepo, doctorRepo, patientRepo, patientSvc, m)
	reportSvc := reportService.NewService(patientRepo, slotRepo, appointmentRepo, cfg.Data.OutputDir)

	// Notification channels degrade to logged no-ops when unconfigured.
	var emailSender notification.EmailSender
	if creds.Email.Configured() {
		emailSender = email.NewSender(creds.Email)
	} else {
		log.Warn().Msg("email credentials not configured, email notifications disabled")
	}
	var smsSender notification.SMSSender
	if creds.SMS.Configured() {
		smsSender = sms.NewSender(creds.SMS)
	} else {
		log.Warn().Msg("SMS credentials not configured, SMS notifications disabled")
	}
	notificationSvc := notification.NewService(emailSender, smsSender, cfg.Clinic.Name, m)

	conversationSvc := conversation.NewService(
		patientSvc,
		schedulerSvc,
		doctorRepo,
		notificationSvc,
		reportSvc,
		cfg.Conversation.SessionTTL(),
		conversation.Options{
			LookaheadDays: cfg.Scheduler.LookaheadDays,
			MaxOffered:    cfg.Scheduler.MaxOffered,
		},
		m,
	)

	// Router and handlers
	r := router.NewRouter(
		router.Config{RateLimit: rate.Limit(100), RateBurst: 200},
		healthHandler.NewHandler(cfg.Data.Dir),
		chatHandler.NewHandler(conversationSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorRepo),
		scheduleHandler.NewHandler(slotRepo, patientRepo, doctorRepo, appointmentRepo),
		appointmentHandler.NewHandler(schedulerSvc),
		reportHandler.NewHandler(reportSvc),
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminder worker
	if cfg.Reminders.Enabled {
		processor := worker.NewReminderProcessor(
			appointmentRepo,
			patientRepo,
			notificationSvc,
			cfg.Reminders.Interval(),
			m,
		)
		go processor.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
