package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/pkg/metrics"
)

const (
	channelEmail = "email"
	channelSMS   = "sms"
)

// EmailSender delivers an HTML message to one recipient.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMSSender delivers a short text message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// Service sends booking confirmations, the intake form, and the three
// sequenced reminders. It is stateless with respect to booking
// correctness: an unconfigured channel is a logged no-op and a delivery
// failure never fails the booking that triggered it.
type Service struct {
	email      EmailSender
	sms        SMSSender
	clinicName string
	metrics    *metrics.Metrics
}

// NewService creates the notifier. Either sender may be nil when its
// channel credentials are absent from the environment.
func NewService(email EmailSender, sms SMSSender, clinicName string, m *metrics.Metrics) *Service {
	if clinicName == "" {
		clinicName = "Medical Center"
	}
	return &Service{email: email, sms: sms, clinicName: clinicName, metrics: m}
}

// SendConfirmation emails the appointment confirmation.
func (s *Service) SendConfirmation(ctx context.Context, apt *model.Appointment, patient *model.Patient) error {
	subject := fmt.Sprintf("Appointment Confirmation - %s", s.clinicName)
	body := fmt.Sprintf(`<html><body>
<h2>Appointment Confirmation</h2>
<p>Dear %s,</p>
<p>Your appointment has been successfully scheduled:</p>
<div style="background-color:#f5f5f5;padding:15px;margin:10px 0;border-radius:5px;">
<strong>Date:</strong> %s<br>
<strong>Time:</strong> %s<br>
<strong>Location:</strong> %s<br>
<strong>Duration:</strong> %d minutes<br>
<strong>Appointment ID:</strong> %s
</div>
<p><strong>Important notes:</strong></p>
<ul>
<li>Please arrive 15 minutes before your appointment time</li>
<li>Bring a valid ID and your insurance card</li>
<li>You will receive a patient intake form separately</li>
</ul>
<p>If you need to reschedule or cancel, please contact us at least 24 hours in advance.</p>
<p>Best regards,<br>%s Scheduling Team</p>
</body></html>`,
		patient.Name, formatDate(apt.Date), formatTime(apt.StartTime), apt.Location, apt.DurationMinutes, apt.ID, s.clinicName)

	return s.sendEmail(ctx, patient.Email, subject, body)
}

// SendIntakeForm emails the intake form request for an upcoming visit.
func (s *Service) SendIntakeForm(ctx context.Context, apt *model.Appointment, patient *model.Patient) error {
	subject := "Patient Intake Form - Please Complete Before Your Visit"
	body := fmt.Sprintf(`<html><body>
<h2>Patient Intake Form</h2>
<p>Dear %s,</p>
<p>Please complete the patient intake form for your upcoming appointment:</p>
<div style="background-color:#e8f4fd;padding:15px;margin:10px 0;border-radius:5px;">
<strong>Appointment:</strong> %s at %s
</div>
<p><strong>Please complete this form and bring it with you to your appointment.</strong></p>
<p>Best regards,<br>%s Team</p>
</body></html>`,
		patient.Name, formatDate(apt.Date), formatTime(apt.StartTime), s.clinicName)

	return s.sendEmail(ctx, patient.Email, subject, body)
}

// SendReminder sends reminder stage 1, 2, or 3 over email and SMS with
// escalating copy: basic, forms check, final confirmation.
func (s *Service) SendReminder(ctx context.Context, apt *model.Appointment, patient *model.Patient, stage int) error {
	date := formatDate(apt.Date)
	at := formatTime(apt.StartTime)

	var subject, body string
	switch stage {
	case 1:
		subject = "Appointment Reminder"
		body = fmt.Sprintf(`<html><body>
<h2>Appointment Reminder</h2>
<p>Dear %s,</p>
<p>This is a reminder about your appointment:</p>
<p><strong>%s at %s</strong></p>
<p>See you soon!</p>
</body></html>`, patient.Name, date, at)
	case 2:
		subject = "Appointment Reminder - Have you completed your forms?"
		body = fmt.Sprintf(`<html><body>
<h2>Appointment Reminder</h2>
<p>Dear %s,</p>
<p>Your appointment is coming up: <strong>%s at %s</strong></p>
<p><strong>Have you completed your patient intake forms?</strong></p>
<p>If not, please complete them before your visit. Reply to confirm your attendance.</p>
</body></html>`, patient.Name, date, at)
	case 3:
		subject = "Final Appointment Reminder - Please Confirm"
		body = fmt.Sprintf(`<html><body>
<h2>Final Appointment Reminder</h2>
<p>Dear %s,</p>
<p>Your appointment is today: <strong>%s at %s</strong></p>
<p><strong>Please confirm your attendance or let us know if you need to cancel.</strong></p>
<p>If cancelling, please provide the reason.</p>
</body></html>`, patient.Name, date, at)
	default:
		return fmt.Errorf("invalid reminder stage %d", stage)
	}

	emailErr := s.sendEmail(ctx, patient.Email, subject, body)
	smsErr := s.sendSMS(ctx, patient.Phone,
		fmt.Sprintf("Appointment reminder: %s at %s. Please arrive 15 minutes early.", date, at))

	if emailErr != nil {
		return emailErr
	}
	return smsErr
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	if s.email == nil {
		log.Debug().Str("to", to).Str("subject", subject).Msg("email channel not configured, skipping")
		return nil
	}
	if err := s.email.Send(ctx, to, subject, body); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(channelEmail).Inc()
		}
		log.Error().Err(err).Str("to", to).Msg("failed to send email")
		return err
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(channelEmail).Inc()
	}
	return nil
}

func (s *Service) sendSMS(ctx context.Context, to, body string) error {
	if s.sms == nil {
		log.Debug().Str("to", to).Msg("sms channel not configured, skipping")
		return nil
	}
	if err := s.sms.Send(ctx, to, body); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(channelSMS).Inc()
		}
		log.Error().Err(err).Str("to", to).Msg("failed to send SMS")
		return err
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(channelSMS).Inc()
	}
	return nil
}

func formatDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func formatTime(hhmm string) string {
	t, err := time.Parse(model.TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}
