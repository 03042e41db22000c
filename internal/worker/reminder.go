package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	"github.com/medicenter/booking-api/pkg/metrics"
)

// ReminderNotifier sends one reminder stage for an appointment.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, apt *model.Appointment, p *model.Patient, stage int) error
}

// reminderStages maps each reminder to the lead time at which it becomes
// due: a basic reminder two days out, a forms check one day out, and a
// final confirmation request four hours before the visit.
var reminderStages = []time.Duration{
	48 * time.Hour,
	24 * time.Hour,
	4 * time.Hour,
}

// ReminderProcessor polls confirmed appointments and sends the three
// sequenced reminders. An appointment cancelled before a reminder is due
// is skipped; there is no retry beyond the fixed sequence.
type ReminderProcessor struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	notifier     ReminderNotifier
	interval     time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewReminderProcessor(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	notifier ReminderNotifier,
	interval time.Duration,
	m *metrics.Metrics,
) *ReminderProcessor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderProcessor{
		appointments: appointments,
		patients:     patients,
		notifier:     notifier,
		interval:     interval,
		metrics:      m,
		now:          time.Now,
	}
}

func (p *ReminderProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", p.interval).Msg("starting reminder processor")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down reminder processor")
			return
		case <-ticker.C:
			if err := p.ProcessDue(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process reminders")
			}
		}
	}
}

// ProcessDue sends every reminder that has become due. Exported so one
// pass can be driven directly.
func (p *ReminderProcessor) ProcessDue(ctx context.Context) error {
	confirmed, err := p.appointments.List(ctx, model.AppointmentFilters{
		Status: model.AppointmentStatusConfirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to list confirmed appointments: %w", err)
	}

	for _, apt := range confirmed {
		if err := p.processAppointment(ctx, apt); err != nil {
			log.Error().Err(err).Str("appointment_id", apt.ID).Msg("reminder failed")
		}
	}
	return nil
}

func (p *ReminderProcessor) processAppointment(ctx context.Context, apt *model.Appointment) error {
	if apt.RemindersSent >= len(reminderStages) {
		return nil
	}

	start, err := apt.StartsAt()
	if err != nil {
		return err
	}
	until := start.Sub(p.now())
	if until < 0 {
		// Visit has started; the remaining sequence is moot.
		return nil
	}

	stage := apt.RemindersSent + 1
	if until > reminderStages[stage-1] {
		return nil
	}

	patient, err := p.patients.Get(ctx, apt.PatientID)
	if err != nil {
		return err
	}

	// Delivery failure is logged by the notifier; the stage still counts
	// as consumed, since there is no retry beyond the fixed sequence.
	if err := p.notifier.SendReminder(ctx, apt, patient, stage); err != nil {
		log.Error().Err(err).Str("appointment_id", apt.ID).Int("stage", stage).Msg("reminder delivery failed")
	}

	// Delivery can be slow (SMTP); re-read before the write-back so a
	// cancellation that landed mid-send is not overwritten with the
	// stale confirmed snapshot.
	current, err := p.appointments.Get(ctx, apt.ID)
	if err != nil {
		return err
	}
	if current.Status != model.AppointmentStatusConfirmed {
		log.Info().Str("appointment_id", apt.ID).Int("stage", stage).Msg("appointment no longer confirmed, reminder sequence stopped")
		return nil
	}
	current.RemindersSent = stage
	current.UpdatedAt = p.now()
	if err := p.appointments.Update(ctx, current); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RemindersSent.WithLabelValues(strconv.Itoa(stage)).Inc()
	}
	log.Info().Str("appointment_id", apt.ID).Int("stage", stage).Msg("reminder sent")
	return nil
}
