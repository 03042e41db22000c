package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	apperrors "github.com/medicenter/booking-api/pkg/errors"
	"github.com/medicenter/booking-api/pkg/metrics"
)

var (
	// ErrSlotUnavailable is returned when a slot is no longer free at
	// commit time. Listing and booking are separate requests, so the
	// status is always re-checked before the flip.
	ErrSlotUnavailable = errors.New("slot is no longer available")

	// ErrDurationMismatch is returned when a slot's duration does not
	// match the patient's required duration class.
	ErrDurationMismatch = errors.New("slot duration does not match required appointment duration")
)

// Classifier determines a patient's duration class.
type Classifier interface {
	Classify(p *model.Patient) model.PatientClass
}

// Service allocates appointment slots: it lists free slots matching a
// required duration and books a chosen slot, preventing double-booking.
type Service struct {
	slots        repository.SlotRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	classifier   Classifier
	metrics      *metrics.Metrics
}

func NewService(
	slots repository.SlotRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	classifier Classifier,
	m *metrics.Metrics,
) *Service {
	return &Service{
		slots:        slots,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		classifier:   classifier,
		metrics:      m,
	}
}

// FindAvailable returns the free slots for a doctor within [from, to]
// whose duration matches exactly, ordered by date then start time.
// Durations are fixed per slot; there is no merging or splitting.
func (s *Service) FindAvailable(ctx context.Context, doctorID string, from, to time.Time, durationMinutes int) ([]*model.Slot, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	slots, err := s.slots.Find(ctx, repository.SlotFilter{
		DoctorID:        doctorID,
		From:            from,
		To:              to,
		DurationMinutes: durationMinutes,
		Status:          model.SlotStatusFree,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find available slots: %w", err)
	}
	return slots, nil
}

// FindAvailableForPatient classifies the patient and lists matching slots
// over the lookahead window.
func (s *Service) FindAvailableForPatient(ctx context.Context, doctorID, patientID string, from, to time.Time) ([]*model.Slot, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	required := s.classifier.Classify(p).RequiredDuration()
	return s.FindAvailable(ctx, doctorID, from, to, required)
}

// Book flips a free slot to booked and creates the appointment with an
// insurance snapshot. The slot status is re-checked at commit time; a
// slot taken between listing and booking fails with ErrSlotUnavailable
// rather than silently overwriting.
func (s *Service) Book(ctx context.Context, slotID, patientID string) (*model.Appointment, error) {
	slot, err := s.slots.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != model.SlotStatusFree {
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, ErrSlotUnavailable
	}

	// A confirmed appointment on a nominally free slot means the tables
	// disagree; refuse rather than double-book.
	if existing, err := s.appointments.FindConfirmedBySlot(ctx, slotID); err != nil {
		return nil, err
	} else if existing != nil {
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, ErrSlotUnavailable
	}

	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	required := s.classifier.Classify(p).RequiredDuration()
	if slot.DurationMinutes != required {
		return nil, ErrDurationMismatch
	}

	doctor, err := s.doctors.Get(ctx, slot.DoctorID)
	if err != nil {
		return nil, err
	}

	slot.Status = model.SlotStatusBooked
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to book slot: %w", err)
	}

	now := time.Now()
	apt := &model.Appointment{
		ID:               uuid.New().String(),
		PatientID:        p.ID,
		DoctorID:         doctor.ID,
		SlotID:           slot.ID,
		Date:             slot.Date,
		StartTime:        slot.StartTime,
		DurationMinutes:  slot.DurationMinutes,
		Location:         doctor.Location,
		InsuranceCarrier: p.InsuranceCarrier,
		MemberID:         p.MemberID,
		GroupID:          p.GroupID,
		Status:           model.AppointmentStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	p.PreviousVisits++
	p.UpdatedAt = now
	if err := s.patients.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient visits: %w", err)
	}

	if s.metrics != nil {
		s.metrics.BookingsTotal.Inc()
	}
	log.Info().
		Str("appointment_id", apt.ID).
		Str("patient_id", p.ID).
		Str("doctor_id", doctor.ID).
		Str("slot_id", slot.ID).
		Int("duration_minutes", apt.DurationMinutes).
		Msg("appointment booked")

	return apt, nil
}

// Cancel marks an appointment cancelled and frees its slot so it can be
// booked again.
func (s *Service) Cancel(ctx context.Context, appointmentID, reason string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.Conflict("cannot cancel a completed appointment", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = reason
	apt.UpdatedAt = time.Now()
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	slot, err := s.slots.Get(ctx, apt.SlotID)
	if err != nil {
		return nil, err
	}
	slot.Status = model.SlotStatusFree
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to free slot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Cancellations.Inc()
	}
	log.Info().
		Str("appointment_id", apt.ID).
		Str("slot_id", slot.ID).
		Msg("appointment cancelled")

	return apt, nil
}

// ListAppointments passes through to the record store.
func (s *Service) ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}
