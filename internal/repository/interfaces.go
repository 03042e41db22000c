package repository

import (
	"context"
	"time"

	"github.com/medicenter/booking-api/internal/model"
)

// SlotFilter narrows slot queries. Zero values are ignored.
type SlotFilter struct {
	DoctorID        string
	From            time.Time
	To              time.Time
	DurationMinutes int
	Status          model.SlotStatus
}

type PatientRepository interface {
	Get(ctx context.Context, id string) (*model.Patient, error)
	// FindByIdentity matches by name (case-insensitive), narrowed by DOB
	// and phone when set. Returns nil without error when no row matches.
	FindByIdentity(ctx context.Context, identity model.PatientIdentity) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Upsert(ctx context.Context, patient *model.Patient) error
}

type DoctorRepository interface {
	Get(ctx context.Context, id string) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	// ReplaceAll overwrites the whole table, used at schedule-generation time.
	ReplaceAll(ctx context.Context, doctors []*model.Doctor) error
}

type SlotRepository interface {
	Get(ctx context.Context, id string) (*model.Slot, error)
	Find(ctx context.Context, filter SlotFilter) ([]*model.Slot, error)
	List(ctx context.Context) ([]*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	// ReplaceAll overwrites the whole table, used at schedule-generation time.
	ReplaceAll(ctx context.Context, slots []*model.Slot) error
}

type AppointmentRepository interface {
	Get(ctx context.Context, id string) (*model.Appointment, error)
	// FindConfirmedBySlot returns the confirmed appointment holding the
	// slot, or nil when the slot is unclaimed.
	FindConfirmedBySlot(ctx context.Context, slotID string) (*model.Appointment, error)
	List(ctx context.Context, filters model.AppointmentFilters) ([]*model.Appointment, error)
	Create(ctx context.Context, appointment *model.Appointment) error
	Update(ctx context.Context, appointment *model.Appointment) error
}
