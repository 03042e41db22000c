package csvstore

import (
	"context"
	"sort"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/pkg/errors"
)

type appointmentRepository struct {
	store *Store
}

func NewAppointmentRepository(store *Store) *appointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Appointment](r.store, AppointmentsTable)
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.NotFound("appointment", nil)
}

func (r *appointmentRepository) FindConfirmedBySlot(ctx context.Context, slotID string) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Appointment](r.store, AppointmentsTable)
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		if a.SlotID == slotID && a.Status == model.AppointmentStatusConfirmed {
			return a, nil
		}
	}
	return nil, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters model.AppointmentFilters) ([]*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Appointment](r.store, AppointmentsTable)
	if err != nil {
		return nil, err
	}

	var out []*model.Appointment
	for _, a := range rows {
		if filters.PatientID != "" && a.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID != "" && a.DoctorID != filters.DoctorID {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Appointment](r.store, AppointmentsTable)
	if err != nil {
		return err
	}
	rows = append(rows, appointment)
	return save(r.store, AppointmentsTable, rows)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Appointment](r.store, AppointmentsTable)
	if err != nil {
		return err
	}
	for i, a := range rows {
		if a.ID == appointment.ID {
			rows[i] = appointment
			return save(r.store, AppointmentsTable, rows)
		}
	}
	return errors.NotFound("appointment", nil)
}
