package csvstore

import (
	"context"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/pkg/errors"
)

type doctorRepository struct {
	store *Store
}

func NewDoctorRepository(store *Store) *doctorRepository {
	return &doctorRepository{store: store}
}

func (r *doctorRepository) Get(ctx context.Context, id string) (*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Doctor](r.store, DoctorsTable)
	if err != nil {
		return nil, err
	}
	for _, d := range rows {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, errors.NotFound("doctor", nil)
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return load[model.Doctor](r.store, DoctorsTable)
}

// ReplaceAll overwrites the doctors table, used by the schedule generator.
func (r *doctorRepository) ReplaceAll(ctx context.Context, doctors []*model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return save(r.store, DoctorsTable, doctors)
}
