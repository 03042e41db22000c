package csvstore

import (
	"context"
	"strings"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/pkg/errors"
)

type patientRepository struct {
	store *Store
}

func NewPatientRepository(store *Store) *patientRepository {
	return &patientRepository{store: store}
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Patient](r.store, PatientsTable)
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("patient", nil)
}

func (r *patientRepository) FindByIdentity(ctx context.Context, identity model.PatientIdentity) (*model.Patient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Patient](r.store, PatientsTable)
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		if !strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(identity.Name)) {
			continue
		}
		if identity.DOB != "" && p.DOB != identity.DOB {
			continue
		}
		if identity.Phone != "" && p.Phone != identity.Phone {
			continue
		}
		return p, nil
	}
	return nil, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return load[model.Patient](r.store, PatientsTable)
}

func (r *patientRepository) Upsert(ctx context.Context, patient *model.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Patient](r.store, PatientsTable)
	if err != nil {
		return err
	}
	replaced := false
	for i, p := range rows {
		if p.ID == patient.ID {
			rows[i] = patient
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, patient)
	}
	return save(r.store, PatientsTable, rows)
}
