package csvstore

import (
	"context"
	"sort"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	"github.com/medicenter/booking-api/pkg/errors"
)

type slotRepository struct {
	store *Store
}

func NewSlotRepository(store *Store) *slotRepository {
	return &slotRepository{store: store}
}

func (r *slotRepository) Get(ctx context.Context, id string) (*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Slot](r.store, SlotsTable)
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.NotFound("slot", nil)
}

func (r *slotRepository) Find(ctx context.Context, filter repository.SlotFilter) ([]*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Slot](r.store, SlotsTable)
	if err != nil {
		return nil, err
	}

	var out []*model.Slot
	for _, s := range rows {
		if filter.DoctorID != "" && s.DoctorID != filter.DoctorID {
			continue
		}
		if filter.DurationMinutes != 0 && s.DurationMinutes != filter.DurationMinutes {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() || !filter.To.IsZero() {
			start, err := s.StartsAt()
			if err != nil {
				return nil, err
			}
			if !filter.From.IsZero() && start.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && start.After(filter.To) {
				continue
			}
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *slotRepository) List(ctx context.Context) ([]*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return load[model.Slot](r.store, SlotsTable)
}

func (r *slotRepository) Update(ctx context.Context, slot *model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := load[model.Slot](r.store, SlotsTable)
	if err != nil {
		return err
	}
	for i, s := range rows {
		if s.ID == slot.ID {
			rows[i] = slot
			return save(r.store, SlotsTable, rows)
		}
	}
	return errors.NotFound("slot", nil)
}

func (r *slotRepository) ReplaceAll(ctx context.Context, slots []*model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return save(r.store, SlotsTable, slots)
}
