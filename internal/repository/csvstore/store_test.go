package csvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
)

func TestPatientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(New(t.TempDir()))

	// Missing file reads as an empty table
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	now := time.Now().UTC().Truncate(time.Second)
	p := &model.Patient{
		ID:        "p-1",
		Name:      "Jane Doe",
		DOB:       "1990-05-15",
		Phone:     "555-123-4567",
		Email:     "jane@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "1990-05-15", got.DOB)
	assert.Equal(t, 0, got.PreviousVisits)

	// Upsert replaces in place, no duplicate row
	got.PreviousVisits = 3
	require.NoError(t, repo.Upsert(ctx, got))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].PreviousVisits)

	_, err = repo.Get(ctx, "missing")
	assert.Error(t, err)
}

func TestPatientRepository_FindByIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(New(t.TempDir()))

	require.NoError(t, repo.Upsert(ctx, &model.Patient{ID: "p-1", Name: "Jane Doe", DOB: "1990-05-15", Phone: "5551234567"}))
	require.NoError(t, repo.Upsert(ctx, &model.Patient{ID: "p-2", Name: "John Smith", DOB: "1985-01-01", Phone: "5559876543"}))

	// Name match is case-insensitive
	got, err := repo.FindByIdentity(ctx, model.PatientIdentity{Name: "jane doe"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p-1", got.ID)

	// DOB narrows the match
	got, err = repo.FindByIdentity(ctx, model.PatientIdentity{Name: "Jane Doe", DOB: "1999-01-01"})
	require.NoError(t, err)
	assert.Nil(t, got)

	// Unknown identity is not an error
	got, err = repo.FindByIdentity(ctx, model.PatientIdentity{Name: "Nobody"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSlotRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(New(t.TempDir()))

	day1 := time.Now().AddDate(0, 0, 1).Format(model.DateLayout)
	day2 := time.Now().AddDate(0, 0, 2).Format(model.DateLayout)
	require.NoError(t, repo.ReplaceAll(ctx, []*model.Slot{
		{ID: "s-1", DoctorID: "d-1", Date: day2, StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusFree},
		{ID: "s-2", DoctorID: "d-1", Date: day1, StartTime: "10:00", DurationMinutes: 60, Status: model.SlotStatusFree},
		{ID: "s-3", DoctorID: "d-1", Date: day1, StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusBooked},
		{ID: "s-4", DoctorID: "d-1", Date: day1, StartTime: "13:00", DurationMinutes: 30, Status: model.SlotStatusFree},
		{ID: "s-5", DoctorID: "d-2", Date: day1, StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusFree},
	}))

	free, err := repo.Find(ctx, repository.SlotFilter{
		DoctorID:        "d-1",
		DurationMinutes: 60,
		Status:          model.SlotStatusFree,
	})
	require.NoError(t, err)
	require.Len(t, free, 2)
	// Ordered by date then start time
	assert.Equal(t, "s-2", free[0].ID)
	assert.Equal(t, "s-1", free[1].ID)

	// Date window excludes day2
	from, _ := time.ParseInLocation(model.DateLayout, day1, time.Local)
	windowed, err := repo.Find(ctx, repository.SlotFilter{
		DoctorID: "d-1",
		From:     from,
		To:       from.Add(24 * time.Hour),
		Status:   model.SlotStatusFree,
	})
	require.NoError(t, err)
	for _, s := range windowed {
		assert.Equal(t, day1, s.Date)
	}
}

func TestSlotRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(New(t.TempDir()))

	require.NoError(t, repo.ReplaceAll(ctx, []*model.Slot{
		{ID: "s-1", DoctorID: "d-1", Date: "2030-01-07", StartTime: "09:00", DurationMinutes: 60, Status: model.SlotStatusFree},
	}))

	s, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	s.Status = model.SlotStatusBooked
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, got.Status)

	assert.Error(t, repo.Update(ctx, &model.Slot{ID: "missing"}))
}

func TestAppointmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository(New(t.TempDir()))

	require.NoError(t, repo.Create(ctx, &model.Appointment{
		ID: "a-1", PatientID: "p-1", DoctorID: "d-1", SlotID: "s-1",
		Date: "2030-01-07", StartTime: "09:00", DurationMinutes: 60,
		Status: model.AppointmentStatusConfirmed,
	}))
	require.NoError(t, repo.Create(ctx, &model.Appointment{
		ID: "a-2", PatientID: "p-2", DoctorID: "d-1", SlotID: "s-2",
		Date: "2030-01-07", StartTime: "10:00", DurationMinutes: 60,
		Status: model.AppointmentStatusCancelled,
	}))

	confirmed, err := repo.List(ctx, model.AppointmentFilters{Status: model.AppointmentStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "a-1", confirmed[0].ID)

	byPatient, err := repo.List(ctx, model.AppointmentFilters{PatientID: "p-2"})
	require.NoError(t, err)
	require.Len(t, byPatient, 1)

	// Only confirmed appointments claim a slot
	claim, err := repo.FindConfirmedBySlot(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, claim)
	claim, err = repo.FindConfirmedBySlot(ctx, "s-2")
	require.NoError(t, err)
	assert.Nil(t, claim)

	a, err := repo.Get(ctx, "a-1")
	require.NoError(t, err)
	a.RemindersSent = 2
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.RemindersSent)
}
