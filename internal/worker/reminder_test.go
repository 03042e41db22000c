package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	"github.com/medicenter/booking-api/internal/repository/csvstore"
	"github.com/medicenter/booking-api/internal/worker"
)

type fakeNotifier struct {
	sent   []sentReminder
	fail   bool
	onSend func(apt *model.Appointment)
}

type sentReminder struct {
	appointmentID string
	stage         int
}

func (f *fakeNotifier) SendReminder(ctx context.Context, apt *model.Appointment, p *model.Patient, stage int) error {
	if f.onSend != nil {
		f.onSend(apt)
	}
	if f.fail {
		return errors.New("delivery failed")
	}
	f.sent = append(f.sent, sentReminder{appointmentID: apt.ID, stage: stage})
	return nil
}

type fixture struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	notifier     *fakeNotifier
	processor    *worker.ReminderProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := csvstore.New(t.TempDir())
	f := &fixture{
		patients:     csvstore.NewPatientRepository(store),
		appointments: csvstore.NewAppointmentRepository(store),
		notifier:     &fakeNotifier{},
	}
	f.processor = worker.NewReminderProcessor(f.appointments, f.patients, f.notifier, time.Minute, nil)

	require.NoError(t, f.patients.Upsert(context.Background(), &model.Patient{
		ID: "p-1", Name: "Jane Doe", Phone: "5551234567", Email: "jane@example.com",
	}))
	return f
}

func (f *fixture) addAppointment(t *testing.T, id string, startsIn time.Duration, status model.AppointmentStatus) {
	t.Helper()
	start := time.Now().Add(startsIn)
	require.NoError(t, f.appointments.Create(context.Background(), &model.Appointment{
		ID: id, PatientID: "p-1", DoctorID: "d-1", SlotID: "s-" + id,
		Date:      start.Format(model.DateLayout),
		StartTime: start.Format(model.TimeLayout),
		Status:    status,
	}))
}

func (f *fixture) remindersSent(t *testing.T, id string) int {
	t.Helper()
	apt, err := f.appointments.Get(context.Background(), id)
	require.NoError(t, err)
	return apt.RemindersSent
}

func TestReminderStagesAreSequenced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// Three hours out, all three lead times have passed
	f.addAppointment(t, "a-1", 3*time.Hour, model.AppointmentStatusConfirmed)

	// Only one stage goes out per pass
	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 1, f.remindersSent(t, "a-1"))

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 2, f.remindersSent(t, "a-1"))

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 3, f.remindersSent(t, "a-1"))

	// The sequence is exhausted
	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 3, f.remindersSent(t, "a-1"))

	require.Len(t, f.notifier.sent, 3)
	assert.Equal(t, []sentReminder{
		{"a-1", 1}, {"a-1", 2}, {"a-1", 3},
	}, f.notifier.sent)
}

func TestReminderNotDueYet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// 100 hours out, even the first 48-hour reminder is not due
	f.addAppointment(t, "a-1", 100*time.Hour, model.AppointmentStatusConfirmed)

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 0, f.remindersSent(t, "a-1"))
	assert.Empty(t, f.notifier.sent)
}

func TestOnlyFirstDueStageSent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// 30 hours out: first reminder due, second not yet
	f.addAppointment(t, "a-1", 30*time.Hour, model.AppointmentStatusConfirmed)

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 1, f.remindersSent(t, "a-1"))

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 1, f.remindersSent(t, "a-1"))
}

func TestCancelledAppointmentsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAppointment(t, "a-1", 3*time.Hour, model.AppointmentStatusCancelled)

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 0, f.remindersSent(t, "a-1"))
	assert.Empty(t, f.notifier.sent)
}

func TestPastAppointmentsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAppointment(t, "a-1", -2*time.Hour, model.AppointmentStatusConfirmed)

	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 0, f.remindersSent(t, "a-1"))
}

func TestCancellationDuringDeliveryIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAppointment(t, "a-1", 3*time.Hour, model.AppointmentStatusConfirmed)

	// The appointment is cancelled while the reminder is in flight; the
	// write-back must not revert it to confirmed
	f.notifier.onSend = func(apt *model.Appointment) {
		cancelled, err := f.appointments.Get(ctx, apt.ID)
		require.NoError(t, err)
		cancelled.Status = model.AppointmentStatusCancelled
		cancelled.CancelReason = "patient called in"
		require.NoError(t, f.appointments.Update(ctx, cancelled))
	}

	require.NoError(t, f.processor.ProcessDue(ctx))

	apt, err := f.appointments.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, apt.Status)
	assert.Equal(t, "patient called in", apt.CancelReason)
	assert.Equal(t, 0, apt.RemindersSent)
}

func TestDeliveryFailureConsumesStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.fail = true
	f.addAppointment(t, "a-1", 3*time.Hour, model.AppointmentStatusConfirmed)

	// A failed delivery is not retried; the stage is still recorded
	require.NoError(t, f.processor.ProcessDue(ctx))
	assert.Equal(t, 1, f.remindersSent(t, "a-1"))
}
