package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/service/notification"
)

type fakeEmail struct {
	to       []string
	subjects []string
	bodies   []string
	fail     bool
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.fail {
		return errors.New("smtp connection refused")
	}
	f.to = append(f.to, to)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, htmlBody)
	return nil
}

type fakeSMS struct {
	to     []string
	bodies []string
	fail   bool
}

func (f *fakeSMS) Send(ctx context.Context, to, body string) error {
	if f.fail {
		return errors.New("twilio unavailable")
	}
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, body)
	return nil
}

func testAppointment() (*model.Appointment, *model.Patient) {
	apt := &model.Appointment{
		ID: "a-1", Date: "2030-01-07", StartTime: "09:00",
		DurationMinutes: 60, Location: "Main Clinic, Room 101",
		Status: model.AppointmentStatusConfirmed,
	}
	p := &model.Patient{
		ID: "p-1", Name: "Jane Doe",
		Phone: "5551234567", Email: "jane@example.com",
	}
	return apt, p
}

func TestSendConfirmation(t *testing.T) {
	ctx := context.Background()
	email := &fakeEmail{}
	svc := notification.NewService(email, nil, "Test Clinic", nil)
	apt, p := testAppointment()

	require.NoError(t, svc.SendConfirmation(ctx, apt, p))
	require.Len(t, email.subjects, 1)
	assert.Equal(t, "jane@example.com", email.to[0])
	assert.Contains(t, email.subjects[0], "Test Clinic")
	assert.Contains(t, email.bodies[0], "Jane Doe")
	assert.Contains(t, email.bodies[0], apt.ID)
	assert.Contains(t, email.bodies[0], "9:00 AM")
}

func TestSendIntakeForm(t *testing.T) {
	ctx := context.Background()
	email := &fakeEmail{}
	svc := notification.NewService(email, nil, "Test Clinic", nil)
	apt, p := testAppointment()

	require.NoError(t, svc.SendIntakeForm(ctx, apt, p))
	require.Len(t, email.subjects, 1)
	assert.Contains(t, email.subjects[0], "Intake Form")
}

func TestSendReminderStages(t *testing.T) {
	ctx := context.Background()
	apt, p := testAppointment()

	email := &fakeEmail{}
	sms := &fakeSMS{}
	svc := notification.NewService(email, sms, "Test Clinic", nil)

	require.NoError(t, svc.SendReminder(ctx, apt, p, 1))
	require.NoError(t, svc.SendReminder(ctx, apt, p, 2))
	require.NoError(t, svc.SendReminder(ctx, apt, p, 3))

	require.Len(t, email.subjects, 3)
	assert.Contains(t, email.subjects[1], "forms")
	assert.Contains(t, email.subjects[2], "Final")

	// Each stage also goes out over SMS
	require.Len(t, sms.bodies, 3)
	assert.Equal(t, "5551234567", sms.to[0])
	assert.Contains(t, sms.bodies[0], "Appointment reminder")

	assert.Error(t, svc.SendReminder(ctx, apt, p, 4))
}

func TestUnconfiguredChannelsAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc := notification.NewService(nil, nil, "", nil)
	apt, p := testAppointment()

	assert.NoError(t, svc.SendConfirmation(ctx, apt, p))
	assert.NoError(t, svc.SendIntakeForm(ctx, apt, p))
	assert.NoError(t, svc.SendReminder(ctx, apt, p, 1))
}

func TestDeliveryFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	apt, p := testAppointment()

	svc := notification.NewService(&fakeEmail{fail: true}, &fakeSMS{}, "Test Clinic", nil)
	assert.Error(t, svc.SendConfirmation(ctx, apt, p))
	assert.Error(t, svc.SendReminder(ctx, apt, p, 1))

	// An SMS failure alone still surfaces
	svc = notification.NewService(&fakeEmail{}, &fakeSMS{fail: true}, "Test Clinic", nil)
	assert.Error(t, svc.SendReminder(ctx, apt, p, 1))
}
