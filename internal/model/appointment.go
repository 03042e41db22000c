package model

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment links a patient, a doctor, and a booked slot, with an
// insurance snapshot taken at booking time.
type Appointment struct {
	ID               string            `csv:"appointment_id" json:"appointment_id"`
	PatientID        string            `csv:"patient_id" json:"patient_id"`
	DoctorID         string            `csv:"doctor_id" json:"doctor_id"`
	SlotID           string            `csv:"slot_id" json:"slot_id"`
	Date             string            `csv:"date" json:"date"`
	StartTime        string            `csv:"start_time" json:"start_time"`
	DurationMinutes  int               `csv:"duration_minutes" json:"duration_minutes"`
	Location         string            `csv:"location" json:"location"`
	InsuranceCarrier string            `csv:"insurance_carrier" json:"insurance_carrier"`
	MemberID         string            `csv:"member_id" json:"member_id"`
	GroupID          string            `csv:"group_id" json:"group_id"`
	Status           AppointmentStatus `csv:"status" json:"status"`
	RemindersSent    int               `csv:"reminders_sent" json:"reminders_sent"`
	CancelReason     string            `csv:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time         `csv:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `csv:"updated_at" json:"updated_at"`
}

// StartsAt parses the appointment's date and start time in the local zone.
func (a *Appointment) StartsAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.StartTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment time %q %q: %w", a.Date, a.StartTime, err)
	}
	return t, nil
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
}
