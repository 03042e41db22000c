package model

import (
	"strings"
	"time"
)

// PatientClass determines the appointment duration a patient requires.
type PatientClass string

const (
	PatientClassNew       PatientClass = "new"
	PatientClassReturning PatientClass = "returning"
)

// Appointment durations in minutes, keyed on patient class.
const (
	DurationNewPatient       = 60
	DurationReturningPatient = 30
)

// RequiredDuration returns the slot duration in minutes for this class.
func (c PatientClass) RequiredDuration() int {
	if c == PatientClassReturning {
		return DurationReturningPatient
	}
	return DurationNewPatient
}

type Patient struct {
	ID                string    `csv:"patient_id" json:"patient_id"`
	Name              string    `csv:"name" json:"name"`
	DOB               string    `csv:"dob" json:"dob"`
	Phone             string    `csv:"phone" json:"phone"`
	Email             string    `csv:"email" json:"email"`
	InsuranceCarrier  string    `csv:"insurance_carrier" json:"insurance_carrier"`
	MemberID          string    `csv:"member_id" json:"member_id"`
	GroupID           string    `csv:"group_id" json:"group_id"`
	PreferredDoctorID string    `csv:"preferred_doctor_id" json:"preferred_doctor_id"`
	PreviousVisits    int       `csv:"previous_visits" json:"previous_visits"`
	CreatedAt         time.Time `csv:"created_at" json:"created_at"`
	UpdatedAt         time.Time `csv:"updated_at" json:"updated_at"`
}

// HasInsuranceOnFile reports whether insurance was ever collected. New
// records are created mid-conversation with empty insurance fields.
func (p *Patient) HasInsuranceOnFile() bool {
	carrier := strings.TrimSpace(p.InsuranceCarrier)
	return carrier != "" && !strings.EqualFold(carrier, "TBD")
}

// PatientIdentity is the lookup key collected during a conversation.
// Name is required; DOB and Phone narrow the match when provided.
type PatientIdentity struct {
	Name  string `json:"name"`
	DOB   string `json:"dob,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Insurance struct {
	Carrier  string `json:"carrier"`
	MemberID string `json:"member_id"`
	GroupID  string `json:"group_id"`
}

type RegisterPatientRequest struct {
	Name              string `json:"name" binding:"required,min=2"`
	DOB               string `json:"dob" binding:"required"`
	Phone             string `json:"phone" binding:"required,min=10"`
	Email             string `json:"email" binding:"required,email"`
	PreferredDoctorID string `json:"preferred_doctor_id"`
}
