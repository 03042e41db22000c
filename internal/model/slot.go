package model

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotStatusFree   SlotStatus = "free"
	SlotStatusBooked SlotStatus = "booked"
)

// Wire formats for slot dates and times, matching the flat tables.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Slot is a fixed-duration time window offered by a doctor. Slots are
// created at schedule-generation time and only ever flip between free and
// booked; history is retained.
type Slot struct {
	ID              string     `csv:"slot_id" json:"slot_id"`
	DoctorID        string     `csv:"doctor_id" json:"doctor_id"`
	Date            string     `csv:"date" json:"date"`
	StartTime       string     `csv:"start_time" json:"start_time"`
	DurationMinutes int        `csv:"duration_minutes" json:"duration_minutes"`
	Status          SlotStatus `csv:"status" json:"status"`
}

// StartsAt parses the slot's date and start time in the local zone.
func (s *Slot) StartsAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.StartTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q %q: %w", s.Date, s.StartTime, err)
	}
	return t, nil
}
