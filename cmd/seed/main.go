package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository/csvstore"
)

// seed generates the demo doctors and their slot schedule: business days
// only, 60-minute morning slots for new patients and 30-minute afternoon
// slots for returning ones.
func main() {
	var (
		dataDir = flag.String("data", "data", "directory for the CSV tables")
		days    = flag.Int("days", 14, "number of calendar days to generate")
	)
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	store := csvstore.New(*dataDir)
	doctorRepo := csvstore.NewDoctorRepository(store)
	slotRepo := csvstore.NewSlotRepository(store)

	doctors := []*model.Doctor{
		{ID: uuid.New().String(), Name: "Dr. Sarah Johnson", Specialty: "General Medicine", Location: "Main Clinic, Room 101"},
		{ID: uuid.New().String(), Name: "Dr. Michael Chen", Specialty: "Cardiology", Location: "Main Clinic, Room 205"},
		{ID: uuid.New().String(), Name: "Dr. Emily Rodriguez", Specialty: "Dermatology", Location: "West Wing, Room 310"},
		{ID: uuid.New().String(), Name: "Dr. James Wilson", Specialty: "Pediatrics", Location: "East Wing, Room 120"},
	}

	ctx := context.Background()
	if err := doctorRepo.ReplaceAll(ctx, doctors); err != nil {
		log.Fatal().Err(err).Msg("failed to write doctors")
	}

	var slots []*model.Slot
	start := time.Now().AddDate(0, 0, 1)
	for day := 0; day < *days; day++ {
		date := start.AddDate(0, 0, day)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		for _, d := range doctors {
			slots = append(slots, daySlots(d.ID, date)...)
		}
	}
	if err := slotRepo.ReplaceAll(ctx, slots); err != nil {
		log.Fatal().Err(err).Msg("failed to write slots")
	}

	log.Info().
		Str("data_dir", *dataDir).
		Int("doctors", len(doctors)).
		Int("slots", len(slots)).
		Msg("schedule generated")
	fmt.Printf("Generated %d doctors and %d slots in %s\n", len(doctors), len(slots), *dataDir)
}

// daySlots builds one doctor's slots for a single day: 60-minute slots
// from 09:00 to 12:00 and 30-minute slots from 13:00 to 17:00.
func daySlots(doctorID string, date time.Time) []*model.Slot {
	var out []*model.Slot
	day := date.Format(model.DateLayout)

	add := func(hour, minute, duration int) {
		out = append(out, &model.Slot{
			ID:              uuid.New().String(),
			DoctorID:        doctorID,
			Date:            day,
			StartTime:       fmt.Sprintf("%02d:%02d", hour, minute),
			DurationMinutes: duration,
			Status:          model.SlotStatusFree,
		})
	}

	for hour := 9; hour < 12; hour++ {
		add(hour, 0, model.DurationNewPatient)
	}
	for hour := 13; hour < 17; hour++ {
		add(hour, 0, model.DurationReturningPatient)
		add(hour, 30, model.DurationReturningPatient)
	}
	return out
}
