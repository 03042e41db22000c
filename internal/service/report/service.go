package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
)

// Service exports the flat tables to spreadsheet reports for admin
// review. Exports are stateless with respect to booking correctness.
type Service struct {
	patients     repository.PatientRepository
	slots        repository.SlotRepository
	appointments repository.AppointmentRepository
	outputDir    string
}

func NewService(
	patients repository.PatientRepository,
	slots repository.SlotRepository,
	appointments repository.AppointmentRepository,
	outputDir string,
) *Service {
	return &Service{
		patients:     patients,
		slots:        slots,
		appointments: appointments,
		outputDir:    outputDir,
	}
}

// ExportAppointments writes all appointments to a timestamped XLSX file
// and returns its path.
func (s *Service) ExportAppointments(ctx context.Context) (string, error) {
	rows, err := s.appointments.List(ctx, model.AppointmentFilters{})
	if err != nil {
		return "", fmt.Errorf("failed to list appointments: %w", err)
	}

	headers := []string{
		"Appointment ID", "Patient ID", "Doctor ID", "Date", "Time",
		"Duration (min)", "Location", "Insurance", "Status", "Created At",
	}
	records := make([][]interface{}, 0, len(rows))
	for _, a := range rows {
		records = append(records, []interface{}{
			a.ID, a.PatientID, a.DoctorID, a.Date, a.StartTime,
			a.DurationMinutes, a.Location, a.InsuranceCarrier, string(a.Status),
			a.CreatedAt.Format(time.RFC3339),
		})
	}
	return s.write("Appointments", "appointments_report", headers, records)
}

// ExportPatients writes the patient table to a timestamped XLSX file.
func (s *Service) ExportPatients(ctx context.Context) (string, error) {
	rows, err := s.patients.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list patients: %w", err)
	}

	headers := []string{
		"Patient ID", "Name", "DOB", "Phone", "Email",
		"Insurance", "Member ID", "Group ID", "Previous Visits",
	}
	records := make([][]interface{}, 0, len(rows))
	for _, p := range rows {
		records = append(records, []interface{}{
			p.ID, p.Name, p.DOB, p.Phone, p.Email,
			p.InsuranceCarrier, p.MemberID, p.GroupID, p.PreviousVisits,
		})
	}
	return s.write("Patients", "patients_report", headers, records)
}

// ExportSchedules writes the slot table to a timestamped XLSX file.
func (s *Service) ExportSchedules(ctx context.Context) (string, error) {
	rows, err := s.slots.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list slots: %w", err)
	}

	headers := []string{"Slot ID", "Doctor ID", "Date", "Time", "Duration (min)", "Status"}
	records := make([][]interface{}, 0, len(rows))
	for _, sl := range rows {
		records = append(records, []interface{}{
			sl.ID, sl.DoctorID, sl.Date, sl.StartTime, sl.DurationMinutes, string(sl.Status),
		})
	}
	return s.write("Schedules", "schedules_report", headers, records)
}

func (s *Service) write(sheet, prefix string, headers []string, records [][]interface{}) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}
	for row, record := range records {
		for col, v := range record {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(records)).Msg("report exported")
	return path, nil
}
