package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
)

// Service is the patient registry and classifier. Classification is a
// deterministic read: a patient with at least one completed visit is
// returning, everyone else (including a record created mid-conversation)
// is new.
type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// Classify determines new-vs-returning status. Safe to call with nil for
// a patient not yet on file.
func (s *Service) Classify(p *model.Patient) model.PatientClass {
	if p != nil && p.PreviousVisits > 0 {
		return model.PatientClassReturning
	}
	return model.PatientClassNew
}

// ClassifyIdentity looks the identity up in the record store and
// classifies the result. No side effects.
func (s *Service) ClassifyIdentity(ctx context.Context, identity model.PatientIdentity) (model.PatientClass, error) {
	p, err := s.repo.FindByIdentity(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("failed to look up patient: %w", err)
	}
	return s.Classify(p), nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// Lookup returns the matching patient record, or nil when the identity is
// not on file.
func (s *Service) Lookup(ctx context.Context, identity model.PatientIdentity) (*model.Patient, error) {
	return s.repo.FindByIdentity(ctx, identity)
}

// Register creates a new patient record with zero previous visits.
// Insurance fields start empty and are filled in during booking.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	now := time.Now()
	p := &model.Patient{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(req.Name),
		DOB:               req.DOB,
		Phone:             req.Phone,
		Email:             req.Email,
		PreferredDoctorID: req.PreferredDoctorID,
		PreviousVisits:    0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}
	return p, nil
}

// UpdateInsurance stores the collected insurance fields on the record.
func (s *Service) UpdateInsurance(ctx context.Context, patientID string, ins model.Insurance) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	p.InsuranceCarrier = ins.Carrier
	p.MemberID = ins.MemberID
	p.GroupID = ins.GroupID
	p.UpdatedAt = time.Now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update insurance: %w", err)
	}
	return p, nil
}

// RecordVisit increments the visit counter after a confirmed booking,
// which flips the patient's class to returning.
func (s *Service) RecordVisit(ctx context.Context, patientID string) error {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return err
	}
	p.PreviousVisits++
	p.UpdatedAt = time.Now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// Search returns patients whose name contains the term, or all patients
// for an empty term.
func (s *Service) Search(ctx context.Context, term string) ([]*model.Patient, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if term == "" {
		return all, nil
	}
	term = strings.ToLower(term)
	var out []*model.Patient
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out, nil
}
