package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/internal/repository"
	"github.com/medicore/hospital-api/internal/service/outbox"
)

type Service struct {
	repo         repository.PrescriptionRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	events       *outbox.Recorder
	logger       zerolog.Logger
}

func NewService(
	repo repository.PrescriptionRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	events *outbox.Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
		events:       events,
		logger:       logger,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		return nil, err
	}
	if req.AppointmentID != nil {
		if _, err := s.appointments.Get(ctx, *req.AppointmentID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	prescription := &model.Prescription{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Medications:   req.Medications,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
		FollowUpDate:  req.FollowUpDate,
		Status:        model.PrescriptionStatusActive,
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	s.events.Record(ctx, "prescription.created", prescription)

	return prescription, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Medications != nil {
		prescription.Medications = req.Medications
	}
	if req.Diagnosis != nil {
		prescription.Diagnosis = *req.Diagnosis
	}
	if req.Notes != nil {
		prescription.Notes = *req.Notes
	}
	if req.FollowUpDate != nil {
		prescription.FollowUpDate = req.FollowUpDate
	}
	if req.Status != nil {
		prescription.Status = model.PrescriptionStatus(*req.Status)
	}

	prescription.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, prescription); err != nil {
		return nil, fmt.Errorf("failed to update prescription: %w", err)
	}
	s.events.Record(ctx, "prescription.updated", prescription)

	return prescription, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Record(ctx, "prescription.deleted", map[string]string{"id": id.String()})
	return nil
}
