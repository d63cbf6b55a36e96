package patient

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
	repo   repository.PatientRepository
	events *outbox.Recorder
	logger zerolog.Logger
}

func NewService(repo repository.PatientRepository, events *outbox.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := time.Now().UTC()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:              req.Name,
		Age:               req.Age,
		Gender:            req.Gender,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		BloodGroup:        req.BloodGroup,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
		Medications:       req.Medications,
		EmergencyName:     req.EmergencyName,
		EmergencyPhone:    req.EmergencyPhone,
		Status:            model.PatientStatusActive,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	s.events.Record(ctx, "patient.created", patient)

	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.Allergies != nil {
		patient.Allergies = req.Allergies
	}
	if req.ChronicConditions != nil {
		patient.ChronicConditions = req.ChronicConditions
	}
	if req.Medications != nil {
		patient.Medications = req.Medications
	}
	if req.EmergencyName != nil {
		patient.EmergencyName = *req.EmergencyName
	}
	if req.EmergencyPhone != nil {
		patient.EmergencyPhone = *req.EmergencyPhone
	}
	if req.Status != nil {
		patient.Status = model.PatientStatus(*req.Status)
	}

	patient.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	s.events.Record(ctx, "patient.updated", patient)

	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Record(ctx, "patient.deleted", map[string]string{"id": id.String()})
	return nil
}
