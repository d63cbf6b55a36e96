package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/internal/repository"
	"github.com/medicore/hospital-api/internal/service/outbox"
)

// Service manages doctor records. Lookups by id are cached because the
// scheduling paths fetch the doctor on every booking and every slot query;
// mutations invalidate the cached entry.
type Service struct {
	repo   repository.DoctorRepository
	cache  *cache.Cache
	events *outbox.Recorder
	logger zerolog.Logger
}

func NewService(repo repository.DoctorRepository, ttl, cleanup time.Duration, events *outbox.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache.New(ttl, cleanup),
		events: events,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if err := validateWorkingHours(req.DayStart, req.DayEnd); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doctor := &model.Doctor{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           req.Name,
		Specialty:      req.Specialty,
		Phone:          req.Phone,
		Email:          req.Email,
		Qualifications: req.Qualifications,
		LicenseNumber:  req.LicenseNumber,
		ExperienceYrs:  req.ExperienceYrs,
		WorkingDays:    req.WorkingDays,
		DayStart:       req.DayStart,
		DayEnd:         req.DayEnd,
		Status:         model.DoctorStatusActive,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	s.events.Record(ctx, "doctor.created", doctor)

	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), doctor, cache.DefaultExpiration)
	return doctor, nil
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Qualifications != nil {
		doctor.Qualifications = req.Qualifications
	}
	if req.LicenseNumber != nil {
		doctor.LicenseNumber = *req.LicenseNumber
	}
	if req.ExperienceYrs != nil {
		doctor.ExperienceYrs = *req.ExperienceYrs
	}
	if req.WorkingDays != nil {
		doctor.WorkingDays = req.WorkingDays
	}
	if req.DayStart != nil {
		doctor.DayStart = *req.DayStart
	}
	if req.DayEnd != nil {
		doctor.DayEnd = *req.DayEnd
	}
	if req.Status != nil {
		doctor.Status = model.DoctorStatus(*req.Status)
	}

	if err := validateWorkingHours(doctor.DayStart, doctor.DayEnd); err != nil {
		return nil, err
	}

	doctor.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}

	s.cache.Delete(id.String())
	s.events.Record(ctx, "doctor.updated", doctor)

	return doctor, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(id.String())
	s.events.Record(ctx, "doctor.deleted", map[string]string{"id": id.String()})

	return nil
}
