package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hospital-api/internal/email"
	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/internal/repository"
	"github.com/medicore/hospital-api/internal/service/outbox"
	apperrors "github.com/medicore/hospital-api/pkg/errors"
	"github.com/medicore/hospital-api/pkg/metrics"
)

// DoctorGetter is satisfied by the doctor service; lookups go through its
// cache rather than straight to the store.
type DoctorGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
}

// PatientGetter is satisfied by the patient service.
type PatientGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	doctors  DoctorGetter
	patients PatientGetter
	mailer   email.Sender
	events   *outbox.Recorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	locks    *dayLocks
}

func NewService(
	repo repository.AppointmentRepository,
	doctors DoctorGetter,
	patients PatientGetter,
	mailer email.Sender,
	events *outbox.Recorder,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		mailer:   mailer,
		events:   events,
		metrics:  m,
		logger:   logger,
		locks:    newDayLocks(),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, createdBy uuid.UUID) (*model.Appointment, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid appointment date", err)
	}

	startMinutes, err := parseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest("invalid start time", err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = model.DefaultDuration
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(dayLockKey(doctor.ID, date))
	defer unlock()

	if err := s.checkOverlap(ctx, doctor.ID, date, startMinutes, duration, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Status:          model.AppointmentStatusScheduled,
		Reason:          req.Reason,
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	s.metrics.AppointmentsCreated.Inc()
	s.events.Record(ctx, "appointment.created", apt)

	s.sendConfirmation(patient, doctor, apt)

	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

// Update applies the requested changes and re-runs the overlap check against
// the doctor's day regardless of which fields changed. The re-check is
// idempotent: an unchanged schedule trivially passes against itself because
// the appointment's own record is excluded from comparison.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PatientID != nil {
		if _, err := s.patients.Get(ctx, *req.PatientID); err != nil {
			return nil, err
		}
		apt.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		apt.DoctorID = *req.DoctorID
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, apperrors.BadRequest("invalid appointment date", err)
		}
		apt.Date = date
	}
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		apt.DurationMinutes = *req.DurationMinutes
	}
	if req.Status != nil {
		apt.Status = model.AppointmentStatus(*req.Status)
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	doctor, err := s.doctors.Get(ctx, apt.DoctorID)
	if err != nil {
		return nil, err
	}

	startMinutes, err := parseClock(apt.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest("invalid start time", err)
	}

	unlock := s.locks.acquire(dayLockKey(doctor.ID, apt.Date))
	defer unlock()

	// Cancelled and no-show appointments free their slot, so they skip the
	// guard entirely.
	if apt.Status != model.AppointmentStatusCancelled && apt.Status != model.AppointmentStatusNoShow {
		if err := s.checkOverlap(ctx, doctor.ID, apt.Date, startMinutes, apt.DurationMinutes, &apt.ID); err != nil {
			return nil, err
		}
	}

	apt.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	s.events.Record(ctx, "appointment.updated", apt)

	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("cannot cancel a completed appointment", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	s.events.Record(ctx, "appointment.cancelled", apt)

	return apt, nil
}

// Delete removes an appointment record. Only cancelled appointments may be
// deleted; everything else is history worth keeping.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("can only delete cancelled appointments", nil)
	}

	return s.repo.Delete(ctx, id)
}

// GetAvailableSlots returns the free "HH:MM" grid positions within the
// doctor's working window on the given date. A weekday outside the doctor's
// working days yields NotAvailableError; a working day with every position
// booked yields an empty list.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, slotDuration int) ([]string, error) {
	if slotDuration <= 0 {
		slotDuration = model.DefaultDuration
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if !doctor.WorksOn(date.Weekday()) {
		return nil, &NotAvailableError{Weekday: date.Weekday()}
	}

	dayStart, err := parseClock(doctor.DayStart)
	if err != nil {
		return nil, fmt.Errorf("doctor %s has invalid day start: %w", doctor.ID, err)
	}
	dayEnd, err := parseClock(doctor.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("doctor %s has invalid day end: %w", doctor.ID, err)
	}

	existing, err := s.repo.ListForDoctorDay(ctx, doctorID, date, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	s.metrics.SlotQueries.Inc()
	return availableSlots(dayStart, dayEnd, slotDuration, existing)
}

// checkOverlap fetches the doctor's active appointments on the day and rejects
// the candidate interval if it overlaps any of them. Pure read-and-decide;
// callers abort persistence on error.
func (s *Service) checkOverlap(ctx context.Context, doctorID uuid.UUID, day time.Time, startMinutes, durationMinutes int, excludeID *uuid.UUID) error {
	existing, err := s.repo.ListForDoctorDay(ctx, doctorID, day, excludeID)
	if err != nil {
		return fmt.Errorf("failed to load appointments for conflict check: %w", err)
	}

	if err := findConflict(existing, startMinutes, durationMinutes); err != nil {
		if _, ok := err.(*ConflictError); ok {
			s.metrics.BookingConflicts.Inc()
		}
		return err
	}
	return nil
}

func (s *Service) sendConfirmation(patient *model.Patient, doctor *model.Doctor, apt *model.Appointment) {
	if patient.Email == "" {
		return
	}
	err := s.mailer.SendAppointmentConfirmation(
		patient.Email,
		patient.Name,
		doctor.Name,
		apt.Date.Format("2006-01-02"),
		apt.StartTime,
	)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to send confirmation email")
	}
}
