package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/internal/service/outbox"
	apperrors "github.com/medicore/hospital-api/pkg/errors"
	"github.com/medicore/hospital-api/pkg/metrics"
)

// Shared across tests: prometheus collectors register globally and must not
// be created twice in one test binary.
var testMetrics = metrics.NewMetrics("test", "appointment")

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Appointment), args.Get(1).(int64), args.Error(2)
}

func (m *mockAppointmentRepo) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, day time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, doctorID, day, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

type mockDoctorGetter struct {
	mock.Mock
}

func (m *mockDoctorGetter) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

type mockPatientGetter struct {
	mock.Mock
}

func (m *mockPatientGetter) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendAppointmentConfirmation(to, patientName, doctorName, date, startTime string) error {
	return m.Called(to, patientName, doctorName, date, startTime).Error(0)
}

func testDoctor() *model.Doctor {
	return &model.Doctor{
		Base:        model.Base{ID: uuid.New()},
		Name:        "Meredith Grey",
		Specialty:   "general_medicine",
		WorkingDays: pq.StringArray{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		DayStart:    "09:00",
		DayEnd:      "17:00",
		Status:      model.DoctorStatusActive,
	}
}

func testPatient() *model.Patient {
	return &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "John Doe",
		Age:    42,
		Gender: "male",
		Status: model.PatientStatusActive,
	}
}

type stubOutboxRepo struct{}

func (stubOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error { return nil }
func (stubOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (stubOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error {
	return nil
}

func newTestService(repo *mockAppointmentRepo, doctors *mockDoctorGetter, patients *mockPatientGetter, mailer *mockMailer) *Service {
	events := outbox.NewRecorder(stubOutboxRepo{}, zerolog.Nop())
	return NewService(repo, doctors, patients, mailer, events, testMetrics, zerolog.Nop())
}

func TestCreateRejectsConflictWithoutPersisting(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	mailer := new(mockMailer)
	svc := newTestService(repo, doctors, patients, mailer)

	doctor := testDoctor()
	patient := testPatient()
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)

	// Monday 2024-06-10: existing 14:30-15:00 blocks a 14:00+45 candidate.
	existing := booked("14:30", 30)
	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, (*uuid.UUID)(nil)).
		Return([]*model.Appointment{existing}, nil)

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Date:            "2024-06-10",
		StartTime:       "14:00",
		DurationMinutes: 45,
	}, uuid.New())

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, existing.ID, conflict.AppointmentID)
	assert.Equal(t, "appointment overlaps with existing appointment (14:30)", err.Error())

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "SendAppointmentConfirmation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePersistsWhenNoOverlap(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	mailer := new(mockMailer)
	svc := newTestService(repo, doctors, patients, mailer)

	doctor := testDoctor()
	patient := testPatient()
	patient.Email = "john@example.com"
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)

	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, (*uuid.UUID)(nil)).
		Return([]*model.Appointment{booked("09:00", 30)}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)
	mailer.On("SendAppointmentConfirmation",
		"john@example.com", "John Doe", "Meredith Grey", "2024-06-10", "09:30").Return(nil)

	apt, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2024-06-10",
		StartTime: "09:30",
	}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, model.DefaultDuration, apt.DurationMinutes)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestCreateSucceedsWhenEmailFails(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	mailer := new(mockMailer)
	svc := newTestService(repo, doctors, patients, mailer)

	doctor := testDoctor()
	patient := testPatient()
	patient.Email = "john@example.com"
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)

	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, (*uuid.UUID)(nil)).
		Return([]*model.Appointment{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendAppointmentConfirmation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp unreachable"))

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2024-06-10",
		StartTime: "11:00",
	}, uuid.New())

	require.NoError(t, err)
}

func TestCreateInfrastructureErrorIsNotAConflict(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	svc := newTestService(repo, doctors, patients, new(mockMailer))

	doctor := testDoctor()
	patient := testPatient()
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	patients.On("Get", mock.Anything, patient.ID).Return(patient, nil)

	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, (*uuid.UUID)(nil)).
		Return(nil, errors.New("connection refused"))

	_, err := svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2024-06-10",
		StartTime: "09:00",
	}, uuid.New())

	require.Error(t, err)
	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateExcludesSelfFromComparison(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	svc := newTestService(repo, doctors, patients, new(mockMailer))

	doctor := testDoctor()
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	apt := booked("10:00", 30)
	apt.DoctorID = doctor.ID
	apt.Date = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	repo.On("Get", mock.Anything, apt.ID).Return(apt, nil)
	// The record's own row is excluded, so an unchanged schedule sees an
	// empty day and trivially passes.
	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, &apt.ID).
		Return([]*model.Appointment{}, nil)
	repo.On("Update", mock.Anything, apt).Return(nil)

	notes := "patient called to confirm"
	_, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Notes: &notes,
	})

	require.NoError(t, err)
	assert.Equal(t, notes, apt.Notes)
	repo.AssertExpectations(t)
}

func TestUpdateRejectsNewConflict(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	patients := new(mockPatientGetter)
	svc := newTestService(repo, doctors, patients, new(mockMailer))

	doctor := testDoctor()
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	apt := booked("09:00", 30)
	apt.DoctorID = doctor.ID
	apt.Date = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	repo.On("Get", mock.Anything, apt.ID).Return(apt, nil)
	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, mock.Anything, &apt.ID).
		Return([]*model.Appointment{booked("11:00", 60)}, nil)

	newStart := "11:30"
	_, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "11:00", conflict.StartTime)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancelRules(t *testing.T) {
	tests := []struct {
		name    string
		status  model.AppointmentStatus
		wantErr string
	}{
		{"scheduled can cancel", model.AppointmentStatusScheduled, ""},
		{"already cancelled", model.AppointmentStatusCancelled, "already cancelled"},
		{"completed cannot cancel", model.AppointmentStatusCompleted, "cannot cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockAppointmentRepo)
			svc := newTestService(repo, new(mockDoctorGetter), new(mockPatientGetter), new(mockMailer))

			apt := booked("10:00", 30)
			apt.Status = tt.status
			repo.On("Get", mock.Anything, apt.ID).Return(apt, nil)
			repo.On("Update", mock.Anything, apt).Return(nil)

			got, err := svc.Cancel(context.Background(), apt.ID)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
		})
	}
}

func TestDeleteOnlyCancelled(t *testing.T) {
	repo := new(mockAppointmentRepo)
	svc := newTestService(repo, new(mockDoctorGetter), new(mockPatientGetter), new(mockMailer))

	apt := booked("10:00", 30)
	repo.On("Get", mock.Anything, apt.ID).Return(apt, nil)

	err := svc.Delete(context.Background(), apt.ID)
	require.Error(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGetAvailableSlotsNonWorkingDay(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	svc := newTestService(repo, doctors, new(mockPatientGetter), new(mockMailer))

	doctor := testDoctor() // Monday-Friday
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	// 2024-06-09 is a Sunday.
	sunday := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetAvailableSlots(context.Background(), doctor.ID, sunday, 30)

	var notAvailable *NotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, time.Sunday, notAvailable.Weekday)
	assert.Equal(t, "doctor is not available on Sunday", err.Error())
	repo.AssertNotCalled(t, "ListForDoctorDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAvailableSlotsFullyBookedIsEmptyNotError(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	svc := newTestService(repo, doctors, new(mockPatientGetter), new(mockMailer))

	doctor := testDoctor()
	doctor.DayStart = "09:00"
	doctor.DayEnd = "10:00"
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, monday, (*uuid.UUID)(nil)).
		Return([]*model.Appointment{booked("09:00", 60)}, nil)

	slots, err := svc.GetAvailableSlots(context.Background(), doctor.ID, monday, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGetAvailableSlotsDefaultsDuration(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	svc := newTestService(repo, doctors, new(mockPatientGetter), new(mockMailer))

	doctor := testDoctor()
	doctor.DayStart = "09:00"
	doctor.DayEnd = "10:00"
	doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	repo.On("ListForDoctorDay", mock.Anything, doctor.ID, monday, (*uuid.UUID)(nil)).
		Return([]*model.Appointment{}, nil)

	slots, err := svc.GetAvailableSlots(context.Background(), doctor.ID, monday, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestGetAvailableSlotsUnknownDoctor(t *testing.T) {
	repo := new(mockAppointmentRepo)
	doctors := new(mockDoctorGetter)
	svc := newTestService(repo, doctors, new(mockPatientGetter), new(mockMailer))

	id := uuid.New()
	doctors.On("Get", mock.Anything, id).Return(nil, apperrors.NotFound("doctor", nil))

	_, err := svc.GetAvailableSlots(context.Background(), id, time.Now(), 30)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
