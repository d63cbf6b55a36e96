package doctor

import (
	"context"
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
)

type mockDoctorRepo struct {
	mock.Mock
}

func (m *mockDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *mockDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *mockDoctorRepo) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *mockDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDoctorRepo) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Doctor), args.Get(1).(int64), args.Error(2)
}

type stubOutboxRepo struct{}

func (stubOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error { return nil }
func (stubOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (stubOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error {
	return nil
}

func newTestService(repo *mockDoctorRepo) *Service {
	events := outbox.NewRecorder(stubOutboxRepo{}, zerolog.Nop())
	return NewService(repo, time.Minute, time.Minute, events, zerolog.Nop())
}

func sampleDoctor() *model.Doctor {
	return &model.Doctor{
		Base:        model.Base{ID: uuid.New()},
		Name:        "Gregory House",
		Specialty:   "general_medicine",
		WorkingDays: pq.StringArray{"Monday", "Wednesday"},
		DayStart:    "09:00",
		DayEnd:      "17:00",
		Status:      model.DoctorStatusActive,
	}
}

func TestGetCachesLookups(t *testing.T) {
	repo := new(mockDoctorRepo)
	svc := newTestService(repo)

	doctor := sampleDoctor()
	repo.On("Get", mock.Anything, doctor.ID).Return(doctor, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.Get(context.Background(), doctor.ID)
		require.NoError(t, err)
		assert.Equal(t, doctor.ID, got.ID)
	}

	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := new(mockDoctorRepo)
	svc := newTestService(repo)

	doctor := sampleDoctor()
	repo.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	repo.On("Update", mock.Anything, doctor).Return(nil)

	_, err := svc.Get(context.Background(), doctor.ID)
	require.NoError(t, err)

	newEnd := "18:00"
	_, err = svc.Update(context.Background(), doctor.ID, &model.UpdateDoctorRequest{DayEnd: &newEnd})
	require.NoError(t, err)

	// Next read goes back to the repository.
	_, err = svc.Get(context.Background(), doctor.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 3)
}

func TestUpdateRejectsInvertedWindow(t *testing.T) {
	repo := new(mockDoctorRepo)
	svc := newTestService(repo)

	doctor := sampleDoctor()
	repo.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)

	badEnd := "08:00"
	_, err := svc.Update(context.Background(), doctor.ID, &model.UpdateDoctorRequest{DayEnd: &badEnd})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "day start must be before day end")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreateDefaultsToActive(t *testing.T) {
	repo := new(mockDoctorRepo)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Doctor")).Return(nil)

	doctor, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		Name:        "Gregory House",
		Specialty:   "general_medicine",
		Phone:       "555-0100",
		Email:       "house@example.com",
		WorkingDays: []string{"Monday"},
		DayStart:    "09:00",
		DayEnd:      "17:00",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DoctorStatusActive, doctor.Status)
	assert.True(t, doctor.WorksOn(time.Monday))
	assert.False(t, doctor.WorksOn(time.Sunday))
}
