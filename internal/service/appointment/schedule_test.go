package appointment

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/hospital-api/internal/model"
)

func booked(start string, duration int) *model.Appointment {
	return &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		StartTime:       start,
		DurationMinutes: duration,
		Status:          model.AppointmentStatusScheduled,
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:30", 0, true},
		{"930", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", formatClock(0))
	assert.Equal(t, "09:05", formatClock(545))
	assert.Equal(t, "16:30", formatClock(990))
}

func TestOverlapRejectsPartialOverlap(t *testing.T) {
	// Candidate 14:00 for 45 minutes ends 14:45; an existing 14:30-15:00
	// booking overlaps it.
	existing := []*model.Appointment{booked("14:30", 30)}

	err := findConflict(existing, 14*60, 45)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "14:30", conflict.StartTime)
	assert.Equal(t, "appointment overlaps with existing appointment (14:30)", err.Error())
}

func TestOverlapAllowsTouchingEndpoints(t *testing.T) {
	// Half-open intervals: ending at 10:00 does not conflict with starting
	// at 10:00, in either direction.
	existing := []*model.Appointment{booked("10:00", 30)}

	assert.NoError(t, findConflict(existing, 9*60+30, 30))  // 09:30-10:00
	assert.NoError(t, findConflict(existing, 10*60+30, 30)) // 10:30-11:00

	assert.Error(t, findConflict(existing, 10*60+15, 30)) // 10:15-10:45
	assert.Error(t, findConflict(existing, 9*60+45, 30))  // 09:45-10:15
}

func TestOverlapContainment(t *testing.T) {
	existing := []*model.Appointment{booked("10:00", 120)} // 10:00-12:00

	// Candidate fully inside the booking.
	assert.Error(t, findConflict(existing, 10*60+30, 30))
	// Candidate fully containing the booking.
	assert.Error(t, findConflict(existing, 9*60, 240))
}

func TestOverlapReportsFirstInFetchOrder(t *testing.T) {
	existing := []*model.Appointment{
		booked("09:00", 60),
		booked("09:30", 60),
	}

	err := findConflict(existing, 9*60+15, 30)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "09:00", conflict.StartTime)
}

func TestOverlapEmptyDay(t *testing.T) {
	assert.NoError(t, findConflict(nil, 9*60, 30))
}

func TestOverlapInvalidStoredTime(t *testing.T) {
	existing := []*model.Appointment{booked("garbage", 30)}

	err := findConflict(existing, 9*60, 30)
	require.Error(t, err)

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict), "malformed data must not be reported as a booking conflict")
}

func TestAvailableSlotsFullGrid(t *testing.T) {
	// 09:00-17:00 with 30-minute slots and no bookings: 16 slots, 09:00
	// through 16:30, never 17:00.
	slots, err := availableSlots(9*60, 17*60, 30, nil)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "16:30", slots[15])
	assert.NotContains(t, slots, "17:00")
}

func TestAvailableSlotsBookedSlotRemoved(t *testing.T) {
	existing := []*model.Appointment{booked("10:00", 30)}

	slots, err := availableSlots(9*60, 17*60, 30, existing)
	require.NoError(t, err)

	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "09:30")
	assert.Contains(t, slots, "10:30")
}

func TestAvailableSlotsScenario(t *testing.T) {
	// Doctor working 09:00-12:00, existing booking 10:00-10:30, 30-minute
	// slots. 11:30+30 lands exactly on 12:00, so 11:30 is still offered.
	existing := []*model.Appointment{booked("10:00", 30)}

	slots, err := availableSlots(9*60, 12*60, 30, existing)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slots)
}

func TestAvailableSlotsPartialTrailingWindow(t *testing.T) {
	// 09:00-10:45 with 30-minute slots: grid positions 09:00, 09:30, 10:00;
	// 10:30 would run past 10:45 and is never offered.
	slots, err := availableSlots(9*60, 10*60+45, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, slots)
}

func TestAvailableSlotsFullyBooked(t *testing.T) {
	existing := []*model.Appointment{booked("09:00", 180)}

	slots, err := availableSlots(9*60, 12*60, 30, existing)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots, "fully booked day is an empty list, not nil")
}

func TestAvailableSlotsLongerDuration(t *testing.T) {
	// 60-minute slots against a 30-minute booking: the booking knocks out
	// the whole 10:00-11:00 position.
	existing := []*model.Appointment{booked("10:00", 30)}

	slots, err := availableSlots(9*60, 12*60, 60, existing)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)
}
