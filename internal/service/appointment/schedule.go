package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicore/hospital-api/internal/model"
)

// ConflictError is returned when a candidate appointment overlaps an existing
// booking for the same doctor and day. User-correctable; handlers map it to a
// 400, never a 500.
type ConflictError struct {
	AppointmentID uuid.UUID
	StartTime     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointment overlaps with existing appointment (%s)", e.StartTime)
}

// NotAvailableError is returned when slots are requested for a weekday the
// doctor does not work. Distinct from an empty slot list, which means the
// doctor works that day but is fully booked.
type NotAvailableError struct {
	Weekday time.Weekday
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("doctor is not available on %s", e.Weekday)
}

// parseClock converts a zero-padded 24-hour "HH:MM" string to minutes since
// midnight.
func parseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// formatClock renders minutes since midnight back to zero-padded "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// overlaps reports whether the half-open intervals [a0,a1) and [b0,b1)
// intersect. Touching endpoints do not count: an appointment ending at 10:00
// does not conflict with one starting at 10:00.
func overlaps(a0, a1, b0, b1 int) bool {
	return a0 < b1 && a1 > b0
}

// findConflict scans existing appointments in the order they were fetched and
// returns a ConflictError for the first one whose interval overlaps
// [startMinutes, startMinutes+durationMinutes). Returns nil when the candidate
// fits. A stored appointment with an unparseable start time is an
// infrastructure failure, not a conflict.
func findConflict(existing []*model.Appointment, startMinutes, durationMinutes int) error {
	candidateEnd := startMinutes + durationMinutes
	for _, apt := range existing {
		bookedStart, err := parseClock(apt.StartTime)
		if err != nil {
			return fmt.Errorf("stored appointment %s has invalid start time: %w", apt.ID, err)
		}
		if overlaps(startMinutes, candidateEnd, bookedStart, bookedStart+apt.DurationMinutes) {
			return &ConflictError{
				AppointmentID: apt.ID,
				StartTime:     apt.StartTime,
			}
		}
	}
	return nil
}

// availableSlots walks the fixed grid of candidate start times within the
// working window and keeps every position whose interval overlaps no booked
// appointment. Candidates are spaced exactly slotDuration apart starting at
// dayStart; a position whose slot would extend past dayEnd is never offered.
// The result is ascending and may be empty (fully booked day).
func availableSlots(dayStart, dayEnd, slotDuration int, existing []*model.Appointment) ([]string, error) {
	type interval struct{ start, end int }
	booked := make([]interval, 0, len(existing))
	for _, apt := range existing {
		start, err := parseClock(apt.StartTime)
		if err != nil {
			return nil, fmt.Errorf("stored appointment %s has invalid start time: %w", apt.ID, err)
		}
		booked = append(booked, interval{start, start + apt.DurationMinutes})
	}

	slots := []string{}
	for t := dayStart; t+slotDuration <= dayEnd; t += slotDuration {
		free := true
		for _, b := range booked {
			if overlaps(t, t+slotDuration, b.start, b.end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, formatClock(t))
		}
	}
	return slots, nil
}
