package doctor

import (
	"time"

	apperrors "github.com/medicore/hospital-api/pkg/errors"
)

// validateWorkingHours ensures the working window is well-formed: both bounds
// parse as wall-clock times and the window is non-empty.
func validateWorkingHours(dayStart, dayEnd string) error {
	start, err := time.Parse("15:04", dayStart)
	if err != nil {
		return apperrors.BadRequest("invalid day start", err)
	}
	end, err := time.Parse("15:04", dayEnd)
	if err != nil {
		return apperrors.BadRequest("invalid day end", err)
	}
	if !start.Before(end) {
		return apperrors.BadRequest("day start must be before day end", nil)
	}
	return nil
}
