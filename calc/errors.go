/*
errors.go - Error types for the payroll engine

PURPOSE:
  All engine error types in one place. Every error is deterministic for a
  given input: the engine is pure, so there are no transient failures and
  callers must surface any error as a request-level validation failure.

ERROR CATEGORIES:
  1. Time range errors - end clock not after start clock
  2. Format errors - malformed clock strings

Note that a maintenance tier lookup miss is NOT an error: it contributes
zero to the indemnity (see indemnities.go).

SEE ALSO:
  - time.go: Raises these from DailyHours / ParseClockMinutes
*/
package calc

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeRange is returned when an entry's end time is not
	// strictly later than its start time.
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrMalformedClock is returned when a clock string is not "HH:MM".
	ErrMalformedClock = errors.New("malformed clock time")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports the offending clock pair.
type InvalidRangeError struct {
	StartTime string
	EndTime   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range: end %q must be after start %q", e.EndTime, e.StartTime)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidTimeRange
}

// IsClientError returns true if the error is due to invalid input rather
// than an internal failure. The HTTP layer maps these to 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrMalformedClock)
}
