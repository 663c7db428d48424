// Package timerange provides pure helpers over same-day "HH:MM" wall-clock
// values. All functions are total; ranges are half-open so a session ending
// exactly when another begins does not overlap it.
package timerange

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time expressed as minutes since midnight.
type Clock int

// Parse converts an "HH:MM" 24-hour string into a Clock.
func Parse(value string) (Clock, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String renders the clock back to "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// IsValidRange reports whether end is strictly after start. Zero-length
// ranges are invalid.
func IsValidRange(start, end Clock) bool {
	return end > start
}

// Overlaps reports whether two same-day ranges intersect. Half-open interval
// semantics: adjacency (endA == startB) is not an overlap.
func Overlaps(startA, endA, startB, endB Clock) bool {
	return startA < endB && startB < endA
}
