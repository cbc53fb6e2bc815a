package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidClock is returned when a time-of-day string is not "HH:MM".
var ErrInvalidClock = errors.New("schedule: invalid clock value, want HH:MM")

// ParseClock converts an "HH:MM" string to minutes from midnight.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, ok1 := twoDigits(value[0], value[1])
	minute, ok2 := twoDigits(value[3], value[4])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes from midnight as "HH:MM". Minute overflow past
// the hour is carried into the hour component.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
