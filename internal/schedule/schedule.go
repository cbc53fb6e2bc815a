package schedule

import (
	"fmt"
	"time"
)

// Window is a single weekday's working hours, in minutes from midnight.
// A zero Window is disabled.
type Window struct {
	Start   int
	End     int
	Enabled bool
}

// Valid reports whether the window can produce slots.
func (w Window) Valid() bool {
	return w.Enabled && w.Start < w.End
}

// Week is a doctor's recurring weekly schedule, indexed by time.Weekday
// (Sunday = 0). Days without working hours stay as the zero Window.
type Week [7]Window

// On returns the window for the weekday of the given date.
func (wk Week) On(day time.Weekday) Window {
	return wk[int(day)]
}

// Set stores a window for a weekday, validating its bounds.
func (wk *Week) Set(day time.Weekday, from, to string, enabled bool) error {
	start, err := ParseClock(from)
	if err != nil {
		return err
	}
	end, err := ParseClock(to)
	if err != nil {
		return err
	}
	if enabled && start >= end {
		return fmt.Errorf("schedule: window start %s must precede end %s", from, to)
	}
	wk[int(day)] = Window{Start: start, End: end, Enabled: enabled}
	return nil
}
