package schedule

// Slots generates the candidate appointment start times for one day, as
// minutes from midnight. The sequence starts at the window's start and steps
// by durationMins; a start time is included as long as it is strictly before
// the window's end, even when the appointment itself would run past it.
//
// A disabled or invalid window, or a non-positive duration, yields nil.
// The function is pure: identical inputs always produce identical output.
func Slots(w Window, durationMins int) []int {
	if !w.Valid() || durationMins <= 0 {
		return nil
	}
	out := make([]int, 0, (w.End-w.Start+durationMins-1)/durationMins)
	for at := w.Start; at < w.End; at += durationMins {
		out = append(out, at)
	}
	return out
}

// SlotTimes is Slots rendered as "HH:MM" strings.
func SlotTimes(w Window, durationMins int) []string {
	mins := Slots(w, durationMins)
	if len(mins) == 0 {
		return nil
	}
	out := make([]string, len(mins))
	for i, m := range mins {
		out[i] = FormatClock(m)
	}
	return out
}
