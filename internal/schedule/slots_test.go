package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, from, to string) Window {
	t.Helper()
	start, err := ParseClock(from)
	require.NoError(t, err)
	end, err := ParseClock(to)
	require.NoError(t, err)
	return Window{Start: start, End: end, Enabled: true}
}

func TestSlotsMondayMorning(t *testing.T) {
	w := mustWindow(t, "09:00", "09:45")
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, SlotTimes(w, 15))
}

func TestSlotsCountAndSpacing(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		duration int
		want     int
	}{
		{"full day hourly", "08:00", "17:00", 60, 9},
		{"half hour slots", "10:00", "12:00", 30, 4},
		{"exact single", "09:00", "09:15", 15, 1},
		{"twenty over ninety", "09:00", "10:30", 20, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, tt.from, tt.to)
			got := Slots(w, tt.duration)
			require.Len(t, got, tt.want)
			for i := 1; i < len(got); i++ {
				assert.Equal(t, tt.duration, got[i]-got[i-1], "slot spacing")
			}
			for _, m := range got {
				assert.Less(t, m, w.End, "slot start must stay before window end")
			}
		})
	}
}

func TestSlotsLastStartMayOverrunEnd(t *testing.T) {
	// 09:00-09:40 with 15-minute slots: 09:30 starts before the end even
	// though it finishes at 09:45.
	w := mustWindow(t, "09:00", "09:40")
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, SlotTimes(w, 15))
}

func TestSlotsMinuteOverflowCarriesHour(t *testing.T) {
	w := mustWindow(t, "09:50", "12:00")
	got := SlotTimes(w, 37)
	assert.Equal(t, []string{"09:50", "10:27", "11:04", "11:41"}, got)
}

func TestSlotsDisabledOrInvalid(t *testing.T) {
	disabled := mustWindow(t, "09:00", "17:00")
	disabled.Enabled = false
	assert.Empty(t, Slots(disabled, 15))

	assert.Empty(t, Slots(Window{}, 15), "absent window")
	assert.Empty(t, Slots(mustWindow(t, "09:00", "10:00"), 0), "zero duration")
	assert.Empty(t, Slots(mustWindow(t, "09:00", "10:00"), -5), "negative duration")

	inverted := Window{Start: 600, End: 540, Enabled: true}
	assert.Empty(t, Slots(inverted, 15))
}

func TestSlotsIdempotent(t *testing.T) {
	w := mustWindow(t, "08:30", "11:10")
	first := Slots(w, 25)
	second := Slots(w, 25)
	assert.Equal(t, first, second)
}
