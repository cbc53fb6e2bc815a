package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:05", 545, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:00", 0, false},
		{"09-00", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidClock, tt.in)
		}
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "10:27", FormatClock(627))
	assert.Equal(t, "23:59", FormatClock(1439))
}

func TestWeekSetAndLookup(t *testing.T) {
	var wk Week
	require.NoError(t, wk.Set(time.Monday, "09:00", "17:00", true))
	require.NoError(t, wk.Set(time.Saturday, "10:00", "13:00", false))

	mon := wk.On(time.Monday)
	assert.True(t, mon.Valid())
	assert.Equal(t, 540, mon.Start)
	assert.Equal(t, 1020, mon.End)

	assert.False(t, wk.On(time.Saturday).Valid(), "disabled day")
	assert.False(t, wk.On(time.Sunday).Valid(), "absent day")
}

func TestWeekSetRejectsInvertedWindow(t *testing.T) {
	var wk Week
	err := wk.Set(time.Tuesday, "17:00", "09:00", true)
	require.Error(t, err)

	// A disabled window may carry any bounds; it never produces slots.
	require.NoError(t, wk.Set(time.Tuesday, "17:00", "09:00", false))
}

func TestWeekSetRejectsBadClock(t *testing.T) {
	var wk Week
	assert.ErrorIs(t, wk.Set(time.Monday, "24:00", "17:00", true), ErrInvalidClock)
	assert.ErrorIs(t, wk.Set(time.Monday, "09:00", "17:61", true), ErrInvalidClock)
}
