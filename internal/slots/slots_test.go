package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 18)
	assert.Equal(t, "06:00 - 07:00", all[0])
	assert.Equal(t, "23:00 - 00:00", all[17])
}

func TestForDate_FutureDateKeepsEverything(t *testing.T) {
	now := time.Date(2025, 6, 1, 22, 45, 0, 0, time.UTC)
	got := ForDate(date(2025, 6, 2), now)
	assert.Len(t, got, 18)
}

func TestForDate_TodayFilters(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		first string
		count int
	}{
		{
			name:  "mid hour drops current hour",
			now:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
			first: "10:00 - 11:00",
			count: 14,
		},
		{
			name:  "exact hour keeps current hour",
			now:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			first: "09:00 - 10:00",
			count: 15,
		},
		{
			name:  "before opening keeps everything",
			now:   time.Date(2025, 6, 1, 5, 15, 0, 0, time.UTC),
			first: "06:00 - 07:00",
			count: 18,
		},
		{
			name:  "last hour only",
			now:   time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC),
			first: "23:00 - 00:00",
			count: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForDate(date(2025, 6, 1), tt.now)
			require.Len(t, got, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, got[0])
			}
		})
	}
}

func TestForDate_TodayAfterClose(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 1, 0, 0, time.UTC)
	assert.Empty(t, ForDate(date(2025, 6, 1), now))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("06:00 - 07:00"))
	assert.True(t, Valid("23:00 - 00:00"))
	assert.False(t, Valid("05:00 - 06:00"))
	assert.False(t, Valid("06:00-07:00"))
	assert.False(t, Valid("garbage"))
	assert.False(t, Valid(""))
}

func TestEndInstant(t *testing.T) {
	d := date(2025, 6, 1)

	end, err := EndInstant(d, "10:00 - 11:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), end)

	// midnight rollover: the slot ends at 00:00 of the *next* day
	end, err = EndInstant(d, "23:00 - 00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestEndInstant_Malformed(t *testing.T) {
	d := date(2025, 6, 1)
	for _, slot := range []string{"", "10:00", "10:00 - ", "aa:bb - cc:dd", "10:00 - 25:00"} {
		_, err := EndInstant(d, slot)
		assert.Error(t, err, "slot %q", slot)
	}
}
