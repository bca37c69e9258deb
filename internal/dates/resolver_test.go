package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, iso string, loc *time.Location) func() time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", iso, loc)
	require.NoError(t, err)
	return func() time.Time { return ts }
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewResolverWithClock(loc, fixedClock(t, "2024-03-15 10:30:00", loc))
}

func TestIsValid(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"2024-02-29", true}, // leap year
		{"2023-02-29", false},
		{"2024-02-30", false},
		{"2024-13-01", false},
		{"2024-00-10", false},
		{"2024-01-00", false},
		{"2024/01/01", false},
		{"2024-1-1", false},
		{"01-01-2024", false},
		{"2024-01-01x", false},
		{"x2024-01-01", false},
		{"", false},
		{"not-a-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsValid(tt.date))
		})
	}
}

func TestResolveStartEnd_Defaults(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "2024-03-14", r.ResolveStart(""))
	assert.Equal(t, "2024-03-15", r.ResolveEnd(""))
}

func TestResolveStartEnd_Sanitization(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "2024-01-02", r.ResolveStart("2024-01-02"))
	assert.Equal(t, "2024-01-02", r.ResolveStart("2024-01-02;rm"))
	assert.Equal(t, "2024-01-02", r.ResolveEnd(" 2024-01-02\n"))
	assert.Equal(t, "2024-01-02", r.ResolveEnd("2024-01-02!!"))
}

func TestDaysInRange(t *testing.T) {
	r := newTestResolver(t)

	t.Run("single day", func(t *testing.T) {
		days, err := r.DaysInRange("2024-01-01", "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01"}, days)
	})

	t.Run("multi day inclusive", func(t *testing.T) {
		days, err := r.DaysInRange("2024-01-01", "2024-01-03")
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, days)
	})

	t.Run("month boundary", func(t *testing.T) {
		days, err := r.DaysInRange("2024-01-31", "2024-02-01")
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-31", "2024-02-01"}, days)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := r.DaysInRange("nope", "2024-01-01")
		require.Error(t, err)
	})
}

func TestEndOfDayBound(t *testing.T) {
	r := newTestResolver(t)

	t.Run("today yields now", func(t *testing.T) {
		bound, err := r.EndOfDayBound("2024-03-15")
		require.NoError(t, err)
		assert.Equal(t, r.now(), bound)
	})

	t.Run("past date yields 23:59:59", func(t *testing.T) {
		bound, err := r.EndOfDayBound("2024-03-10")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-10 23:59:59", bound.Format("2006-01-02 15:04:05"))
	})
}

func TestStartOfDay(t *testing.T) {
	r := newTestResolver(t)

	start, err := r.StartOfDay("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10 00:00:00", start.Format("2006-01-02 15:04:05"))

	_, err = r.StartOfDay("bad")
	require.Error(t, err)
}
