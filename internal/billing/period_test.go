package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_Arithmetic(t *testing.T) {
	p, err := ParsePeriod("2026-12")
	require.NoError(t, err)

	assert.Equal(t, "2026-12", p.String())
	assert.Equal(t, "2027-01", p.Next().String())
	assert.Equal(t, "2026-09", p.AddMonths(-3).String())
	assert.True(t, p.Before(p.Next()))
	assert.True(t, p.Next().After(p))
	assert.False(t, p.After(p))
	assert.Equal(t, "", Period{}.String())
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, key := range []string{"", "2026-13", "26-01", "2026/01"} {
		_, err := ParsePeriod(key)
		assert.Error(t, err, key)
	}
}

func TestPeriodOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2026, 10, 31, 22, 0, 0, 0, loc)

	assert.Equal(t, "2026-11", PeriodOf(ts).String())
}

func TestElapsedPeriods(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		end        time.Time
		periodDays int
		want       int
	}{
		{name: "same day", end: start, periodDays: 30, want: 0},
		{name: "one day", end: start.AddDate(0, 0, 1), periodDays: 30, want: 1},
		{name: "exact period", end: start.AddDate(0, 0, 30), periodDays: 30, want: 1},
		{name: "into second period", end: start.AddDate(0, 0, 31), periodDays: 30, want: 2},
		{name: "sixty five days", end: start.AddDate(0, 0, 65), periodDays: 30, want: 3},
		{name: "end before start", end: start.AddDate(0, 0, -3), periodDays: 30, want: 0},
		{name: "invalid period", end: start.AddDate(0, 0, 10), periodDays: 0, want: 0},
		{name: "time of day ignored", end: start.Add(23 * time.Hour), periodDays: 7, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedPeriods(start, tt.end, tt.periodDays))
		})
	}
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "mes", LabelFor(30).For(1))
	assert.Equal(t, "meses", LabelFor(30).For(2))
	assert.Equal(t, "semanas", LabelFor(7).For(0))
	assert.Equal(t, "año", LabelFor(365).For(1))
	assert.Equal(t, GenericPeriodLabel, LabelFor(90))
}
