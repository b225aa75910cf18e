package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{2*time.Hour + 5*time.Minute, "2h 05m"},
		{8*time.Hour + 29*time.Minute + 40*time.Second, "8h 30m"},
		{-time.Hour, "0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestFormatShiftDuration(t *testing.T) {
	in := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)
	now := in.Add(3 * time.Hour)

	assert.Equal(t, "7h 30m", FormatShiftDuration(domain.Shift{ClockIn: in, ClockOut: &out}, now))
	assert.Equal(t, "3h 00m (ongoing)", FormatShiftDuration(domain.Shift{ClockIn: in}, now))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysUntil(now.AddDate(0, 0, 7), now))
	assert.Equal(t, 0, DaysUntil(now.Add(5*time.Hour), now))
	assert.Equal(t, -2, DaysUntil(now.AddDate(0, 0, -2), now))
}

func TestSuggestUsername(t *testing.T) {
	tests := map[string]string{
		"Jane Doe":        "jane.doe",
		"  Bob ":          "bob",
		"Mary-Ann O'Neil": "mary.ann.oneil",
		"王伟":              "wangwei",
		"Agent 007":       "agent.007",
	}
	for in, want := range tests {
		assert.Equal(t, want, SuggestUsername(in), in)
	}
}

func TestGeneratedFormsPassValidation(t *testing.T) {
	v, err := form.New()
	require.NoError(t, err)

	for range 50 {
		e := GenerateRandomEmployee(3, "example.com")
		require.NoError(t, v.Validate(e), "%+v", e)
		assert.GreaterOrEqual(t, len(e.Username), 4)

		j := GenerateRandomJob(3, "Kitchen")
		require.NoError(t, v.Validate(j), "%+v", j)
		assert.True(t, j.HourlyWage.GreaterThanOrEqual(decimal.NewFromInt(15)), j.HourlyWage.String())
		assert.True(t, j.HourlyWage.LessThanOrEqual(decimal.NewFromInt(45)), j.HourlyWage.String())
		assert.Equal(t, int32(-2), j.HourlyWage.Exponent())
	}

	depts := GenerateRandomDepartments(12)
	seen := make(map[string]bool)
	for _, d := range depts {
		require.NoError(t, v.Validate(d))
		assert.False(t, seen[d.Name], "duplicate department %q", d.Name)
		seen[d.Name] = true
	}
	assert.Len(t, depts, 12)
	assert.Equal(t, 2, countSuffixed(depts, " 2"))
}

func countSuffixed(depts []form.DepartmentForm, suffix string) int {
	n := 0
	for _, d := range depts {
		if strings.HasSuffix(d.Name, suffix) {
			n++
		}
	}
	return n
}
