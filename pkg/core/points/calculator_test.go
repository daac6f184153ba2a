package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/volunhub/volunhub/pkg/core/model"
)

func testRates() Rates {
	return Rates{
		PerHour:           10,
		WeekendMultiplier: 1.5,
		NightMultiplier:   1.5,
		MissionTypeMultipliers: map[string]float64{
			"medical": 2.0,
		},
	}
}

func shiftAt(start time.Time, d time.Duration) *model.Shift {
	return &model.Shift{
		ID:        "shift-1",
		StartTime: start,
		EndTime:   start.Add(d),
	}
}

func TestCalculate_WeekendNightCrossingMidnight(t *testing.T) {
	// Saturday 23:00 - 02:00: weekend and night both apply to the whole
	// shift because both key off the start time.
	start := time.Date(2025, 1, 4, 23, 0, 0, 0, time.UTC) // Saturday
	shift := shiftAt(start, 3*time.Hour)

	calc := NewCalculator(testRates())
	got := calc.Calculate(shift, "", 3)

	// 3 * 10 * 1.5 * 1.5 = 67.5, rounds to 68
	assert.Equal(t, 68, got)
}

func TestCalculate_MultiplierTable(t *testing.T) {
	weekday := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)      // Wednesday day
	weekdayNight := time.Date(2025, 1, 8, 22, 0, 0, 0, time.UTC) // Wednesday 22:00
	weekend := time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC)      // Saturday day
	weekendNight := time.Date(2025, 1, 4, 22, 0, 0, 0, time.UTC) // Saturday 22:00

	tests := []struct {
		name        string
		start       time.Time
		missionType string
		want        int
	}{
		{"weekday day", weekday, "", 20},
		{"weekday night", weekdayNight, "", 30},
		{"weekend day", weekend, "", 30},
		{"weekend night", weekendNight, "", 45},
		{"weekday day medical", weekday, "medical", 40},
		{"weekday night medical", weekdayNight, "medical", 60},
		{"weekend day medical", weekend, "medical", 60},
		{"weekend night medical", weekendNight, "medical", 90},
	}

	calc := NewCalculator(testRates())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := shiftAt(tt.start, 2*time.Hour)
			assert.Equal(t, tt.want, calc.Calculate(shift, tt.missionType, 2))
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	start := time.Date(2025, 1, 5, 5, 30, 0, 0, time.UTC) // Sunday 05:30, still night
	shift := shiftAt(start, 4*time.Hour)
	calc := NewCalculator(testRates())

	first := calc.Calculate(shift, "medical", 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, calc.Calculate(shift, "medical", 4))
	}
}

func TestCalculate_UnknownMissionTypeIgnored(t *testing.T) {
	start := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	shift := shiftAt(start, 1*time.Hour)
	calc := NewCalculator(testRates())

	assert.Equal(t, 10, calc.Calculate(shift, "logistics", 1))
}

func TestCalculate_UnsetMultipliersDefaultToOne(t *testing.T) {
	start := time.Date(2025, 1, 4, 23, 0, 0, 0, time.UTC) // weekend night
	shift := shiftAt(start, 1*time.Hour)
	calc := NewCalculator(Rates{PerHour: 10})

	assert.Equal(t, 10, calc.Calculate(shift, "medical", 1))
}

func TestEffectiveHours(t *testing.T) {
	start := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	shift := shiftAt(start, 150*time.Minute)

	assert.InDelta(t, 2.5, EffectiveHours(shift, nil), 1e-9)

	actual := 1.75
	assert.InDelta(t, 1.75, EffectiveHours(shift, &actual), 1e-9)

	zero := 0.0
	assert.InDelta(t, 2.5, EffectiveHours(shift, &zero), 1e-9)

	negative := -1.0
	assert.InDelta(t, 2.5, EffectiveHours(shift, &negative), 1e-9)
}

func TestNightWindowBoundaries(t *testing.T) {
	calc := NewCalculator(Rates{PerHour: 10, NightMultiplier: 2})

	at := func(hour int) *model.Shift {
		return shiftAt(time.Date(2025, 1, 8, hour, 0, 0, 0, time.UTC), time.Hour)
	}

	assert.Equal(t, 20, calc.Calculate(at(22), "", 1), "22:00 is night")
	assert.Equal(t, 20, calc.Calculate(at(5), "", 1), "05:00 is night")
	assert.Equal(t, 10, calc.Calculate(at(6), "", 1), "06:00 is day")
	assert.Equal(t, 10, calc.Calculate(at(21), "", 1), "21:00 is day")
}
