// Package points computes the reward for attended shifts. Calculation is a
// pure function of the shift, the mission type and the configured rates, so
// the same inputs always yield the same grant.
package points

import (
	"math"
	"time"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// Rates holds the configured reward rates. Multipliers compound
// multiplicatively; a multiplier of 0 is treated as unset (1.0).
type Rates struct {
	PerHour                float64
	WeekendMultiplier      float64
	NightMultiplier        float64
	MissionTypeMultipliers map[string]float64
}

// Calculator derives points from attendance facts.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// EffectiveHours resolves the hours to credit: the recorded actual hours
// when present and positive, otherwise the scheduled shift duration.
func EffectiveHours(shift *model.Shift, actualHours *float64) float64 {
	if actualHours != nil && *actualHours > 0 {
		return *actualHours
	}
	return shift.Duration().Hours()
}

// Calculate returns the points earned for working the given hours on the
// shift. Weekend and night multipliers key off the shift start time; the
// mission type multiplier keys off the owning mission's type.
func (c *Calculator) Calculate(shift *model.Shift, missionType string, hours float64) int {
	value := hours * c.rates.PerHour

	if isWeekend(shift.StartTime) {
		value *= orOne(c.rates.WeekendMultiplier)
	}
	if isNight(shift.StartTime) {
		value *= orOne(c.rates.NightMultiplier)
	}
	if m, ok := c.rates.MissionTypeMultipliers[missionType]; ok {
		value *= orOne(m)
	}

	return int(math.Round(value))
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// isNight reports whether the time falls in the [22:00, 06:00) window.
func isNight(t time.Time) bool {
	h := t.Hour()
	return h >= 22 || h < 6
}

func orOne(m float64) float64 {
	if m <= 0 {
		return 1
	}
	return m
}
