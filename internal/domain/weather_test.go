package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCondition_KnownCodes(t *testing.T) {
	for _, code := range KnownConditionCodes() {
		c := Condition(code)
		assert.NotEqual(t, FamilyUnknown, c.Family, "code %d", code)
		assert.NotEmpty(t, c.Glyph, "code %d", code)
		assert.NotEmpty(t, c.Label, "code %d", code)
	}
}

func TestCondition_Families(t *testing.T) {
	tests := []struct {
		code   int
		family ConditionFamily
	}{
		{0, FamilyClear},
		{1, FamilyCloudy},
		{3, FamilyCloudy},
		{45, FamilyFog},
		{48, FamilyFog},
		{53, FamilyDrizzle},
		{57, FamilyFreezingRain},
		{63, FamilyRain},
		{66, FamilyFreezingRain},
		{77, FamilySnow},
		{81, FamilyShowers},
		{86, FamilyShowers},
		{99, FamilyThunderstorm},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.family, Condition(tt.code).Family, "code %d", tt.code)
	}
}

func TestCondition_IsTotal(t *testing.T) {
	for _, code := range []int{-1, -95, 4, 44, 50, 100, 1000, math.MaxInt, math.MinInt} {
		assert.Equal(t, UnknownCondition, Condition(code), "code %d", code)
	}
	assert.Equal(t, "Mainly clear", Condition(1).Label)
}

func TestWeatherSnapshot_Formatting(t *testing.T) {
	w := WeatherSnapshot{TemperatureC: 30.1, WindSpeedKmh: 10.4, ConditionCode: 1}
	assert.Equal(t, "30.1°C", w.Temperature())
	assert.Equal(t, "10.4 km/h", w.Wind())
	assert.Equal(t, Condition(1), w.Condition())

	w = WeatherSnapshot{TemperatureC: -3, WindSpeedKmh: 0}
	assert.Equal(t, "-3°C", w.Temperature())
	assert.Equal(t, "0 km/h", w.Wind())
}

func TestNow_UsesClock(t *testing.T) {
	frozen := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, frozen, Now())
}
