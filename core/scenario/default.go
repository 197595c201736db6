// Package scenario builds and loads appliance scheduling scenarios.
package scenario

import "github.com/kilianp07/homeopt/core/model"

// Night and day rates of the reference tariff, in currency units per kWh.
const (
	DefaultNightRate = 0.3
	DefaultDayRate   = 0.9
	// cheapUntilHour is the last hour billed at the night rate.
	cheapUntilHour = 5
)

// DefaultAppliances returns the reference household.
func DefaultAppliances() []model.Appliance {
	return []model.Appliance{
		{Name: "Washer", DurationHours: 2, PowerKW: 1.2, PreferredStartHour: 18},
		{Name: "Dryer", DurationHours: 1, PowerKW: 1.0, PreferredStartHour: 18},
		{Name: "EV Charger", DurationHours: 4, PowerKW: 7.0, PreferredStartHour: 18},
		{Name: "Dishwasher", DurationHours: 2, PowerKW: 1.4, PreferredStartHour: 20},
		{Name: "Boiler", DurationHours: 3, PowerKW: 2.0, PreferredStartHour: 7},
	}
}

// NightDayRates returns 24 rates: night for hours 0..5, day for the rest.
func NightDayRates(night, day float64) []float64 {
	rates := make([]float64, model.HoursPerDay)
	for h := range rates {
		if h <= cheapUntilHour {
			rates[h] = night
		} else {
			rates[h] = day
		}
	}
	return rates
}

// Default returns the reference scenario with the night/day tariff.
func Default() *model.Scenario {
	tariff, err := model.NewTariffSchedule(NightDayRates(DefaultNightRate, DefaultDayRate))
	if err != nil {
		panic(err)
	}
	sc, err := model.NewScenario(DefaultAppliances(), tariff)
	if err != nil {
		panic(err)
	}
	return sc
}
