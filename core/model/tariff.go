package model

import (
	"errors"
	"fmt"
)

var (
	// ErrTariffLength is returned when a schedule does not hold one rate per hour.
	ErrTariffLength = errors.New("tariff schedule must cover 24 hours")
	// ErrNegativeRate is returned for rates below zero.
	ErrNegativeRate = errors.New("tariff rate must not be negative")
)

// TariffSchedule holds one electricity rate per hour of the day.
// Lookups wrap around, so hour 25 is hour 1 and hour -1 is hour 23.
type TariffSchedule struct {
	rates [HoursPerDay]float64
}

// NewTariffSchedule copies rates into a schedule.
func NewTariffSchedule(rates []float64) (TariffSchedule, error) {
	var t TariffSchedule
	if len(rates) != HoursPerDay {
		return t, fmt.Errorf("%w: got %d rates", ErrTariffLength, len(rates))
	}
	for h, r := range rates {
		if r < 0 {
			return t, fmt.Errorf("%w: hour %d rate %g", ErrNegativeRate, h, r)
		}
		t.rates[h] = r
	}
	return t, nil
}

// RateForHour returns the rate for any integer hour.
func (t TariffSchedule) RateForHour(hour int) float64 {
	return t.rates[NormalizeHour(hour)]
}

// Rates returns a copy of the 24 hourly rates.
func (t TariffSchedule) Rates() []float64 {
	out := make([]float64, HoursPerDay)
	copy(out, t.rates[:])
	return out
}

// NormalizeHour maps any integer onto 0..23.
func NormalizeHour(hour int) int {
	return ((hour % HoursPerDay) + HoursPerDay) % HoursPerDay
}
