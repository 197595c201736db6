package model

import (
	"errors"
	"fmt"
	"strings"
)

// HoursPerDay is the length of the scheduling cycle.
const HoursPerDay = 24

var (
	// ErrInvalidAppliance is returned when an appliance definition is out of range.
	ErrInvalidAppliance = errors.New("invalid appliance")
	// ErrNoAppliances is returned when a scenario has nothing to schedule.
	ErrNoAppliances = errors.New("scenario requires at least one appliance")
)

// Appliance is a household load that runs once per day for a fixed duration.
type Appliance struct {
	Name               string  `json:"name" yaml:"name"`
	DurationHours      int     `json:"duration_hours" yaml:"duration_hours"`
	PowerKW            float64 `json:"power_kw" yaml:"power_kw"`
	PreferredStartHour int     `json:"preferred_start_hour" yaml:"preferred_start_hour"`
}

// NewAppliance returns a validated Appliance.
func NewAppliance(name string, durationHours int, powerKW float64, preferredStartHour int) (Appliance, error) {
	a := Appliance{
		Name:               strings.TrimSpace(name),
		DurationHours:      durationHours,
		PowerKW:            powerKW,
		PreferredStartHour: preferredStartHour,
	}
	if err := a.Validate(); err != nil {
		return Appliance{}, err
	}
	return a, nil
}

// Validate checks that the appliance can be placed on a 24h grid.
func (a Appliance) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAppliance)
	}
	if a.DurationHours < 1 || a.DurationHours > HoursPerDay {
		return fmt.Errorf("%w: %s duration %dh outside 1..24", ErrInvalidAppliance, a.Name, a.DurationHours)
	}
	if a.PowerKW <= 0 {
		return fmt.Errorf("%w: %s power must be positive", ErrInvalidAppliance, a.Name)
	}
	if a.PreferredStartHour < 0 || a.PreferredStartHour >= HoursPerDay {
		return fmt.Errorf("%w: %s preferred hour %d outside 0..23", ErrInvalidAppliance, a.Name, a.PreferredStartHour)
	}
	return nil
}

// EndHour returns the (non-wrapped) hour at which the appliance finishes
// when started at start.
func (a Appliance) EndHour(start int) int {
	return start + a.DurationHours
}

// String returns a short human-readable description.
func (a Appliance) String() string {
	return fmt.Sprintf("%s: %dh, %gkW, pref %02d:00", a.Name, a.DurationHours, a.PowerKW, a.PreferredStartHour)
}
