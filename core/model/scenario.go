package model

import "fmt"

// Scenario is the immutable problem description: what has to run and what
// energy costs at each hour. A Scenario is safe for concurrent reads.
type Scenario struct {
	appliances []Appliance
	tariff     TariffSchedule
}

// NewScenario validates every appliance and returns a Scenario owning a copy
// of the list.
func NewScenario(appliances []Appliance, tariff TariffSchedule) (*Scenario, error) {
	if len(appliances) == 0 {
		return nil, ErrNoAppliances
	}
	list := make([]Appliance, len(appliances))
	for i, a := range appliances {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("appliance %d: %w", i, err)
		}
		list[i] = a
	}
	return &Scenario{appliances: list, tariff: tariff}, nil
}

// Len returns the number of appliances, which is also the genome length.
func (s *Scenario) Len() int { return len(s.appliances) }

// Appliance returns the i-th appliance.
func (s *Scenario) Appliance(i int) Appliance { return s.appliances[i] }

// Appliances returns a copy of the appliance list.
func (s *Scenario) Appliances() []Appliance {
	out := make([]Appliance, len(s.appliances))
	copy(out, s.appliances)
	return out
}

// Tariff returns the scenario tariff schedule.
func (s *Scenario) Tariff() TariffSchedule { return s.tariff }
