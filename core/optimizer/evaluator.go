package optimizer

import (
	"math"
	"strings"

	"github.com/kilianp07/homeopt/core/model"
)

// Evaluator scores genomes against a scenario. It holds no mutable state and
// may be shared.
type Evaluator struct {
	scenario  *model.Scenario
	penalties Penalties

	washer int
	dryer  int
}

// NewEvaluator prepares an evaluator. The washer and dryer used by the
// sequencing rule are the last appliances whose names contain "washer" and
// "dryer" (case-insensitive).
func NewEvaluator(scenario *model.Scenario, penalties Penalties) *Evaluator {
	e := &Evaluator{scenario: scenario, penalties: penalties, washer: -1, dryer: -1}
	for i := 0; i < scenario.Len(); i++ {
		name := strings.ToLower(scenario.Appliance(i).Name)
		if strings.Contains(name, "washer") {
			e.washer = i
		}
		if strings.Contains(name, "dryer") {
			e.dryer = i
		}
	}
	return e
}

// Scenario returns the scenario the evaluator scores against.
func (e *Evaluator) Scenario() *model.Scenario { return e.scenario }

// Evaluate writes Cost and Discomfort onto ind.
func (e *Evaluator) Evaluate(ind *model.Individual) {
	var cost, discomfort float64
	var load [model.HoursPerDay]float64
	tariff := e.scenario.Tariff()

	for i, start := range ind.StartHours {
		a := e.scenario.Appliance(i)
		for h := 0; h < a.DurationHours; h++ {
			hour := model.NormalizeHour(start + h)
			cost += a.PowerKW * tariff.RateForHour(hour)
			load[hour] += a.PowerKW
			if e.isNight(hour) {
				discomfort += e.penalties.NightPenalty
			}
		}
		discomfort += float64(circularDistance(start, a.PreferredStartHour))
	}

	for _, l := range load {
		if l > e.penalties.CapacityKW {
			cost += e.penalties.OverloadCost
			discomfort += e.penalties.OverloadDiscomfort
			break
		}
	}

	if e.washer >= 0 && e.dryer >= 0 {
		washerEnd := e.scenario.Appliance(e.washer).EndHour(ind.StartHours[e.washer])
		if ind.StartHours[e.dryer] < washerEnd {
			discomfort += e.penalties.SequencingPenalty
		}
	}

	ind.Cost = round3(cost)
	ind.Discomfort = round3(discomfort)
}

// EvaluateAll evaluates every individual in pop.
func (e *Evaluator) EvaluateAll(pop []*model.Individual) {
	for _, ind := range pop {
		e.Evaluate(ind)
	}
}

// ApplianceCost is the energy cost of one appliance in a schedule.
type ApplianceCost struct {
	Appliance model.Appliance
	Start     int
	// Stop is the wrapped hour at which the appliance finishes.
	Stop int
	Cost float64
}

// Breakdown returns the per-appliance energy cost of a genome, without penalties.
func (e *Evaluator) Breakdown(startHours []int) []ApplianceCost {
	tariff := e.scenario.Tariff()
	out := make([]ApplianceCost, len(startHours))
	for i, start := range startHours {
		a := e.scenario.Appliance(i)
		var c float64
		for h := 0; h < a.DurationHours; h++ {
			c += a.PowerKW * tariff.RateForHour(start+h)
		}
		out[i] = ApplianceCost{Appliance: a, Start: start, Stop: model.NormalizeHour(start + a.DurationHours), Cost: c}
	}
	return out
}

func (e *Evaluator) isNight(hour int) bool {
	return hour >= e.penalties.NightStartHour && hour < e.penalties.NightEndHour
}

func circularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if alt := model.HoursPerDay - d; alt < d {
		return alt
	}
	return d
}

func round3(f float64) float64 {
	return math.RoundToEven(f*1000) / 1000
}
