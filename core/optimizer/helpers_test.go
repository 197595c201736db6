package optimizer

import (
	"testing"

	"github.com/kilianp07/homeopt/core/model"
)

// scriptedRand replays fixed draws; it fails the test when exhausted.
type scriptedRand struct {
	t      *testing.T
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		r.t.Fatalf("scriptedRand: no ints left (n=%d)", n)
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		r.t.Fatalf("scriptedRand: draw %d out of range %d", v, n)
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		r.t.Fatalf("scriptedRand: no floats left")
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func flatTariff(t *testing.T, v float64) model.TariffSchedule {
	t.Helper()
	rates := make([]float64, model.HoursPerDay)
	for i := range rates {
		rates[i] = v
	}
	ts, err := model.NewTariffSchedule(rates)
	if err != nil {
		t.Fatalf("tariff: %v", err)
	}
	return ts
}

func mustScenario(t *testing.T, tariff model.TariffSchedule, apps ...model.Appliance) *model.Scenario {
	t.Helper()
	sc, err := model.NewScenario(apps, tariff)
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	return sc
}

func ind(cost, discomfort float64) *model.Individual {
	return &model.Individual{StartHours: []int{0}, Cost: cost, Discomfort: discomfort}
}

func seeded(seed int64) *int64 { return &seed }
