package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/homeopt/core/model"
)

// Snapshot is the progress report emitted after each completed generation.
//
// Front and Population are read-only views shared with the engine: consumers
// must not modify the slices or the individuals they point to. Clone
// individuals before keeping or changing them.
type Snapshot struct {
	Generation int
	Front      []*model.Individual
	Population []*model.Individual
}

// Summary aggregates objective statistics over a set of individuals.
type Summary struct {
	Size           int
	MinCost        float64
	MeanCost       float64
	StdCost        float64
	MinDiscomfort  float64
	MeanDiscomfort float64
	StdDiscomfort  float64
}

// Summarize computes objective statistics. An empty input yields a zero Summary.
func Summarize(pop []*model.Individual) Summary {
	if len(pop) == 0 {
		return Summary{}
	}
	costs := make([]float64, len(pop))
	disc := make([]float64, len(pop))
	for i, ind := range pop {
		costs[i] = ind.Cost
		disc[i] = ind.Discomfort
	}
	s := Summary{
		Size:           len(pop),
		MinCost:        floats.Min(costs),
		MinDiscomfort:  floats.Min(disc),
		MeanCost:       stat.Mean(costs, nil),
		MeanDiscomfort: stat.Mean(disc, nil),
	}
	if len(pop) > 1 {
		s.StdCost = stat.StdDev(costs, nil)
		s.StdDiscomfort = stat.StdDev(disc, nil)
	}
	return s
}

// Selection names a policy for picking one schedule from a front.
type Selection string

const (
	SelectMinCost       Selection = "min_cost"
	SelectMinDiscomfort Selection = "min_discomfort"
	// SelectBalanced minimises the sum of min-max normalised objectives.
	SelectBalanced Selection = "balanced"
)

// ParseSelection validates a selection name. Empty means balanced.
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case "":
		return SelectBalanced, nil
	case SelectMinCost, SelectMinDiscomfort, SelectBalanced:
		return Selection(s), nil
	default:
		return "", fmt.Errorf("unknown selection %q", s)
	}
}

// SelectSolution picks one member of front according to policy. Ties keep
// the earliest member. It returns nil for an empty front.
func SelectSolution(front []*model.Individual, policy Selection) *model.Individual {
	if len(front) == 0 {
		return nil
	}
	costs := make([]float64, len(front))
	disc := make([]float64, len(front))
	for i, ind := range front {
		costs[i] = ind.Cost
		disc[i] = ind.Discomfort
	}
	switch policy {
	case SelectMinCost:
		return front[floats.MinIdx(costs)]
	case SelectMinDiscomfort:
		return front[floats.MinIdx(disc)]
	}
	normalize(costs)
	normalize(disc)
	score := make([]float64, len(front))
	floats.AddTo(score, costs, disc)
	return front[floats.MinIdx(score)]
}

func normalize(v []float64) {
	lo, hi := floats.Min(v), floats.Max(v)
	span := hi - lo
	if math.Abs(span) < degenerateRange {
		for i := range v {
			v[i] = 0
		}
		return
	}
	floats.AddConst(-lo, v)
	floats.Scale(1/span, v)
}
