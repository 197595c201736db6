package optimizer

import (
	"math"
	"sort"

	"github.com/kilianp07/homeopt/core/model"
)

// degenerateRange is the objective spread below which an objective is ignored.
const degenerateRange = 1e-9

var objectives = []func(*model.Individual) float64{
	func(i *model.Individual) float64 { return i.Cost },
	func(i *model.Individual) float64 { return i.Discomfort },
}

// CrowdingDistance resets and recomputes Crowding for every member of front.
// Boundary members of each objective get +Inf. The order of front is left
// untouched.
func CrowdingDistance(front []*model.Individual) {
	if len(front) == 0 {
		return
	}
	for _, ind := range front {
		ind.Crowding = 0
	}

	ordered := make([]*model.Individual, len(front))
	for _, value := range objectives {
		copy(ordered, front)
		sort.SliceStable(ordered, func(i, j int) bool {
			return value(ordered[i]) < value(ordered[j])
		})

		first, last := ordered[0], ordered[len(ordered)-1]
		first.Crowding = math.Inf(1)
		last.Crowding = math.Inf(1)

		span := value(last) - value(first)
		if math.Abs(span) < degenerateRange {
			continue
		}
		for i := 1; i < len(ordered)-1; i++ {
			ordered[i].Crowding += (value(ordered[i+1]) - value(ordered[i-1])) / span
		}
	}
}
