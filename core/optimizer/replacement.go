package optimizer

import (
	"sort"

	"github.com/kilianp07/homeopt/core/model"
)

// Replace merges parents and offspring and keeps the best size individuals:
// whole fronts in rank order, then the most isolated members of the first
// front that does not fit. Crowding is refreshed on every front it visits.
func Replace(parents, offspring []*model.Individual, size int) []*model.Individual {
	combined := make([]*model.Individual, 0, len(parents)+len(offspring))
	combined = append(combined, parents...)
	combined = append(combined, offspring...)

	next := make([]*model.Individual, 0, size)
	for _, front := range NonDominatedSort(combined) {
		if len(next) >= size {
			break
		}
		CrowdingDistance(front)
		if len(next)+len(front) <= size {
			next = append(next, front...)
			continue
		}
		ordered := make([]*model.Individual, len(front))
		copy(ordered, front)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Crowding > ordered[j].Crowding
		})
		next = append(next, ordered[:size-len(next)]...)
		break
	}
	return next
}
