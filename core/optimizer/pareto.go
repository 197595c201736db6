package optimizer

import "github.com/kilianp07/homeopt/core/model"

// Dominates reports whether a is no worse than b on both objectives and
// strictly better on at least one. Equal objective pairs never dominate.
func Dominates(a, b *model.Individual) bool {
	if a.Cost > b.Cost || a.Discomfort > b.Discomfort {
		return false
	}
	return a.Cost < b.Cost || a.Discomfort < b.Discomfort
}

// NonDominatedSort partitions pop into fronts, best first, and sets Rank on
// every individual (1 for the first front). Domination bookkeeping is kept in
// index slices local to this call.
func NonDominatedSort(pop []*model.Individual) [][]*model.Individual {
	if len(pop) == 0 {
		return nil
	}
	dominated := make([][]int, len(pop))
	domCount := make([]int, len(pop))

	for i := range pop {
		for j := range pop {
			if i == j {
				continue
			}
			if Dominates(pop[i], pop[j]) {
				dominated[i] = append(dominated[i], j)
			} else if Dominates(pop[j], pop[i]) {
				domCount[i]++
			}
		}
	}

	var current []int
	for i := range pop {
		if domCount[i] == 0 {
			pop[i].Rank = 1
			current = append(current, i)
		}
	}

	var fronts [][]*model.Individual
	for rank := 1; len(current) > 0; rank++ {
		front := make([]*model.Individual, len(current))
		for k, idx := range current {
			front[k] = pop[idx]
		}
		fronts = append(fronts, front)

		var next []int
		for _, idx := range current {
			for _, d := range dominated[idx] {
				domCount[d]--
				if domCount[d] == 0 {
					pop[d].Rank = rank + 1
					next = append(next, d)
				}
			}
		}
		current = next
	}
	return fronts
}

// ParetoFront ranks pop and returns its first front.
func ParetoFront(pop []*model.Individual) []*model.Individual {
	fronts := NonDominatedSort(pop)
	if len(fronts) == 0 {
		return nil
	}
	return fronts[0]
}
