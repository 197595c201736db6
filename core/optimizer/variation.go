package optimizer

import "github.com/kilianp07/homeopt/core/model"

// Rand is the subset of *math/rand.Rand used by the variation operators.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// RandomIndividual draws a genome of n uniform start hours.
func RandomIndividual(rng Rand, n int) *model.Individual {
	ind := model.NewIndividual(n)
	for i := range ind.StartHours {
		ind.StartHours[i] = rng.Intn(model.HoursPerDay)
	}
	return ind
}

// TournamentSelect runs a binary tournament with replacement: the lower rank
// wins, then the larger crowding distance, then the first draw.
func TournamentSelect(rng Rand, pop []*model.Individual) *model.Individual {
	a := pop[rng.Intn(len(pop))]
	b := pop[rng.Intn(len(pop))]
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return a
		}
		return b
	}
	if a.Crowding >= b.Crowding {
		return a
	}
	return b
}

// Crossover swaps every gene from a random cut point in [1, n-1] onward
// between a and b. Genomes shorter than two genes are left as they are.
func Crossover(rng Rand, a, b *model.Individual) {
	n := len(a.StartHours)
	if n < 2 {
		return
	}
	cut := 1 + rng.Intn(n-1)
	for i := cut; i < n; i++ {
		a.StartHours[i], b.StartHours[i] = b.StartHours[i], a.StartHours[i]
	}
}

// Mutate resets each gene to a fresh uniform hour with probability rate.
func Mutate(rng Rand, ind *model.Individual, rate float64) {
	for i := range ind.StartHours {
		if rng.Float64() < rate {
			ind.StartHours[i] = rng.Intn(model.HoursPerDay)
		}
	}
}

// BuildOffspring produces exactly len(pop) unevaluated children from
// tournament-selected parent pairs. Parents are cloned, never modified.
func BuildOffspring(rng Rand, pop []*model.Individual, crossoverRate, mutationRate float64) []*model.Individual {
	size := len(pop)
	offspring := make([]*model.Individual, 0, size)
	for len(offspring) < size {
		c1 := TournamentSelect(rng, pop).Clone()
		c2 := TournamentSelect(rng, pop).Clone()

		if rng.Float64() < crossoverRate {
			Crossover(rng, c1, c2)
		}
		Mutate(rng, c1, mutationRate)
		Mutate(rng, c2, mutationRate)

		offspring = append(offspring, c1)
		if len(offspring) < size {
			offspring = append(offspring, c2)
		}
	}
	return offspring
}
