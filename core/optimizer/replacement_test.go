package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/homeopt/core/model"
)

func TestReplaceKeepsWholeBetterFronts(t *testing.T) {
	parents := []*model.Individual{ind(1, 3), ind(3, 1), ind(9, 9)}
	offspring := []*model.Individual{ind(2, 2), ind(8, 8), ind(7, 7)}

	next := Replace(parents, offspring, 3)
	require.Len(t, next, 3)
	assert.ElementsMatch(t, []*model.Individual{parents[0], parents[1], offspring[0]}, next)
	for _, p := range next {
		assert.Equal(t, 1, p.Rank)
	}
}

func TestReplaceTruncatesByCrowding(t *testing.T) {
	mid := ind(5, 5)
	near := ind(1, 9)
	parents := []*model.Individual{ind(0, 10), near}
	offspring := []*model.Individual{mid, ind(10, 0), ind(20, 20)}

	next := Replace(parents, offspring, 3)
	require.Len(t, next, 3)
	assert.Contains(t, next, parents[0])
	assert.Contains(t, next, offspring[1])
	// (5,5) is more isolated than (1,9)
	assert.Contains(t, next, mid)
	assert.NotContains(t, next, near)
}

func TestReplaceAlwaysReturnsSize(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	for _, size := range []int{1, 3, 10, 25} {
		parents := randomPopulation(r, size)
		offspring := randomPopulation(r, size)
		next := Replace(parents, offspring, size)
		assert.Len(t, next, size)
	}
}

func TestReplaceIsElitist(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	parents := randomPopulation(r, 12)
	offspring := randomPopulation(r, 12)
	best := ind(-1, -1)
	offspring[5] = best

	next := Replace(parents, offspring, 12)
	assert.Contains(t, next, best)
	assert.Equal(t, 1, best.Rank)
}
