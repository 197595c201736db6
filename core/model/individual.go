package model

import (
	"fmt"
	"strings"
)

// Individual is one candidate schedule. StartHours is the genome, positionally
// aligned with the scenario appliances. Cost and Discomfort are only valid
// after an evaluation following the last genome change; Rank and Crowding
// only after the last ranking pass over the population holding it.
type Individual struct {
	StartHours []int   `json:"start_hours"`
	Cost       float64 `json:"cost"`
	Discomfort float64 `json:"discomfort"`
	// Rank is 1 for the first front, 0 before any ranking.
	Rank     int     `json:"rank"`
	Crowding float64 `json:"-"`
}

// NewIndividual returns an unevaluated individual with a zeroed genome of n genes.
func NewIndividual(n int) *Individual {
	return &Individual{StartHours: make([]int, n)}
}

// Clone returns a deep copy. Changing the clone's genome never affects the receiver.
func (ind *Individual) Clone() *Individual {
	c := *ind
	c.StartHours = make([]int, len(ind.StartHours))
	copy(c.StartHours, ind.StartHours)
	return &c
}

// Objectives returns the (cost, discomfort) pair.
func (ind *Individual) Objectives() [2]float64 {
	return [2]float64{ind.Cost, ind.Discomfort}
}

// Schedule formats the genome as a list of HH:00 start times.
func (ind *Individual) Schedule() string {
	parts := make([]string, len(ind.StartHours))
	for i, h := range ind.StartHours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
