package mqtt

import (
	"time"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/model"
)

// Solution is the wire form of one schedule.
type Solution struct {
	StartHours []int   `json:"start_hours"`
	Schedule   string  `json:"schedule"`
	Cost       float64 `json:"cost"`
	Discomfort float64 `json:"discomfort"`
}

// NewSolution converts an evaluated individual.
func NewSolution(ind *model.Individual) Solution {
	hours := make([]int, len(ind.StartHours))
	copy(hours, ind.StartHours)
	return Solution{StartHours: hours, Schedule: ind.Schedule(), Cost: ind.Cost, Discomfort: ind.Discomfort}
}

// ProgressMessage is published on <prefix>/<run_id>/progress.
type ProgressMessage struct {
	RunID          string     `json:"run_id"`
	Generation     int        `json:"generation"`
	FrontSize      int        `json:"front_size"`
	PopulationSize int        `json:"population_size"`
	MinCost        float64    `json:"min_cost"`
	MinDiscomfort  float64    `json:"min_discomfort"`
	ElapsedMS      int64      `json:"elapsed_ms"`
	Timestamp      int64      `json:"timestamp"`
	Front          []Solution `json:"front"`
}

// NewProgressMessage converts a generation event.
func NewProgressMessage(ev coremetrics.GenerationEvent) ProgressMessage {
	front := make([]Solution, len(ev.Front))
	for i := range ev.Front {
		front[i] = NewSolution(&ev.Front[i])
	}
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return ProgressMessage{
		RunID:          ev.RunID,
		Generation:     ev.Generation,
		FrontSize:      ev.FrontSize,
		PopulationSize: ev.PopulationSize,
		MinCost:        ev.MinCost,
		MinDiscomfort:  ev.MinDiscomfort,
		ElapsedMS:      ev.Elapsed.Milliseconds(),
		Timestamp:      ts.UnixMilli(),
		Front:          front,
	}
}

// ResultMessage is published on <prefix>/<run_id>/result when a run ends.
type ResultMessage struct {
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`
	Generations int        `json:"generations"`
	DurationMS  int64      `json:"duration_ms"`
	Selected    *Solution  `json:"selected,omitempty"`
	Front       []Solution `json:"front,omitempty"`
	Timestamp   int64      `json:"timestamp"`
}

// Command is a run control request received on <prefix>/<run_id>/control.
type Command string

const (
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandCancel Command = "cancel"
)

// ControlMessage is the payload of a control request.
type ControlMessage struct {
	Command Command `json:"command"`
}
