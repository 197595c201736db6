package metrics

import (
	"time"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
)

// GenerationEvent summarises one progress snapshot.
type GenerationEvent struct {
	RunID          string
	Generation     int
	FrontSize      int
	PopulationSize int
	MinCost        float64
	MeanCost       float64
	MinDiscomfort  float64
	MeanDiscomfort float64
	// Elapsed is the time since the run started.
	Elapsed time.Duration
	Time    time.Time
	// Front is a private copy of the Pareto front, safe to read from any
	// goroutine.
	Front []model.Individual
}

// NewGenerationEvent builds the event for snap. Statistics cover the front.
func NewGenerationEvent(runID string, snap optimizer.Snapshot, elapsed time.Duration) GenerationEvent {
	s := optimizer.Summarize(snap.Front)
	front := make([]model.Individual, len(snap.Front))
	for i, ind := range snap.Front {
		front[i] = *ind.Clone()
	}
	return GenerationEvent{
		RunID:          runID,
		Generation:     snap.Generation,
		FrontSize:      len(snap.Front),
		PopulationSize: len(snap.Population),
		MinCost:        s.MinCost,
		MeanCost:       s.MeanCost,
		MinDiscomfort:  s.MinDiscomfort,
		MeanDiscomfort: s.MeanDiscomfort,
		Elapsed:        elapsed,
		Time:           time.Now(),
		Front:          front,
	}
}

// MetricsSink records per-generation progress.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
}

// Run outcomes reported in RunEvent.Status.
const (
	RunCompleted = "completed"
	RunCancelled = "cancelled"
	RunFailed    = "failed"
)

// RunEvent describes a finished run.
type RunEvent struct {
	RunID          string
	Status         string
	Generations    int
	FrontSize      int
	BestCost       float64
	BestDiscomfort float64
	Duration       time.Duration
	Time           time.Time
}

// RunRecorder is implemented by sinks that also track whole runs.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error               { return nil }
