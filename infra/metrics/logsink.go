package metrics

import (
	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/infra/logger"
)

// LogSink writes progress as structured log lines.
type LogSink struct {
	log   logger.Logger
	every int
}

// NewLogSink logs generation 0 and every n-th generation after it.
// Values below 1 log every generation.
func NewLogSink(log logger.Logger, every int) *LogSink {
	if every < 1 {
		every = 1
	}
	return &LogSink{log: log, every: every}
}

// RecordGeneration logs the front statistics.
func (s *LogSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	if ev.Generation%s.every != 0 {
		return nil
	}
	s.log.Infow("generation", map[string]any{
		"run_id":         ev.RunID,
		"generation":     ev.Generation,
		"front_size":     ev.FrontSize,
		"min_cost":       ev.MinCost,
		"min_discomfort": ev.MinDiscomfort,
	})
	return nil
}

// RecordRun logs the run outcome.
func (s *LogSink) RecordRun(ev coremetrics.RunEvent) error {
	s.log.Infow("run finished", map[string]any{
		"run_id":          ev.RunID,
		"status":          ev.Status,
		"generations":     ev.Generations,
		"front_size":      ev.FrontSize,
		"best_cost":       ev.BestCost,
		"best_discomfort": ev.BestDiscomfort,
		"duration_ms":     ev.Duration.Milliseconds(),
	})
	return nil
}
