package scenarios

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/infra/metrics"
)

func RunCase(t *testing.T, c *Case) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	sc, err := c.Scenario()
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	params := c.Params.ToParams()
	engine, err := optimizer.NewEngine(sc, params)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	var last optimizer.Snapshot
	started := time.Now()
	_, err = engine.Run(context.Background(), func(snap optimizer.Snapshot) {
		last = snap
		if err := sink.RecordGeneration(coremetrics.NewGenerationEvent(c.Name, snap, time.Since(started))); err != nil {
			t.Errorf("record generation: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := counterValue(t, reg, "homeopt_generations_total"); got != float64(params.Generations) {
		t.Errorf("case %s: %v generations recorded, want %d", c.Name, got, params.Generations)
	}
	checkFront(t, c, last.Front)
}

func checkFront(t *testing.T, c *Case, front []*model.Individual) {
	t.Helper()
	if len(front) < c.Expected.MinFrontSize || len(front) == 0 {
		t.Fatalf("case %s: front size %d below %d", c.Name, len(front), c.Expected.MinFrontSize)
	}
	for _, p := range front {
		for _, q := range front {
			if optimizer.Dominates(p, q) {
				t.Fatalf("case %s: front member %v dominated by %v", c.Name, q.Objectives(), p.Objectives())
			}
		}
	}
	s := optimizer.Summarize(front)
	if limit := c.Expected.MaxBestCost; limit != nil && s.MinCost > *limit {
		t.Errorf("case %s: best cost %v above %v", c.Name, s.MinCost, *limit)
	}
	if limit := c.Expected.MaxBestDiscomfort; limit != nil && s.MinDiscomfort > *limit {
		t.Errorf("case %s: best discomfort %v above %v", c.Name, s.MinDiscomfort, *limit)
	}
	for _, want := range c.Expected.FrontContains {
		found := slices.ContainsFunc(front, func(ind *model.Individual) bool {
			return slices.Equal(ind.StartHours, want)
		})
		if !found {
			t.Errorf("case %s: genome %v missing from the front", c.Name, want)
		}
	}
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
