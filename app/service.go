// Package app wires configuration, the optimizer engine and the progress
// consumers into a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/homeopt/config"
	"github.com/kilianp07/homeopt/connectors/tariff"
	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/core/scenario"
	"github.com/kilianp07/homeopt/infra/logger"
	"github.com/kilianp07/homeopt/infra/metrics"
	"github.com/kilianp07/homeopt/infra/mqtt"
	"github.com/kilianp07/homeopt/internal/eventbus"
	"github.com/kilianp07/homeopt/pkg/export"
)

// TariffSource provides the rates of one day.
type TariffSource interface {
	Fetch(ctx context.Context, day time.Time) (model.TariffSchedule, error)
}

// Publisher streams progress and results and relays control commands.
// *mqtt.Publisher implements it.
type Publisher interface {
	coremetrics.MetricsSink
	PublishResult(msg mqtt.ResultMessage) error
	SubscribeControl(runID string, h mqtt.ControlHandler) error
	UnsubscribeControl(runID string)
	Disconnect()
}

// Option customises a Service.
type Option func(*Service)

// WithSink adds a sink next to the configured ones.
func WithSink(s coremetrics.MetricsSink) Option {
	return func(svc *Service) { svc.extra = append(svc.extra, s) }
}

// WithPublisher replaces the MQTT publisher built from the configuration.
func WithPublisher(p Publisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

// WithTariffSource replaces the HTTP tariff client.
func WithTariffSource(t TariffSource) Option {
	return func(svc *Service) { svc.tariff = t }
}

// WithScenario runs sc instead of the configured scenario file.
func WithScenario(sc *model.Scenario) Option {
	return func(svc *Service) { svc.scenario = sc }
}

// WithClock sets the time source used for the tariff day and reports.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// Result is the outcome of one run.
type Result struct {
	RunID  string
	Status string
	// Final is the last snapshot emitted. It is empty when the run was
	// cancelled before generation 0 completed.
	Final      optimizer.Snapshot
	Population []*model.Individual
	Selected   *model.Individual
	Evaluator  *optimizer.Evaluator
	Duration   time.Duration
	Exported   []string
}

// Service runs one optimization at a time.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	sink      coremetrics.MetricsSink
	extra     []coremetrics.MetricsSink
	publisher Publisher
	tariff    TariffSource
	scenario  *model.Scenario
	now       func() time.Time

	mu     sync.Mutex
	engine *optimizer.Engine
	cancel context.CancelFunc
}

// New builds the sinks, the publisher and the tariff source described by cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.sink = sink

	if s.publisher == nil && cfg.MQTT.Enabled() {
		p, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		s.publisher = p
	}
	if s.tariff == nil && cfg.Tariff.Source == tariff.SourceHTTP {
		c, err := tariff.NewClient(cfg.Tariff, tariff.WithLogger(logger.New("tariff")))
		if err != nil {
			return nil, fmt.Errorf("tariff client: %w", err)
		}
		s.tariff = c
	}
	return s, nil
}

// Pause suspends the current run between generations.
func (s *Service) Pause() {
	if e := s.current(); e != nil {
		e.Pause()
	}
}

// Resume continues a paused run.
func (s *Service) Resume() {
	if e := s.current(); e != nil {
		e.Resume()
	}
}

// Cancel stops the current run.
func (s *Service) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State returns the state of the current run, or Idle when none started.
func (s *Service) State() optimizer.State {
	if e := s.current(); e != nil {
		return e.State()
	}
	return optimizer.StateIdle
}

func (s *Service) current() *optimizer.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Scenario resolves the scenario of the next run, fetching rates when the
// tariff source is remote.
func (s *Service) Scenario(ctx context.Context) (*model.Scenario, error) {
	sc := s.scenario
	if sc == nil {
		if s.cfg.Scenario.Path == "" {
			sc = scenario.Default()
		} else {
			loaded, err := scenario.Load(s.cfg.Scenario.Path)
			if err != nil {
				return nil, err
			}
			sc = loaded
		}
	}
	if s.tariff == nil {
		return sc, nil
	}
	day, err := s.cfg.Tariff.TargetDay(s.now())
	if err != nil {
		return nil, err
	}
	rates, err := s.tariff.Fetch(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("fetch tariff: %w", err)
	}
	s.log.Infow("tariff fetched", map[string]any{"day": day.Format(time.DateOnly)})
	return model.NewScenario(sc.Appliances(), rates)
}

// Run executes one optimization. A cancelled run returns its Result with
// status "cancelled" together with an error wrapping optimizer.ErrCancelled.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	sc, err := s.Scenario(ctx)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	engine, err := optimizer.NewEngine(sc, s.cfg.Optimizer, optimizer.WithLogger(logger.New("optimizer")))
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.engine != nil && !isTerminal(s.engine.State()) {
		s.mu.Unlock()
		return nil, optimizer.ErrAlreadyStarted
	}
	s.engine = engine
	s.cancel = cancel
	s.mu.Unlock()

	sinks := append([]coremetrics.MetricsSink{s.sink}, s.extra...)
	if s.publisher != nil {
		sinks = append(sinks, s.publisher)
		if err := s.publisher.SubscribeControl(runID, s.control(cancel)); err != nil {
			s.log.Warnf("control subscription: %v", err)
		}
		defer s.publisher.UnsubscribeControl(runID)
	}
	sink := coremetrics.NewMultiSink(sinks...)

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(runCtx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	bus := eventbus.New[coremetrics.GenerationEvent]()
	done := metrics.StartEventCollector(context.Background(), bus, sink, s.log)

	res := &Result{RunID: runID, Evaluator: engine.Evaluator()}
	s.log.Infow("run started", map[string]any{"run_id": runID, "appliances": sc.Len()})
	started := time.Now()
	pop, runErr := engine.Run(runCtx, func(snap optimizer.Snapshot) {
		res.Final = snap
		bus.Publish(coremetrics.NewGenerationEvent(runID, snap, time.Since(started)))
	})
	res.Duration = time.Since(started)
	bus.Close()
	<-done
	if n := bus.Dropped(); n > 0 {
		s.log.Warnf("%d progress events dropped by slow sinks", n)
	}

	switch {
	case runErr == nil:
		res.Status = coremetrics.RunCompleted
		res.Population = pop
	case errors.Is(runErr, optimizer.ErrCancelled):
		res.Status = coremetrics.RunCancelled
		// the last snapshot is kept for reporting but no population is returned
	default:
		res.Status = coremetrics.RunFailed
	}

	policy, err := optimizer.ParseSelection(s.cfg.Export.Selection)
	if err != nil {
		return nil, err
	}
	res.Selected = optimizer.SelectSolution(res.Final.Front, policy)

	s.recordRun(sink, res)
	s.publishResult(res)

	if res.Status == coremetrics.RunCompleted {
		paths, err := export.WriteAll(s.cfg.Export, runID, res.Evaluator, res.Final, s.now())
		res.Exported = paths
		if err != nil {
			return res, err
		}
	}
	s.log.Infow("run finished", map[string]any{
		"run_id":      runID,
		"status":      res.Status,
		"duration_ms": res.Duration.Milliseconds(),
	})
	return res, runErr
}

func (s *Service) control(cancel context.CancelFunc) mqtt.ControlHandler {
	return func(runID string, cmd mqtt.Command) {
		switch cmd {
		case mqtt.CommandPause:
			s.Pause()
		case mqtt.CommandResume:
			s.Resume()
		case mqtt.CommandCancel:
			cancel()
		}
	}
}

func (s *Service) recordRun(sink *coremetrics.MultiSink, res *Result) {
	ev := coremetrics.RunEvent{
		RunID:       res.RunID,
		Status:      res.Status,
		Generations: res.Final.Generation,
		FrontSize:   len(res.Final.Front),
		Duration:    res.Duration,
		Time:        s.now(),
	}
	if res.Selected != nil {
		ev.BestCost = res.Selected.Cost
		ev.BestDiscomfort = res.Selected.Discomfort
	}
	if err := sink.RecordRun(ev); err != nil {
		s.log.Warnf("record run: %v", err)
	}
}

func (s *Service) publishResult(res *Result) {
	if s.publisher == nil {
		return
	}
	msg := mqtt.ResultMessage{
		RunID:       res.RunID,
		Status:      res.Status,
		Generations: res.Final.Generation,
		DurationMS:  res.Duration.Milliseconds(),
		Front:       make([]mqtt.Solution, len(res.Final.Front)),
	}
	for i, ind := range res.Final.Front {
		msg.Front[i] = mqtt.NewSolution(ind)
	}
	if res.Selected != nil {
		sel := mqtt.NewSolution(res.Selected)
		msg.Selected = &sel
	}
	if err := s.publisher.PublishResult(msg); err != nil {
		s.log.Errorf("publish result: %v", err)
	}
}

// Close disconnects the publisher and flushes closable sinks.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}

func isTerminal(st optimizer.State) bool {
	return st == optimizer.StateCompleted || st == optimizer.StateCancelled
}
