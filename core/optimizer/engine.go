// Package optimizer implements the NSGA-II search over appliance start hours:
// evaluation, non-dominated sorting, crowding, variation, elitist replacement
// and the pausable run loop.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kilianp07/homeopt/core/logger"
	"github.com/kilianp07/homeopt/core/model"
)

var (
	// ErrCancelled is returned by Run when the context is cancelled before
	// the configured number of generations completes. No population is
	// returned with it.
	ErrCancelled = errors.New("optimization cancelled")
	// ErrAlreadyStarted is returned when Run is called on a used engine.
	ErrAlreadyStarted = errors.New("engine already started")
)

// State is the lifecycle state of an Engine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ProgressFunc receives a snapshot after generation 0 and after every
// completed generation. It runs on the engine goroutine.
type ProgressFunc func(Snapshot)

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand replaces the random source. Params.Seed is ignored when set.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// Engine drives one NSGA-II run. Run must be called at most once; Pause and
// Resume may be called from any goroutine.
type Engine struct {
	scenario *model.Scenario
	params   Params
	eval     *Evaluator
	rng      Rand
	log      logger.Logger

	mu     sync.Mutex
	state  State
	paused bool
	// gate is closed while the engine is not paused.
	gate chan struct{}
}

// NewEngine validates params and prepares an engine in the Idle state.
func NewEngine(scenario *model.Scenario, params Params, opts ...Option) (*Engine, error) {
	if scenario == nil {
		return nil, model.ErrNoAppliances
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	gate := make(chan struct{})
	close(gate)
	e := &Engine{
		scenario: scenario,
		params:   params,
		eval:     NewEvaluator(scenario, params.Penalties),
		log:      logger.Nop{},
		gate:     gate,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := time.Now().UnixNano()
		if params.Seed != nil {
			seed = *params.Seed
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	return e, nil
}

// Params returns the parameters the engine runs with.
func (e *Engine) Params() Params { return e.params }

// Evaluator returns the evaluator bound to the engine scenario.
func (e *Engine) Evaluator() *Evaluator { return e.eval }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pause closes the gate checked between generations. The running generation
// finishes first. Pausing an already paused engine does nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || e.terminal() {
		return
	}
	e.paused = true
	e.gate = make(chan struct{})
}

// Resume opens the gate. Resuming an engine that is not paused does nothing.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		return
	}
	e.paused = false
	close(e.gate)
}

// Paused reports whether a pause is pending or in effect.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Run executes the search. It returns the final population on completion,
// or ErrCancelled (wrapping the context error) when ctx is cancelled first.
func (e *Engine) Run(ctx context.Context, progress ProgressFunc) ([]*model.Individual, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	e.state = StateRunning
	e.mu.Unlock()
	e.Resume()

	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(err, 0)
	}

	started := time.Now()
	size := e.params.PopulationSize
	e.log.Infow("optimization started", map[string]any{
		"population":  size,
		"generations": e.params.Generations,
		"crossover":   e.params.CrossoverRate,
		"mutation":    e.params.MutationRate,
		"appliances":  e.scenario.Len(),
	})

	population := make([]*model.Individual, size)
	for i := range population {
		population[i] = RandomIndividual(e.rng, e.scenario.Len())
	}
	e.eval.EvaluateAll(population)

	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(err, 0)
	}
	e.emit(progress, 0, population)

	for gen := 1; gen <= e.params.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, e.cancelled(err, gen-1)
		}
		if err := e.waitGate(ctx); err != nil {
			return nil, e.cancelled(err, gen-1)
		}

		offspring := BuildOffspring(e.rng, population, e.params.CrossoverRate, e.params.MutationRate)
		e.eval.EvaluateAll(offspring)
		population = Replace(population, offspring, size)

		e.emit(progress, gen, population)
	}

	e.setState(StateCompleted)
	e.log.Infow("optimization completed", map[string]any{
		"generations": e.params.Generations,
		"elapsed_ms":  time.Since(started).Milliseconds(),
	})
	return population, nil
}

// emit ranks the population, refreshes crowding on its first front and hands
// the snapshot to progress.
func (e *Engine) emit(progress ProgressFunc, gen int, population []*model.Individual) {
	front := ParetoFront(population)
	CrowdingDistance(front)
	if gen%10 == 0 {
		s := Summarize(front)
		e.log.Debugw("generation", map[string]any{
			"generation":      gen,
			"front_size":      len(front),
			"min_cost":        s.MinCost,
			"min_discomfort":  s.MinDiscomfort,
			"mean_cost":       s.MeanCost,
			"mean_discomfort": s.MeanDiscomfort,
		})
	}
	if progress != nil {
		progress(Snapshot{Generation: gen, Front: front, Population: population})
	}
}

// waitGate blocks while the engine is paused. Cancellation always wins over a
// resume that races with it.
func (e *Engine) waitGate(ctx context.Context) error {
	e.mu.Lock()
	gate := e.gate
	paused := e.paused
	if paused {
		e.state = StatePaused
	}
	e.mu.Unlock()

	if paused {
		e.log.Infof("optimization paused")
		select {
		case <-gate:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		e.setState(StateRunning)
		e.log.Infof("optimization resumed")
	}
	return ctx.Err()
}

func (e *Engine) cancelled(cause error, gen int) error {
	e.setState(StateCancelled)
	e.log.Warnf("optimization cancelled after generation %d", gen)
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	if e.terminal() && e.paused {
		e.paused = false
		close(e.gate)
	}
	e.mu.Unlock()
}

func (e *Engine) terminal() bool {
	return e.state == StateCompleted || e.state == StateCancelled
}
