package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/homeopt/config"
	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/infra/mqtt"
)

type memSink struct {
	mu   sync.Mutex
	gens []int
	runs []coremetrics.RunEvent
}

func (m *memSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	m.mu.Lock()
	m.gens = append(m.gens, ev.Generation)
	m.mu.Unlock()
	return nil
}

func (m *memSink) RecordRun(ev coremetrics.RunEvent) error {
	m.mu.Lock()
	m.runs = append(m.runs, ev)
	m.mu.Unlock()
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	progress int
	results  []mqtt.ResultMessage
	handlers map[string]mqtt.ControlHandler
	onGen    func(p *fakePublisher, ev coremetrics.GenerationEvent)
	closed   bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{handlers: map[string]mqtt.ControlHandler{}}
}

func (p *fakePublisher) RecordGeneration(ev coremetrics.GenerationEvent) error {
	p.mu.Lock()
	p.progress++
	onGen := p.onGen
	p.mu.Unlock()
	if onGen != nil {
		onGen(p, ev)
	}
	return nil
}

func (p *fakePublisher) PublishResult(msg mqtt.ResultMessage) error {
	p.mu.Lock()
	p.results = append(p.results, msg)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) SubscribeControl(runID string, h mqtt.ControlHandler) error {
	p.mu.Lock()
	p.handlers[runID] = h
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) UnsubscribeControl(runID string) {
	p.mu.Lock()
	delete(p.handlers, runID)
	p.mu.Unlock()
}

func (p *fakePublisher) Disconnect() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *fakePublisher) send(runID string, cmd mqtt.Command) {
	p.mu.Lock()
	h := p.handlers[runID]
	p.mu.Unlock()
	if h != nil {
		h(runID, cmd)
	}
}

type flatTariff float64

func (f flatTariff) Fetch(context.Context, time.Time) (model.TariffSchedule, error) {
	rates := make([]float64, model.HoursPerDay)
	for i := range rates {
		rates[i] = float64(f)
	}
	return model.NewTariffSchedule(rates)
}

func testConfig(t *testing.T, pop, gens int) *config.Config {
	t.Helper()
	cfg := config.Default()
	seed := int64(3)
	cfg.Optimizer.PopulationSize = pop
	cfg.Optimizer.Generations = gens
	cfg.Optimizer.Seed = &seed
	return cfg
}

func TestRunCompleted(t *testing.T) {
	cfg := testConfig(t, 20, 20)
	cfg.Export = config.Default().Export
	cfg.Export.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Export.CSV = true

	sink := &memSink{}
	pub := newFakePublisher()
	svc, err := New(cfg, WithSink(sink), WithPublisher(pub))
	require.NoError(t, err)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coremetrics.RunCompleted, res.Status)
	assert.Len(t, res.Population, 20)
	assert.Equal(t, 20, res.Final.Generation)
	require.NotNil(t, res.Selected)
	assert.Equal(t, optimizer.StateCompleted, svc.State())

	sink.mu.Lock()
	assert.Len(t, sink.gens, 21)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, coremetrics.RunCompleted, sink.runs[0].Status)
	assert.Equal(t, res.Selected.Cost, sink.runs[0].BestCost)
	sink.mu.Unlock()

	pub.mu.Lock()
	assert.Equal(t, 21, pub.progress)
	require.Len(t, pub.results, 1)
	assert.Equal(t, res.RunID, pub.results[0].RunID)
	require.NotNil(t, pub.results[0].Selected)
	assert.Len(t, pub.results[0].Front, len(res.Final.Front))
	assert.Empty(t, pub.handlers, "control subscription released")
	pub.mu.Unlock()

	require.Len(t, res.Exported, 3)
	for _, p := range res.Exported {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

func TestRunUsesFetchedTariff(t *testing.T) {
	cfg := testConfig(t, 4, 1)
	svc, err := New(cfg, WithTariffSource(flatTariff(0.25)))
	require.NoError(t, err)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.25, res.Evaluator.Scenario().Tariff().RateForHour(13))
	assert.Equal(t, 5, res.Evaluator.Scenario().Len())
}

func TestRunCancelledByControlCommand(t *testing.T) {
	cfg := testConfig(t, 6, 1_000_000)
	pub := newFakePublisher()
	var once sync.Once
	pub.onGen = func(p *fakePublisher, ev coremetrics.GenerationEvent) {
		once.Do(func() { p.send(ev.RunID, mqtt.CommandPause) })
	}
	svc, err := New(cfg, WithPublisher(pub))
	require.NoError(t, err)

	type outcome struct {
		res *Result
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := svc.Run(context.Background())
		out <- outcome{res, err}
	}()

	require.Eventually(t, func() bool { return svc.State() == optimizer.StatePaused }, 5*time.Second, time.Millisecond)
	var runID string
	pub.mu.Lock()
	for id := range pub.handlers {
		runID = id
	}
	pub.mu.Unlock()
	pub.send(runID, mqtt.CommandCancel)

	select {
	case o := <-out:
		require.ErrorIs(t, o.err, optimizer.ErrCancelled)
		require.ErrorIs(t, o.err, context.Canceled)
		assert.Equal(t, coremetrics.RunCancelled, o.res.Status)
		assert.Nil(t, o.res.Population)
		assert.Less(t, o.res.Final.Generation, 1_000_000)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
	pub.mu.Lock()
	require.Len(t, pub.results, 1)
	assert.Equal(t, coremetrics.RunCancelled, pub.results[0].Status)
	pub.mu.Unlock()
}

func TestPauseResumeWithoutRunAreNoops(t *testing.T) {
	svc, err := New(testConfig(t, 4, 1))
	require.NoError(t, err)
	svc.Pause()
	svc.Resume()
	svc.Cancel()
	assert.Equal(t, optimizer.StateIdle, svc.State())
}

func TestRunCancelledContext(t *testing.T) {
	svc, err := New(testConfig(t, 4, 5))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Run(ctx)
	require.ErrorIs(t, err, optimizer.ErrCancelled)
	assert.Equal(t, coremetrics.RunCancelled, res.Status)
	assert.Nil(t, res.Selected)
	assert.Empty(t, res.Exported)
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := testConfig(t, 4, 1)
	cfg.Metrics.Sinks = []coremetrics.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`appliances:
  - name: Kettle
    duration_hours: 1
    power_kw: 2
    preferred_start_hour: 7
`), 0o644))
	cfg := testConfig(t, 4, 1)
	cfg.Scenario.Path = path
	svc, err := New(cfg)
	require.NoError(t, err)
	sc, err := svc.Scenario(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sc.Len())
	assert.Equal(t, "Kettle", sc.Appliance(0).Name)
}
