package metrics

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	created := 0
	if err := RegisterMetricsSink("test-counter", func(map[string]any) (MetricsSink, error) {
		created++
		return &recordSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterMetricsSink("test-counter", func(map[string]any) (MetricsSink, error) { return NopSink{}, nil }); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := RegisterMetricsSink("test-nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}

	s, err := NewMetricsSink([]ModuleConfig{{Type: "test-counter"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*recordSink); !ok {
		t.Fatalf("expected recordSink, got %T", s)
	}

	s, err = NewMetricsSink([]ModuleConfig{{Type: "test-counter"}, {Type: "test-counter"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*MultiSink)
	if !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks, got %T", s)
	}
	if created != 3 {
		t.Fatalf("factory called %d times", created)
	}

	found := false
	for _, n := range RegisteredSinks() {
		if n == "test-counter" {
			found = true
		}
	}
	if !found {
		t.Fatal("registered sink not listed")
	}
}

func TestNewMetricsSinkDefaults(t *testing.T) {
	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if _, err := NewMetricsSink([]ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestDecode(t *testing.T) {
	var c struct {
		URL     string    `json:"url"`
		Timeout int       `json:"timeout_seconds"`
		Buckets []float64 `json:"buckets"`
	}
	err := Decode(map[string]any{"url": "http://x", "timeout_seconds": "5", "buckets": []any{1, 2.5}}, &c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.URL != "http://x" || c.Timeout != 5 || len(c.Buckets) != 2 {
		t.Fatalf("unexpected decode %+v", c)
	}
}
