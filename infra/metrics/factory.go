package metrics

import (
	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/infra/logger"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := coremetrics.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterMetricsSink("log", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Every int `json:"every"`
		}
		if err := coremetrics.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLogSink(logger.New("progress"), c.Every), nil
	})
}
