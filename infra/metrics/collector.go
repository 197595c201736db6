package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/homeopt/core/metrics"
	"github.com/kilianp07/homeopt/infra/logger"
	"github.com/kilianp07/homeopt/internal/eventbus"
)

// StartEventCollector subscribes to bus and forwards every event to sink
// until ctx is done or the bus closes. The returned channel is closed when
// the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[coremetrics.GenerationEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.SubscribeBuffered(64)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordGeneration(ev); err != nil {
					log.Warnf("record generation %d: %v", ev.Generation, err)
				}
			}
		}
	}()
	return done
}
