// Package metrics defines the observability contract of an optimization run.
// Sinks receive one GenerationEvent per emitted snapshot and, when they
// implement RunRecorder, a RunEvent at the end of the run. Sinks are built
// from configuration through a registry that infra/metrics populates, and
// several configured sinks are combined into a MultiSink.
package metrics
