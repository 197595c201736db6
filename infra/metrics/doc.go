// Package metrics provides the concrete progress sinks (Prometheus, InfluxDB
// and structured logs), registers them with the core metrics registry and
// serves the Prometheus endpoint.
package metrics
