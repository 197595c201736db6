// Package infra holds the adapters behind the core interfaces: the zerolog
// logger, the metrics sinks and the MQTT publisher. Core packages never
// import infra.
package infra
