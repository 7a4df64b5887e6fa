// Package observability carries the ambient stack every run needs
// regardless of the content-indexing domain: a logrus-backed logger with
// the phase-1 buffering bootstrap logger (§4.4), Prometheus metrics,
// health checks for the durable providers, OpenTelemetry tracing, panic
// recovery, and graceful shutdown coordination.
package observability
