// Package metrics provides the observability hooks for the docs portal.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	type Resolver struct {
//	    recorder metrics.Recorder
//	}
//
// When monitoring.metrics.enabled is set the server swaps in a
// PrometheusRecorder and exposes HTTPHandler at the configured path.
package metrics
