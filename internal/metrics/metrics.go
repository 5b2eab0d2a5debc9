// Package metrics defines the instrumentation hooks used by the engine and
// actions, with a no-op default and a Prometheus implementation.
package metrics

import "time"

// Recorder defines the metric hooks for fragment processing.
type Recorder interface {
	ObserveNode(task, node, status string, duration time.Duration)
	ObserveFragment(status string)
	ObserveFallback(breaker string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveNode(string, string, string, time.Duration) {}
func (NoopRecorder) ObserveFragment(string)                            {}
func (NoopRecorder) ObserveFallback(string)                            {}
