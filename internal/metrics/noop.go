package metrics

import "time"

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserCreated()       {}
func (n *NoopRecorder) IncUserUpdated()       {}
func (n *NoopRecorder) IncUserDeleted()       {}
func (n *NoopRecorder) IncRateLimitRejected() {}
func (n *NoopRecorder) ObserveRequestDuration(method, path string, status int, duration time.Duration) {
}
