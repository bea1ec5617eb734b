// Package smoothing damps per-frame estimator jitter with a bounded
// moving average per signal.
package smoothing

// Option applies a configuration option to the Window.
type Option func(*Window)

// WithCapacity sets the maximum number of readings kept in the history.
// Values below 1 are clamped to 1.
func WithCapacity(capacity int) Option {
	return func(w *Window) {
		w.capacity = capacity
	}
}
