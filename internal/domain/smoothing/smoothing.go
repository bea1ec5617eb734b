// Package smoothing damps per-frame estimator jitter with a bounded
// moving average per signal.
package smoothing

// defaultCapacity bounds the history when no option overrides it.
const defaultCapacity = 5

// Window is a fixed-capacity history of the most recent valid readings for
// one signal. It is not safe for concurrent use: the pipeline owns one
// window per signal and feeds it from a single goroutine.
type Window struct {
	values   []float64
	capacity int
}

// New creates a Window with configuration options.
func New(opts ...Option) *Window {
	w := &Window{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.capacity < 1 {
		w.capacity = 1
	}
	w.values = make([]float64, 0, w.capacity)
	return w
}

// Push feeds one observation and returns the stable value.
//
// A valid observation (ok true) is appended, evicting the oldest entry at
// capacity, and the mean of the history is returned. An unavailable
// observation (ok false) leaves the history untouched and returns the prior
// stable value, or 0 if the window has never been fed. A single bad frame
// therefore never drops the signal to a neutral value.
func (w *Window) Push(value float64, ok bool) float64 {
	if ok {
		if len(w.values) == w.capacity {
			copy(w.values, w.values[1:])
			w.values[len(w.values)-1] = value
		} else {
			w.values = append(w.values, value)
		}
	}

	if len(w.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values))
}

// Last returns the current stable value without feeding an observation.
func (w *Window) Last() float64 {
	return w.Push(0, false)
}

// Len returns the number of observations currently held.
func (w *Window) Len() int {
	return len(w.values)
}

// Reset drops the history, returning the window to its never-fed state.
func (w *Window) Reset() {
	w.values = w.values[:0]
}
