package whiteboard

import "errors"

var (
	// ErrInvalidReading is returned when a write carries a NaN or
	// infinite angle.
	ErrInvalidReading = errors.New("angle reading is not a finite number")
)
