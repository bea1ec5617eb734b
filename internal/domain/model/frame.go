// Package model contains domain models passed between layers.
package model

// bytesPerPixel is the packed RGB stride.
const bytesPerPixel = 3

// Frame is one decoded RGB frame handed from a source to the pipeline.
// Frames are values: the pipeline never retains one past processing and
// never writes it anywhere.
type Frame struct {
	Data        []byte // tightly packed RGB, len = Width*Height*3
	Width       int
	Height      int
	TimestampUS int64  // capture time in microseconds
	Seq         uint64 // source-assigned, monotonically increasing
}

// Millis returns the capture timestamp in milliseconds, the unit the
// estimator contract requires.
func (f *Frame) Millis() int64 {
	return f.TimestampUS / 1000
}

// Complete reports whether the pixel buffer matches the declared dimensions.
func (f *Frame) Complete() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Data) == f.Width*f.Height*bytesPerPixel
}
