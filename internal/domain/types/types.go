// Package types contains common types used across the application
package types

// ArmAngles carries the smoothed elbow flexion angles in degrees.
type ArmAngles struct {
	LeftElbow  float64 `json:"left_elbow"`
	RightElbow float64 `json:"right_elbow"`
}

// MetricsSnapshot is the whiteboard content: the latest fully-committed body
// metrics for one session. Readers always see all four fields from the same
// update, never a torn mix.
type MetricsSnapshot struct {
	IsUpperBodyOnly bool      `json:"is_upper_body_only"`
	NeckAngle       float64   `json:"neck_angle"`
	ArmAngles       ArmAngles `json:"arm_angles"`
	PointedBodyPart string    `json:"pointed_body_part"`
}

// DefaultSnapshot returns the valid pre-first-frame state: upper-body-only
// assumed, neutral angles, nothing pointed at.
func DefaultSnapshot() MetricsSnapshot {
	return MetricsSnapshot{IsUpperBodyOnly: true}
}

// LandmarkPoint is one entry of the published 33-point observer array.
// Coordinates are rounded to four decimals and visibility to two before
// publishing; consumers only need overlay precision.
type LandmarkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	V float64 `json:"v"`
}
