// Package vision turns raw pose estimates into body metrics and runs the
// per-session frame pipeline.
package vision

import (
	"math"

	"github.com/flexflow/flexflow/internal/domain/geometry"
	"github.com/flexflow/flexflow/internal/domain/pose"
	"github.com/flexflow/flexflow/internal/domain/types"
)

const (
	// coveredVisibility is the floor below which a landmark counts as
	// invisible when deciding whether the camera is covered.
	coveredVisibility = 0.1

	// classifyVisibility is the confidence bar for the lower-body
	// classification and for pointing detection.
	classifyVisibility = 0.5

	// pointingMaxDistance is the planar distance, in normalized frame
	// units, within which a fingertip counts as touching a target.
	pointingMaxDistance = 0.1

	positionDecimals   = 4
	visibilityDecimals = 2
)

// pointingTarget pairs a candidate landmark with its display label.
type pointingTarget struct {
	index int
	label string
}

// pointingTargets are checked in this order; among equally close
// candidates the earlier one wins.
var pointingTargets = []pointingTarget{
	{pose.LeftShoulder, "Left Shoulder"},
	{pose.RightShoulder, "Right Shoulder"},
	{pose.LeftElbow, "Left Elbow"},
	{pose.RightElbow, "Right Elbow"},
	{pose.LeftKnee, "Left Knee"},
	{pose.RightKnee, "Right Knee"},
}

// pointingHands are checked left first; the first hand with a qualifying
// match wins.
var pointingHands = []int{pose.LeftIndex, pose.RightIndex}

// Process classifies one pose estimate. A nil estimate means the frame
// had no subject.
func Process(est *pose.Estimate) Outcome {
	if est == nil {
		return NoSubject()
	}
	if covered(est) {
		return CameraCovered()
	}
	return NewReading(Reading{
		UpperBodyOnly: upperBodyOnly(est),
		Neck:          geometry.NeckTilt(est.At(pose.Nose), est.At(pose.LeftShoulder), est.At(pose.RightShoulder)),
		LeftElbow:     geometry.ElbowFlexion(est.At(pose.LeftShoulder), est.At(pose.LeftElbow), est.At(pose.LeftWrist)),
		RightElbow:    geometry.ElbowFlexion(est.At(pose.RightShoulder), est.At(pose.RightElbow), est.At(pose.RightWrist)),
		PointedPart:   pointedPart(est),
		Landmarks:     roundedLandmarks(est),
	})
}

// covered reports whether every landmark is effectively invisible.
func covered(est *pose.Estimate) bool {
	for i := range est.Landmarks {
		if est.Landmarks[i].Visibility >= coveredVisibility {
			return false
		}
	}
	return true
}

// upperBodyOnly reports whether the legs are out of frame.
func upperBodyOnly(est *pose.Estimate) bool {
	for _, i := range pose.LowerBody {
		if est.At(i).Visibility >= classifyVisibility {
			return false
		}
	}
	return true
}

// pointedPart returns the label of the body part a fingertip is held
// against, or "" when no pointing gesture qualifies.
func pointedPart(est *pose.Estimate) string {
	for _, hand := range pointingHands {
		fingertip := est.At(hand)
		if fingertip.Visibility < classifyVisibility {
			continue
		}
		closest := ""
		minDist := pointingMaxDistance
		for _, target := range pointingTargets {
			candidate := est.At(target.index)
			if candidate.Visibility < classifyVisibility {
				continue
			}
			if d := geometry.PlanarDistance(fingertip, candidate); d < minDist {
				minDist = d
				closest = target.label
			}
		}
		if closest != "" {
			return closest
		}
	}
	return ""
}

// roundedLandmarks converts the estimate to the wire form consumed by
// overlay observers.
func roundedLandmarks(est *pose.Estimate) []types.LandmarkPoint {
	out := make([]types.LandmarkPoint, pose.LandmarkCount)
	for i := range est.Landmarks {
		lm := est.Landmarks[i]
		out[i] = types.LandmarkPoint{
			X: roundTo(lm.X, positionDecimals),
			Y: roundTo(lm.Y, positionDecimals),
			Z: roundTo(lm.Z, positionDecimals),
			V: roundTo(lm.Visibility, visibilityDecimals),
		}
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
