// Package coach is the conversational surface of the service: it renders
// whiteboard metrics into the text the agent's get_body_metrics tool
// returns, carries the session prompt, and screens utterances for pain
// keywords.
package coach

import (
	"fmt"

	"github.com/flexflow/flexflow/internal/domain/types"
)

// FormatMetrics renders a whiteboard snapshot as the metrics tool text.
// An empty pointed body part renders as "(none)".
func FormatMetrics(snap types.MetricsSnapshot) string {
	pointed := snap.PointedBodyPart
	if pointed == "" {
		pointed = "(none)"
	}
	return fmt.Sprintf(
		"Current body metrics: neck angle %.1f deg, left elbow %.1f deg, right elbow %.1f deg, upper body only %t, pointed body part %s",
		snap.NeckAngle,
		snap.ArmAngles.LeftElbow,
		snap.ArmAngles.RightElbow,
		snap.IsUpperBodyOnly,
		pointed,
	)
}
