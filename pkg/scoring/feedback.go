package scoring

import "github.com/menta2k/photo-coach/pkg/types"

// Feedback messages
const (
	FeedbackPosition = "Reposition subject to rule of thirds."
	FeedbackAngle    = "Align camera to avoid tilt."
	FeedbackLighting = "Adjust brightness for better exposure."
	FeedbackFocus    = "Hold camera steady to avoid blur."
)

// Suggestion messages
const (
	SuggestMoveRight  = "Move subject to the right."
	SuggestMoveLeft   = "Move subject to the left."
	SuggestMoveLower  = "Move subject lower."
	SuggestMoveHigher = "Move subject higher."
	SuggestStraighten = "Adjust camera to straighten horizon."
	SuggestMoreLight  = "Increase lighting or use flash."
	SuggestLessLight  = "Reduce exposure to avoid overexposure."
	SuggestStabilize  = "Use a tripod or stabilize hands."
)

// buildFeedback emits one feedback line per weak sub-score, in the order
// position, angle, lighting, focus, each followed by its suggestions.
func buildFeedback(m measurements, r types.ScoreReport) ([]string, []string) {
	feedback := []string{}
	suggestions := []string{}

	if g := m.subject; g != nil && r.Position < feedbackThreshold {
		feedback = append(feedback, FeedbackPosition)

		if g.cx < g.thirdsX[0] {
			suggestions = append(suggestions, SuggestMoveRight)
		} else if g.cx > g.thirdsX[1] {
			suggestions = append(suggestions, SuggestMoveLeft)
		}

		if g.cy < g.thirdsY[0] {
			suggestions = append(suggestions, SuggestMoveLower)
		} else if g.cy > g.thirdsY[1] {
			suggestions = append(suggestions, SuggestMoveHigher)
		}
	}

	if r.Angle < feedbackThreshold {
		feedback = append(feedback, FeedbackAngle)
		suggestions = append(suggestions, SuggestStraighten)
	}

	if r.Lighting < feedbackThreshold {
		feedback = append(feedback, FeedbackLighting)
		if m.brightness < darkBrightness {
			suggestions = append(suggestions, SuggestMoreLight)
		} else if m.brightness > brightBrightness {
			suggestions = append(suggestions, SuggestLessLight)
		}
	}

	if r.Focus < feedbackThreshold {
		feedback = append(feedback, FeedbackFocus)
		suggestions = append(suggestions, SuggestStabilize)
	}

	return feedback, suggestions
}
