// Package scoring produces the 1-10 priority for a candidate routine, using
// the predictive model when one is trained and deterministic rules otherwise.
// The rule path is always available as a fallback.
package scoring

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/merchanha/crossfit-routines/internal/features"
)

const baseScore = 5.0

// Predictor is the scoring-side view of the predictive model.
type Predictor interface {
	IsTrained() bool
	Predict(v features.Vector) ([]float64, error)
}

// UseModel reports whether the predictive path applies: the model must exist
// and report itself trained.
func UseModel(p Predictor) bool {
	return p != nil && p.IsTrained()
}

// Score returns the priority for a candidate routine. When the model path is
// active, the score is p_liked * 10; a prediction failure falls back to the
// rule-based score for that single candidate (logged, never propagated).
func Score(routineName string, v features.Vector, p Predictor) int {
	var score float64
	if UseModel(p) {
		probs, err := p.Predict(v)
		if err != nil {
			slog.Warn("model prediction failed, using rule-based score", "routine", routineName, "error", err)
			score = ruleScore(routineName, v)
		} else {
			pLiked := 0.5
			if len(probs) > 1 {
				pLiked = probs[1]
			}
			score = pLiked * 10
		}
	} else {
		score = ruleScore(routineName, v)
	}
	return clampPriority(score)
}

// ruleScore starts from the base score and accumulates bonuses. No penalties.
func ruleScore(routineName string, v features.Vector) float64 {
	score := baseScore

	if v.CompletionRate > 0.7 {
		score += 1.0
	}
	if v.AvgTimeDelta < -60 { // finishes over a minute early on average
		score += 1.0
	}

	name := strings.ToLower(routineName)
	if v.HasCardio && strings.Contains(name, "cardio") {
		score += 0.5
	}
	if v.HasStrength && (strings.Contains(name, "strength") || strings.Contains(name, "weight")) {
		score += 0.5
	}

	return score
}

// clampPriority truncates the float score to an integer, then clamps to
// [1,10]. Truncation (not rounding) is deliberate, so a 5.999 score yields
// priority 5.
func clampPriority(score float64) int {
	p := int(score)
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

// Reason builds the reasoning string for an existing-routine recommendation.
// It is keyed off the same thresholds as the rule score and never affects
// the numeric priority.
func Reason(routineName string, v features.Vector, usedModel bool) string {
	var reasons []string

	if usedModel {
		reasons = append(reasons, "ML model predicts you'll like this routine based on your workout patterns")
	} else {
		if v.CompletionRate > 0.7 {
			reasons = append(reasons, "You have a high completion rate")
		}
		if v.AvgTimeDelta < -60 {
			reasons = append(reasons, "you finish workouts efficiently")
		}

		name := strings.ToLower(routineName)
		if v.HasCardio && strings.Contains(name, "cardio") {
			reasons = append(reasons, "matches your cardio preferences")
		}
		if v.HasStrength && (strings.Contains(name, "strength") || strings.Contains(name, "weight")) {
			reasons = append(reasons, "aligns with your strength training")
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "this routine matches your current fitness level")
	}

	return fmt.Sprintf("Recommended because %s.", strings.Join(reasons, ", "))
}
