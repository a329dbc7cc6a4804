// Package features turns raw per-user workout and routine records into the
// fixed-shape feature vector consumed by the scorer and the predictive model.
package features

import (
	"strings"

	"github.com/merchanha/crossfit-routines/internal/storage"
)

// Keyword sets for routine type detection. Matching is case-folded substring,
// not whole-word.
var (
	cardioKeywords   = []string{"cardio", "hiit", "running", "endurance"}
	strengthKeywords = []string{"strength", "weight", "lifting", "power"}
)

// Vector is a fixed-shape summary of a user's workout behavior. All fields
// default to zero/false when source data is absent.
type Vector struct {
	CompletionRate    float64 `json:"completion_rate"`
	AvgTimeDelta      float64 `json:"avg_time_delta"` // seconds, signed
	TotalWorkouts     int     `json:"total_workouts"`
	CompletedWorkouts int     `json:"completed_workouts"`
	HasCardio         bool    `json:"has_cardio"`
	HasStrength       bool    `json:"has_strength"`
	AvgDuration       float64 `json:"avg_duration"` // minutes
}

// Extract builds a Vector from a user's workout history and routine library.
// Pure function: no side effects, inputs are not modified.
//
// The per-user aggregates are read from the first (most recent) history row;
// the upstream query computes them with window functions so every row carries
// identical values. An empty history yields the all-default vector regardless
// of the routine library.
func Extract(history []storage.Workout, routines []storage.Routine) Vector {
	var v Vector
	if len(history) == 0 {
		return v
	}

	head := history[0]
	v.CompletionRate = head.CompletionRate
	v.AvgTimeDelta = head.AvgTimeDelta
	v.TotalWorkouts = head.TotalWorkouts
	v.CompletedWorkouts = head.CompletedWorkouts

	names := make([]string, len(routines))
	for i, r := range routines {
		names[i] = strings.ToLower(r.Name)
	}
	joined := strings.Join(names, " ")
	v.HasCardio = containsAny(joined, cardioKeywords)
	v.HasStrength = containsAny(joined, strengthKeywords)

	// Mean recorded duration of completed workouts, converted to minutes.
	var sum float64
	var n int
	for _, w := range history {
		if w.Completed && w.FinalDuration != nil {
			sum += *w.FinalDuration
			n++
		}
	}
	if n > 0 {
		v.AvgDuration = sum / float64(n) / 60
	}

	return v
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
