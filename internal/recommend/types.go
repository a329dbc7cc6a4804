package recommend

import "errors"

// ErrInvalidUserID is returned when the user identifier is not a UUID.
var ErrInvalidUserID = errors.New("invalid user id")

// ExistingRecommendation points at a routine already in the user's library.
type ExistingRecommendation struct {
	RoutineID string `json:"routine_id"`
	Reasoning string `json:"reasoning"`
	Priority  int    `json:"priority"`
}

// Exercise is one exercise inside a synthesized routine.
type Exercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  int    `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

// NewRecommendation is a synthesized routine assembled from the template
// catalog; it is not persisted anywhere.
type NewRecommendation struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
	Exercises         []Exercise `json:"exercises"`
	Reasoning         string     `json:"reasoning"`
	Priority          int        `json:"priority"`
}

// Response is the full recommendation payload for one user.
type Response struct {
	ExistingRoutines []ExistingRecommendation `json:"existing_routines"`
	NewRoutines      []NewRecommendation      `json:"new_routines"`
}
