package storage

import "time"

// Routine is a workout routine owned by a user.
type Routine struct {
	ID                string
	UserID            string
	Name              string
	Description       string
	EstimatedDuration int // minutes
	AIGenerated       bool
	CreatedAt         time.Time
}

// Workout is one scheduled workout row joined with its routine, carrying the
// per-user window aggregates computed by the history query. Every row for a
// given user carries identical aggregate values by construction.
type Workout struct {
	ID            string
	UserID        string
	RoutineID     string
	Date          time.Time
	Completed     bool
	FinalDuration *float64 // seconds; nil when never recorded
	Notes         string

	RoutineName       string
	EstimatedDuration int // minutes

	TotalWorkouts     int
	CompletedWorkouts int
	CompletionRate    float64
	AvgTimeDelta      float64 // seconds, signed; negative = finished early
}

// TrainingRow is one completed workout with recorded durations, used to
// build the labeled training dataset.
type TrainingRow struct {
	UserID            string
	RoutineID         string
	FinalDuration     float64 // seconds
	EstimatedDuration int     // minutes
	CompletionRate    float64
	AvgTimeDelta      float64
}

// UserRoutine pairs a user with one of their routines, used by the seed
// command to distribute synthetic workout scenarios.
type UserRoutine struct {
	UserID            string
	RoutineID         string
	EstimatedDuration int // minutes
}
