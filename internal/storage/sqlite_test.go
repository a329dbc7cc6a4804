package storage

import (
	"context"
	"math"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fptr(v float64) *float64 { return &v }

func mustInsertUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	if err := s.InsertUser(id, email); err != nil {
		t.Fatalf("inserting user: %v", err)
	}
}

func mustInsertRoutine(t *testing.T, s *Store, r Routine) {
	t.Helper()
	if err := s.InsertRoutine(r); err != nil {
		t.Fatalf("inserting routine: %v", err)
	}
}

func mustInsertWorkout(t *testing.T, s *Store, w Workout) {
	t.Helper()
	if err := s.InsertWorkout(w); err != nil {
		t.Fatalf("inserting workout: %v", err)
	}
}

func TestOpenAndMigrate(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	// Migrations are idempotent across the same connection.
	if err := s.migrate(); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
}

func TestFetchRoutines_EmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)

	routines, err := s.FetchRoutines(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if routines == nil {
		t.Fatal("routines is nil, want empty slice")
	}
	if len(routines) != 0 {
		t.Errorf("routine count = %d, want 0", len(routines))
	}
}

func TestFetchRoutines_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "Old", EstimatedDuration: 30, CreatedAt: old})
	mustInsertRoutine(t, s, Routine{ID: "r2", UserID: "u1", Name: "Recent", EstimatedDuration: 45, CreatedAt: recent})

	routines, err := s.FetchRoutines(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routines) != 2 {
		t.Fatalf("routine count = %d, want 2", len(routines))
	}
	if routines[0].ID != "r2" || routines[1].ID != "r1" {
		t.Errorf("order = %s, %s; want r2, r1", routines[0].ID, routines[1].ID)
	}
	if routines[0].EstimatedDuration != 45 {
		t.Errorf("estimated duration = %d, want 45", routines[0].EstimatedDuration)
	}
}

func TestFetchWorkoutHistory_Aggregates(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "Cardio Blast", EstimatedDuration: 30})

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Completed 60s early, completed 120s late, one abandoned.
	mustInsertWorkout(t, s, Workout{ID: "w1", UserID: "u1", RoutineID: "r1", Date: day, Completed: true, FinalDuration: fptr(1740)})
	mustInsertWorkout(t, s, Workout{ID: "w2", UserID: "u1", RoutineID: "r1", Date: day.AddDate(0, 0, 1), Completed: true, FinalDuration: fptr(1920)})
	mustInsertWorkout(t, s, Workout{ID: "w3", UserID: "u1", RoutineID: "r1", Date: day.AddDate(0, 0, 2), Completed: false})

	history, err := s.FetchWorkoutHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history count = %d, want 3", len(history))
	}

	// Most recent first.
	if history[0].ID != "w3" {
		t.Errorf("first row = %s, want w3", history[0].ID)
	}

	head := history[0]
	if head.TotalWorkouts != 3 || head.CompletedWorkouts != 2 {
		t.Errorf("counts = %d/%d, want 3/2", head.TotalWorkouts, head.CompletedWorkouts)
	}
	if math.Abs(head.CompletionRate-2.0/3.0) > 1e-9 {
		t.Errorf("completion rate = %v, want 2/3", head.CompletionRate)
	}
	// avg(final - est*60) over rows with a duration: (-60 + 120) / 2 = 30.
	if math.Abs(head.AvgTimeDelta-30) > 1e-9 {
		t.Errorf("avg time delta = %v, want 30", head.AvgTimeDelta)
	}

	// Every row carries the same aggregates.
	for _, w := range history {
		if w.CompletionRate != head.CompletionRate || w.AvgTimeDelta != head.AvgTimeDelta {
			t.Errorf("row %s aggregates differ from head", w.ID)
		}
	}
	if history[0].RoutineName != "Cardio Blast" || history[0].EstimatedDuration != 30 {
		t.Errorf("routine join = %s/%d, want Cardio Blast/30", history[0].RoutineName, history[0].EstimatedDuration)
	}
}

func TestFetchWorkoutHistory_NullAggregatesAreZero(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "Yoga", EstimatedDuration: 30})

	// No workout has a recorded duration, so avg_time_delta is NULL.
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mustInsertWorkout(t, s, Workout{ID: "w1", UserID: "u1", RoutineID: "r1", Date: day, Completed: false})

	history, err := s.FetchWorkoutHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history[0].AvgTimeDelta != 0 {
		t.Errorf("avg time delta = %v, want 0 for NULL aggregate", history[0].AvgTimeDelta)
	}
}

func TestTrainingRows_FiltersIncomplete(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "Strength", EstimatedDuration: 30})

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mustInsertWorkout(t, s, Workout{ID: "w1", UserID: "u1", RoutineID: "r1", Date: day, Completed: true, FinalDuration: fptr(1800)})
	mustInsertWorkout(t, s, Workout{ID: "w2", UserID: "u1", RoutineID: "r1", Date: day.AddDate(0, 0, 1), Completed: false})
	mustInsertWorkout(t, s, Workout{ID: "w3", UserID: "u1", RoutineID: "r1", Date: day.AddDate(0, 0, 2), Completed: true}) // no duration

	rows, err := s.TrainingRows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("training row count = %d, want 1", len(rows))
	}
	if rows[0].FinalDuration != 1800 || rows[0].EstimatedDuration != 30 {
		t.Errorf("row = %v/%d, want 1800/30", rows[0].FinalDuration, rows[0].EstimatedDuration)
	}
}

func TestHasWorkoutOn(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "Yoga", EstimatedDuration: 30})

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mustInsertWorkout(t, s, Workout{ID: "w1", UserID: "u1", RoutineID: "r1", Date: day, Completed: true})

	exists, err := s.HasWorkoutOn("u1", "r1", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("workout not found on its date")
	}

	exists, err = s.HasWorkoutOn("u1", "r1", day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("workout reported on a different date")
	}
}

func TestUserRoutinePairs(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertUser(t, s, "u2", "u2@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "A", EstimatedDuration: 20})
	mustInsertRoutine(t, s, Routine{ID: "r2", UserID: "u2", Name: "B", EstimatedDuration: 40})

	pairs, err := s.UserRoutinePairs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pair count = %d, want 2", len(pairs))
	}
	if pairs[0].UserID != "u1" || pairs[0].RoutineID != "r1" || pairs[0].EstimatedDuration != 20 {
		t.Errorf("first pair = %+v, want u1/r1/20", pairs[0])
	}
}

func TestCountWorkouts(t *testing.T) {
	s := newTestStore(t)
	mustInsertUser(t, s, "u1", "u1@example.com")
	mustInsertRoutine(t, s, Routine{ID: "r1", UserID: "u1", Name: "A", EstimatedDuration: 20})

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mustInsertWorkout(t, s, Workout{ID: "w1", UserID: "u1", RoutineID: "r1", Date: day})
	mustInsertWorkout(t, s, Workout{ID: "w2", UserID: "u1", RoutineID: "r1", Date: day.AddDate(0, 0, 1)})

	count, err := s.CountWorkouts(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
