package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/merchanha/crossfit-routines/internal/storage"
)

// Scenario is one synthetic workout occurrence for a user-routine pair.
type Scenario struct {
	Date          time.Time
	Completed     bool
	FinalDuration *float64 // seconds; nil for incomplete workouts
	Notes         string
}

// GenerateScenarios produces a realistic mix of liked and not-liked workout
// scenarios for a single routine: several completed runs with good times,
// one or two abandoned workouts, one or two completed-but-slow runs, and
// occasionally a single on-pace run. estimatedDuration is in minutes; zero
// falls back to 30.
func GenerateScenarios(rng *rand.Rand, estimatedDuration int) []Scenario {
	if estimatedDuration <= 0 {
		estimatedDuration = 30
	}
	estimatedSeconds := estimatedDuration * 60

	var scenarios []Scenario

	// Liked: completed 3-5 times, finishing up to two minutes early.
	for i, n := 0, 3+rng.Intn(3); i < n; i++ {
		delta := -rng.Intn(121) // [-120, 0]
		duration := float64(estimatedSeconds + delta)
		scenarios = append(scenarios, Scenario{
			Date:          daysAgo(rng, 90),
			Completed:     true,
			FinalDuration: &duration,
			Notes:         fmt.Sprintf("Good performance - finished %ds faster", -delta),
		})
	}

	// Not liked: started but never finished.
	for i, n := 0, 1+rng.Intn(2); i < n; i++ {
		scenarios = append(scenarios, Scenario{
			Date:      daysAgo(rng, 90),
			Completed: false,
			Notes:     "Workout not completed",
		})
	}

	// Not liked: completed but took 3-10 minutes longer than estimated.
	for i, n := 0, 1+rng.Intn(2); i < n; i++ {
		delta := 180 + rng.Intn(421) // [180, 600]
		duration := float64(estimatedSeconds + delta)
		scenarios = append(scenarios, Scenario{
			Date:          daysAgo(rng, 90),
			Completed:     true,
			FinalDuration: &duration,
			Notes:         fmt.Sprintf("Poor performance - took %ds longer than estimated", delta),
		})
	}

	// Occasionally a single on-pace run, for variety.
	if rng.Float64() < 0.3 {
		delta := rng.Intn(121) - 60 // [-60, 60]
		duration := float64(estimatedSeconds + delta)
		scenarios = append(scenarios, Scenario{
			Date:          daysAgo(rng, 90),
			Completed:     true,
			FinalDuration: &duration,
			Notes:         "Single good performance",
		})
	}

	return scenarios
}

func daysAgo(rng *rand.Rand, maxDays int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -(1 + rng.Intn(maxDays)))
}

// SeedStore is the storage surface the seeder needs.
type SeedStore interface {
	UserRoutinePairs(ctx context.Context) ([]storage.UserRoutine, error)
	HasWorkoutOn(userID, routineID string, date time.Time) (bool, error)
	InsertWorkout(w storage.Workout) error
}

// Seed generates up to count synthetic workouts distributed across every
// user-routine pair and inserts them, skipping duplicates on the same
// (user, routine, date). Returns the inserted and skipped counts.
func Seed(ctx context.Context, store SeedStore, rng *rand.Rand, count int) (inserted, skipped int, err error) {
	pairs, err := store.UserRoutinePairs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing user-routine pairs: %w", err)
	}
	if len(pairs) == 0 {
		return 0, 0, fmt.Errorf("no users or routines to seed against")
	}

	logger := slog.Default()
	total := 0
	for _, pair := range pairs {
		if total >= count {
			break
		}
		for _, sc := range GenerateScenarios(rng, pair.EstimatedDuration) {
			if total >= count {
				break
			}
			total++

			exists, err := store.HasWorkoutOn(pair.UserID, pair.RoutineID, sc.Date)
			if err != nil {
				return inserted, skipped, fmt.Errorf("checking existing workout: %w", err)
			}
			if exists {
				skipped++
				continue
			}

			w := storage.Workout{
				ID:            uuid.New().String(),
				UserID:        pair.UserID,
				RoutineID:     pair.RoutineID,
				Date:          sc.Date,
				Completed:     sc.Completed,
				FinalDuration: sc.FinalDuration,
				Notes:         sc.Notes,
			}
			if err := store.InsertWorkout(w); err != nil {
				logger.Warn("failed to insert workout, skipping", "error", err)
				skipped++
				continue
			}
			inserted++
		}
	}

	logger.Info("seeded training data", "inserted", inserted, "skipped", skipped)
	return inserted, skipped, nil
}
