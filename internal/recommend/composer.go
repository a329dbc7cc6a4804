// Package recommend orchestrates the recommendation pipeline: fetch user
// data, extract features, score the existing routine library, and synthesize
// new routine templates for detected weaknesses.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/merchanha/crossfit-routines/internal/features"
	"github.com/merchanha/crossfit-routines/internal/scoring"
	"github.com/merchanha/crossfit-routines/internal/storage"
)

const (
	maxExisting = 5
	maxNew      = 3
)

// Source provides the user's workout history and routine library.
// Implemented by storage.Store. Both methods return empty slices, never nil,
// when no data exists.
type Source interface {
	FetchWorkoutHistory(ctx context.Context, userID string) ([]storage.Workout, error)
	FetchRoutines(ctx context.Context, userID string) ([]storage.Routine, error)
}

// ModelSource yields the predictive model instance for the current request.
// The production implementation reads through an atomically swapped
// reference; tests supply a fixed predictor.
type ModelSource interface {
	Current() scoring.Predictor
}

type staticModel struct{ p scoring.Predictor }

func (s staticModel) Current() scoring.Predictor { return s.p }

// StaticModel wraps a fixed predictor as a ModelSource.
func StaticModel(p scoring.Predictor) ModelSource {
	return staticModel{p: p}
}

// Composer generates recommendations for one user per call. It holds no
// per-request state and is safe for concurrent use.
type Composer struct {
	source Source
	models ModelSource
	logger *slog.Logger
}

// New creates a Composer.
func New(source Source, models ModelSource) *Composer {
	return &Composer{
		source: source,
		models: models,
		logger: slog.Default(),
	}
}

// Generate produces the ranked recommendation lists for userID. A malformed
// userID yields ErrInvalidUserID; a collaborator fetch failure is returned
// as-is (wrapped), never retried.
func (c *Composer) Generate(ctx context.Context, userID string) (Response, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return Response{}, fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}

	// The two collaborator reads are independent; fetch them concurrently.
	var history []storage.Workout
	var routines []storage.Routine
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = c.source.FetchWorkoutHistory(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		routines, err = c.source.FetchRoutines(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Response{}, fmt.Errorf("fetching user data: %w", err)
	}

	if len(history) == 0 && len(routines) == 0 {
		c.logger.Warn("no data found for user, returning default recommendations", "user_id", userID)
		return Response{
			ExistingRoutines: []ExistingRecommendation{},
			NewRoutines:      []NewRecommendation{balancedTemplate()},
		}, nil
	}

	v := features.Extract(history, routines)

	// One model snapshot per request: the trained-state check and every
	// prediction observe the same instance even if a reload swaps the
	// reference mid-request.
	pred := c.models.Current()
	usedModel := scoring.UseModel(pred)

	c.logger.Info("analyzing user data",
		"user_id", userID,
		"workouts", len(history),
		"routines", len(routines),
		"completion_rate", v.CompletionRate,
		"model_trained", usedModel,
	)

	existing := recommendExisting(routines, v, pred, usedModel)
	synthesized := synthesizeRoutines(v)

	c.logger.Info("generated recommendations",
		"user_id", userID,
		"existing", len(existing),
		"new", len(synthesized),
	)

	return Response{ExistingRoutines: existing, NewRoutines: synthesized}, nil
}

// recommendExisting scores every routine in the library, sorts by priority
// descending (stable, so ties keep encounter order), and keeps the top 5.
func recommendExisting(routines []storage.Routine, v features.Vector, pred scoring.Predictor, usedModel bool) []ExistingRecommendation {
	recs := []ExistingRecommendation{}
	for _, r := range routines {
		recs = append(recs, ExistingRecommendation{
			RoutineID: r.ID,
			Reasoning: scoring.Reason(r.Name, v, usedModel),
			Priority:  scoring.Score(r.Name, v, pred),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})

	if len(recs) > maxExisting {
		recs = recs[:maxExisting]
	}
	return recs
}

// synthesizeRoutines appends one template per detected weakness, in fixed
// order, falling back to the balanced template when nothing triggered. The
// result keeps generation order (not re-sorted) and is capped at 3.
func synthesizeRoutines(v features.Vector) []NewRecommendation {
	routines := []NewRecommendation{}

	if v.CompletionRate < 0.5 {
		routines = append(routines, quickWorkoutTemplate())
	}
	if v.AvgTimeDelta > 120 {
		routines = append(routines, timeEfficientTemplate())
	}
	if !v.HasCardio {
		routines = append(routines, cardioTemplate())
	}
	if !v.HasStrength {
		routines = append(routines, strengthTemplate())
	}
	if len(routines) == 0 {
		routines = append(routines, balancedTemplate())
	}

	if len(routines) > maxNew {
		routines = routines[:maxNew]
	}
	return routines
}
