package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/merchanha/crossfit-routines/internal/config"
	"github.com/merchanha/crossfit-routines/internal/model"
	"github.com/merchanha/crossfit-routines/internal/recommend"
	"github.com/merchanha/crossfit-routines/internal/storage"
	"github.com/merchanha/crossfit-routines/internal/training"
)

// --- train ---

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the predictive model from stored workout history",
	Long: `Train the predictive model from stored workout history.

Builds a labeled dataset from completed workouts and fits the model. The
trained artifact is written to the configured model path, where a running
server picks it up automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		if _, err := model.Detect(cfg.Model.Type); err != nil {
			return fmt.Errorf("checking model type: %w", err)
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		printStep("Building training dataset...")
		rows, err := store.TrainingRows(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching training rows: %w", err)
		}
		if len(rows) == 0 {
			printError("No completed workouts with recorded durations found")
			return fmt.Errorf("no training data")
		}

		ds := training.BuildDataset(rows)
		liked, notLiked := ds.ClassCounts()
		printStatus("Samples", "%d (%d liked, %d not liked)", len(ds.Samples), liked, notLiked)

		if liked == 0 || notLiked == 0 {
			printError("Training data contains only one preference class, not saving model")
			return fmt.Errorf("need both liked and not-liked samples, got %d/%d", liked, notLiked)
		}

		printStep("Training model...")
		rec := model.New()
		rec.Train(ds)

		if err := rec.Save(cfg.Model.Path); err != nil {
			return fmt.Errorf("saving model: %w", err)
		}

		printSuccess("Model trained on %d samples and saved to %s", len(ds.Samples), cfg.Model.Path)
		return nil
	},
}

// --- seed ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic workout history for model training",
	Long: `Generate synthetic workout history for model training.

Creates demo users and routines when the database is empty, then inserts
randomized workout scenarios covering liked and not-liked patterns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		pairs, err := store.UserRoutinePairs(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing user-routine pairs: %w", err)
		}
		if len(pairs) == 0 {
			printStep("No users or routines found, creating demo data...")
			if err := bootstrapDemoData(store); err != nil {
				return fmt.Errorf("creating demo data: %w", err)
			}
		}

		printStep("Seeding workout history...")
		inserted, skipped, err := training.Seed(cmd.Context(), store, rng, count)
		if err != nil {
			return err
		}

		printSuccess("Inserted %d workouts (%d skipped)", inserted, skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("count", 50, "maximum number of workouts to insert")
}

// bootstrapDemoData creates demo users with a routine library spanning the
// cardio and strength keywords so seeded histories cover both feature paths.
func bootstrapDemoData(store *storage.Store) error {
	routines := []struct {
		name        string
		description string
		duration    int
	}{
		{"Morning Cardio Blast", "High-energy cardio session to start the day.", 30},
		{"Strength Training Basics", "Compound lifts focused on building strength.", 45},
		{"HIIT Express", "Short high-intensity interval training session.", 20},
		{"Endurance Running", "Steady-state running for cardio endurance.", 40},
		{"Weight Lifting Power Hour", "Heavy weight session targeting major muscle groups.", 60},
	}

	for i := 0; i < 3; i++ {
		userID := uuid.New().String()
		email := fmt.Sprintf("demo%d@example.com", i+1)
		if err := store.InsertUser(userID, email); err != nil {
			return fmt.Errorf("inserting user %s: %w", email, err)
		}

		for _, r := range routines {
			routine := storage.Routine{
				ID:                uuid.New().String(),
				UserID:            userID,
				Name:              r.name,
				Description:       r.description,
				EstimatedDuration: r.duration,
				CreatedAt:         time.Now().UTC(),
			}
			if err := store.InsertRoutine(routine); err != nil {
				return fmt.Errorf("inserting routine %q: %w", r.name, err)
			}
		}
	}

	return nil
}

// --- recommend ---

// shortID truncates a routine ID for display. IDs are normally UUIDs but the
// store does not enforce that, so shorter IDs pass through unchanged.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <user_id>",
	Short: "Fetch recommendations for a user from the running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/recommendations", map[string]string{"user_id": userID})
		if err != nil {
			return err
		}

		var result recommend.Response
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.ExistingRoutines) > 0 {
			fmt.Println(colorize(colorBold, "Existing routines:"))
			for _, r := range result.ExistingRoutines {
				fmt.Printf("  %s  priority %d\n", colorize(colorCyan, shortID(r.RoutineID)), r.Priority)
				fmt.Printf("    %s\n", r.Reasoning)
			}
		}

		if len(result.NewRoutines) > 0 {
			fmt.Println(colorize(colorBold, "Suggested new routines:"))
			for _, r := range result.NewRoutines {
				fmt.Printf("  %s (%d min, priority %d)\n", colorize(colorGreen, r.Name), r.EstimatedDuration, r.Priority)
				fmt.Printf("    %s\n", r.Reasoning)
				for _, ex := range r.Exercises {
					fmt.Printf("    - %s: %d x %d\n", ex.Name, ex.Sets, ex.Reps)
				}
			}
		}

		return nil
	},
}
