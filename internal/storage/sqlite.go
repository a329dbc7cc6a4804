package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

// Store wraps a SQLite database with methods for workouts, routines, and
// training data.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "recsvc.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Users ---

func (s *Store) InsertUser(id, email string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		id, email, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// --- Routines ---

func (s *Store) InsertRoutine(r Routine) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO routines (id, user_id, name, description, estimated_duration, ai_generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Name, r.Description, r.EstimatedDuration, r.AIGenerated,
		createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// FetchRoutines returns the user's routine library, newest first. Returns an
// empty slice, never nil, when the user has no routines.
func (s *Store) FetchRoutines(ctx context.Context, userID string) ([]Routine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, estimated_duration, ai_generated, created_at
		FROM routines
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Routine{}
	for rows.Next() {
		var r Routine
		var estimated sql.NullInt64
		var createdAt string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &estimated, &r.AIGenerated, &createdAt); err != nil {
			return nil, err
		}
		if estimated.Valid {
			r.EstimatedDuration = int(estimated.Int64)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.CreatedAt = t
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- Scheduled workouts ---

func (s *Store) InsertWorkout(w Workout) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var finalDuration any
	if w.FinalDuration != nil {
		finalDuration = *w.FinalDuration
	}
	_, err := s.db.Exec(`
		INSERT INTO scheduled_workouts (id, user_id, routine_id, date, completed, final_duration, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.RoutineID, w.Date.Format(dateLayout), w.Completed, finalDuration, w.Notes, now, now,
	)
	return err
}

// HasWorkoutOn reports whether a workout already exists for the given user,
// routine, and date. Used by the seed command to skip duplicates.
func (s *Store) HasWorkoutOn(userID, routineID string, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM scheduled_workouts
		WHERE user_id = ? AND routine_id = ? AND date = ?`,
		userID, routineID, date.Format(dateLayout),
	).Scan(&count)
	return count > 0, err
}

// FetchWorkoutHistory returns the user's workout history joined with routine
// details, most recent first. Each row carries per-user aggregates computed
// with window functions, so all rows for a user hold the same aggregate
// values. Returns an empty slice, never nil, when the user has no history.
func (s *Store) FetchWorkoutHistory(ctx context.Context, userID string) ([]Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			sw.id,
			sw.user_id,
			sw.routine_id,
			sw.date,
			sw.completed,
			sw.final_duration,
			sw.notes,
			r.name,
			r.estimated_duration,
			COUNT(*) OVER (PARTITION BY sw.user_id) AS total_workouts,
			COUNT(*) FILTER (WHERE sw.completed) OVER (PARTITION BY sw.user_id) AS completed_workouts,
			AVG(CASE WHEN sw.completed THEN 1.0 ELSE 0.0 END) OVER (PARTITION BY sw.user_id) AS completion_rate,
			AVG(sw.final_duration - r.estimated_duration * 60) OVER (PARTITION BY sw.user_id) AS avg_time_delta
		FROM scheduled_workouts sw
		JOIN routines r ON sw.routine_id = r.id
		WHERE sw.user_id = ?
		ORDER BY sw.date DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Workout{}
	for rows.Next() {
		var w Workout
		var date string
		var finalDuration sql.NullFloat64
		var estimated sql.NullInt64
		var completionRate, avgTimeDelta sql.NullFloat64
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.RoutineID, &date, &w.Completed, &finalDuration, &w.Notes,
			&w.RoutineName, &estimated,
			&w.TotalWorkouts, &w.CompletedWorkouts, &completionRate, &avgTimeDelta,
		); err != nil {
			return nil, err
		}
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		w.Date = t
		if finalDuration.Valid {
			v := finalDuration.Float64
			w.FinalDuration = &v
		}
		if estimated.Valid {
			w.EstimatedDuration = int(estimated.Int64)
		}
		// NULL aggregates (e.g. no completed workout has a recorded
		// duration) map to zero rather than propagating.
		w.CompletionRate = completionRate.Float64
		w.AvgTimeDelta = avgTimeDelta.Float64
		results = append(results, w)
	}
	return results, rows.Err()
}

// --- Training data ---

// TrainingRows returns all completed workouts with recorded durations across
// every user, each carrying the same per-user window aggregates used at
// recommendation time.
func (s *Store) TrainingRows(ctx context.Context) ([]TrainingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			sw.user_id,
			sw.routine_id,
			sw.final_duration,
			r.estimated_duration,
			AVG(CASE WHEN sw.completed THEN 1.0 ELSE 0.0 END) OVER (PARTITION BY sw.user_id) AS completion_rate,
			AVG(sw.final_duration - r.estimated_duration * 60) OVER (PARTITION BY sw.user_id) AS avg_time_delta
		FROM scheduled_workouts sw
		JOIN routines r ON sw.routine_id = r.id
		WHERE sw.completed = 1
		AND sw.final_duration IS NOT NULL
		AND r.estimated_duration IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []TrainingRow{}
	for rows.Next() {
		var tr TrainingRow
		var completionRate, avgTimeDelta sql.NullFloat64
		if err := rows.Scan(&tr.UserID, &tr.RoutineID, &tr.FinalDuration, &tr.EstimatedDuration, &completionRate, &avgTimeDelta); err != nil {
			return nil, err
		}
		tr.CompletionRate = completionRate.Float64
		tr.AvgTimeDelta = avgTimeDelta.Float64
		results = append(results, tr)
	}
	return results, rows.Err()
}

// UserRoutinePairs returns every (user, routine) combination, used by the
// seed command to distribute synthetic workout scenarios.
func (s *Store) UserRoutinePairs(ctx context.Context) ([]UserRoutine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, r.id, r.estimated_duration
		FROM users u
		JOIN routines r ON r.user_id = u.id
		ORDER BY u.id, r.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []UserRoutine{}
	for rows.Next() {
		var ur UserRoutine
		var estimated sql.NullInt64
		if err := rows.Scan(&ur.UserID, &ur.RoutineID, &estimated); err != nil {
			return nil, err
		}
		if estimated.Valid {
			ur.EstimatedDuration = int(estimated.Int64)
		}
		results = append(results, ur)
	}
	return results, rows.Err()
}

// CountWorkouts returns the number of scheduled workouts for a user.
func (s *Store) CountWorkouts(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scheduled_workouts WHERE user_id = ?", userID,
	).Scan(&count)
	return count, err
}
