package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/google/uuid"
)

const workoutColumns = `id, user_id, name, workout_type, started_at, completed_at, duration_minutes,
	calories_burned, avg_heart_rate, intensity_level, notes, ai_feedback, created_at`

// InsertWorkout inserts a workout row. Returns true if inserted, false if duplicate.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, workout_type, started_at, completed_at,
		 duration_minutes, calories_burned, avg_heart_rate, intensity_level, notes, ai_feedback)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.Name, row.WorkoutType, row.StartedAt, row.CompletedAt,
		row.DurationMinutes, row.CaloriesBurned, row.AvgHeartRate, row.IntensityLevel,
		row.Notes, nullJSON(row.AIFeedback))
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// WorkoutDetail is a workout with its logged sets.
type WorkoutDetail struct {
	models.WorkoutRow
	Sets []models.WorkoutSetRow `json:"sets"`
}

// QueryWorkouts retrieves workouts started in a time range, newest first.
// An empty workoutType matches all types.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int, workoutType string) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE started_at >= $1 AND started_at < $2 AND user_id = $3
		   AND ($4 = '' OR workout_type = $4)
		 ORDER BY started_at DESC`,
		start, end, userID, workoutType)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// RecentWorkouts returns the user's latest workouts regardless of date.
func (db *DB) RecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// GetWorkout retrieves a single workout by ID with its sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	var w models.WorkoutRow
	if err := scanWorkout(row, &w); err != nil {
		return nil, notFound(err, "workout")
	}

	sets, err := db.setsForWorkout(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{WorkoutRow: w, Sets: sets}, nil
}

// CompleteWorkout stamps completion time, derives the duration from started_at
// and stores the coach feedback, if any.
func (db *DB) CompleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int, completedAt time.Time, feedback json.RawMessage) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET
		 completed_at = $3,
		 duration_minutes = GREATEST(0, EXTRACT(EPOCH FROM ($3 - started_at))::int / 60),
		 ai_feedback = COALESCE($4, ai_feedback)
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID, completedAt, nullJSON(feedback))
	if err != nil {
		return fmt.Errorf("completing workout %s: %w", workoutID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
	}
	return nil
}

func scanWorkout(row interface{ Scan(dest ...any) error }, w *models.WorkoutRow) error {
	var feedback []byte
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.WorkoutType, &w.StartedAt, &w.CompletedAt,
		&w.DurationMinutes, &w.CaloriesBurned, &w.AvgHeartRate, &w.IntensityLevel,
		&w.Notes, &feedback, &w.CreatedAt); err != nil {
		return err
	}
	if len(feedback) > 0 {
		w.AIFeedback = json.RawMessage(feedback)
	}
	return nil
}

func scanWorkoutRows(rows rowScanner) ([]models.WorkoutRow, error) {
	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := scanWorkout(rows, &w); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// nullJSON keeps an empty document out of a JSONB column.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
