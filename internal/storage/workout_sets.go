package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/google/uuid"
)

const setColumns = `id, workout_id, user_id, exercise_name, set_number, reps, weight_kg, rpe,
	velocity, peak_velocity, velocity_zone, training_goal, recommendation_category, recommendation,
	tempo, rest_seconds, form_score, notes, created_at`

const setInsertColumns = 19

// InsertWorkoutSets batch-inserts logged sets. Returns count inserted; sets whose
// ID already exists are skipped. A zero CreatedAt is stored as now.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_exercises (id, workout_id, user_id, exercise_name, set_number, reps,
		weight_kg, rpe, velocity, peak_velocity, velocity_zone, training_goal, recommendation_category,
		recommendation, tempo, rest_seconds, form_score, notes, created_at) VALUES `
	args := make([]any, 0, len(rows)*setInsertColumns)
	now := time.Now()
	for _, r := range rows {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		args = append(args, r.ID, r.WorkoutID, r.UserID, r.ExerciseName, r.SetNumber, r.Reps,
			r.WeightKg, r.RPE, r.Velocity, r.PeakVelocity, r.VelocityZone, r.TrainingGoal,
			r.RecommendationCategory, r.Recommendation, r.Tempo, r.RestSeconds, r.FormScore, r.Notes,
			createdAt)
	}
	query += placeholders(len(rows), setInsertColumns) + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkoutSets retrieves sets logged in a time range. exercise filters by
// case-insensitive substring when non-empty.
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exercise string) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+`
		 FROM workout_exercises
		 WHERE created_at >= $1 AND created_at < $2 AND user_id = $3
		   AND ($4 = '' OR exercise_name ILIKE '%' || $4 || '%')
		 ORDER BY created_at DESC, exercise_name ASC, set_number ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

func (db *DB) setsForWorkout(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+`
		 FROM workout_exercises
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY exercise_name ASC, set_number ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets of workout %s: %w", workoutID, err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

func scanSetRows(rows rowScanner) ([]models.WorkoutSetRow, error) {
	var result []models.WorkoutSetRow
	for rows.Next() {
		var r models.WorkoutSetRow
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.UserID, &r.ExerciseName, &r.SetNumber, &r.Reps,
			&r.WeightKg, &r.RPE, &r.Velocity, &r.PeakVelocity, &r.VelocityZone, &r.TrainingGoal,
			&r.RecommendationCategory, &r.Recommendation, &r.Tempo, &r.RestSeconds, &r.FormScore,
			&r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
