package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts       int64             `json:"total_workouts"`
	TotalSets           int64             `json:"total_sets"`
	VelocitySets        int64             `json:"velocity_sets"`
	TotalNutritionLogs  int64             `json:"total_nutrition_logs"`
	TotalMobilityChecks int64             `json:"total_mobility_assessments"`
	TotalCheckIns       int64             `json:"total_check_ins"`
	EarliestData        *time.Time        `json:"earliest_data"`
	LatestData          *time.Time        `json:"latest_data"`
	WorkoutsByType      []WorkoutTypeStat `json:"workouts_by_type"`
}

// WorkoutTypeStat holds summary stats for a single workout type.
type WorkoutTypeStat struct {
	Type           string `json:"type"`
	Count          int64  `json:"count"`
	TotalMinutes   int64  `json:"total_minutes"`
	CompletedCount int64  `json:"completed_count"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	counts := []struct {
		what  string
		query string
		dest  *int64
	}{
		{"workouts", `SELECT COUNT(*) FROM workouts WHERE user_id = $1`, &stats.TotalWorkouts},
		{"sets", `SELECT COUNT(*) FROM workout_exercises WHERE user_id = $1`, &stats.TotalSets},
		{"velocity sets", `SELECT COUNT(*) FROM workout_exercises WHERE user_id = $1 AND velocity IS NOT NULL`, &stats.VelocitySets},
		{"nutrition logs", `SELECT COUNT(*) FROM nutrition_logs WHERE user_id = $1`, &stats.TotalNutritionLogs},
		{"mobility assessments", `SELECT COUNT(*) FROM mobility_assessments WHERE user_id = $1`, &stats.TotalMobilityChecks},
		{"check-ins", `SELECT COUNT(*) FROM health_metrics WHERE user_id = $1`, &stats.TotalCheckIns},
	}
	for _, c := range counts {
		if err := db.Pool.QueryRow(ctx, c.query, userID).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.what, err)
		}
	}

	err := db.Pool.QueryRow(ctx,
		`SELECT MIN(t), MAX(t) FROM (
			SELECT started_at AS t FROM workouts WHERE user_id = $1
			UNION ALL
			SELECT meal_time FROM nutrition_logs WHERE user_id = $1
			UNION ALL
			SELECT assessment_date FROM mobility_assessments WHERE user_id = $1
		) sub`, userID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT workout_type, COUNT(*), COALESCE(SUM(duration_minutes), 0), COUNT(completed_at)
		 FROM workouts
		 WHERE user_id = $1
		 GROUP BY workout_type
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutTypeStat
		if err := rows.Scan(&s.Type, &s.Count, &s.TotalMinutes, &s.CompletedCount); err != nil {
			return nil, fmt.Errorf("scanning workout type stat: %w", err)
		}
		stats.WorkoutsByType = append(stats.WorkoutsByType, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
