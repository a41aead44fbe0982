package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
)

const healthMetricColumns = `id, user_id, date, body_weight, hrv_score, resting_heart_rate, sleep_hours,
	sleep_quality, soreness_level, stress_level, recovery_score, notes`

// UpsertHealthMetric stores the daily check-in. A second check-in on the same
// date replaces the first. Returns the stored row.
func (db *DB) UpsertHealthMetric(ctx context.Context, row models.HealthMetricRow) (*models.HealthMetricRow, error) {
	var out models.HealthMetricRow
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO health_metrics (id, user_id, date, body_weight, hrv_score, resting_heart_rate,
		 sleep_hours, sleep_quality, soreness_level, stress_level, recovery_score, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			body_weight = EXCLUDED.body_weight,
			hrv_score = EXCLUDED.hrv_score,
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			sleep_hours = EXCLUDED.sleep_hours,
			sleep_quality = EXCLUDED.sleep_quality,
			soreness_level = EXCLUDED.soreness_level,
			stress_level = EXCLUDED.stress_level,
			recovery_score = EXCLUDED.recovery_score,
			notes = EXCLUDED.notes
		 RETURNING `+healthMetricColumns,
		row.ID, row.UserID, row.Date, row.BodyWeight, row.HRVScore, row.RestingHeartRate,
		row.SleepHours, row.SleepQuality, row.SorenessLevel, row.StressLevel, row.RecoveryScore, row.Notes,
	).Scan(healthMetricDest(&out)...)
	if err != nil {
		return nil, fmt.Errorf("upserting health metric: %w", err)
	}
	return &out, nil
}

// QueryHealthMetrics retrieves daily check-ins in a date range, oldest first.
func (db *DB) QueryHealthMetrics(ctx context.Context, start, end time.Time, userID int) ([]models.HealthMetricRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+healthMetricColumns+`
		 FROM health_metrics
		 WHERE date >= $1::date AND date < $2::date AND user_id = $3
		 ORDER BY date ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying health metrics: %w", err)
	}
	defer rows.Close()

	var result []models.HealthMetricRow
	for rows.Next() {
		var r models.HealthMetricRow
		if err := rows.Scan(healthMetricDest(&r)...); err != nil {
			return nil, fmt.Errorf("scanning health metric: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetLatestHealthMetric returns the most recent check-in, or ErrNotFound if the
// user has none.
func (db *DB) GetLatestHealthMetric(ctx context.Context, userID int) (*models.HealthMetricRow, error) {
	var r models.HealthMetricRow
	err := db.Pool.QueryRow(ctx,
		`SELECT `+healthMetricColumns+`
		 FROM health_metrics
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT 1`,
		userID,
	).Scan(healthMetricDest(&r)...)
	if err != nil {
		return nil, notFound(err, "latest health metric")
	}
	return &r, nil
}

func healthMetricDest(r *models.HealthMetricRow) []any {
	return []any{&r.ID, &r.UserID, &r.Date, &r.BodyWeight, &r.HRVScore, &r.RestingHeartRate,
		&r.SleepHours, &r.SleepQuality, &r.SorenessLevel, &r.StressLevel, &r.RecoveryScore, &r.Notes}
}
