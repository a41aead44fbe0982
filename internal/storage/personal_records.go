package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/google/uuid"
)

// RecordPersonalBests stores the heaviest weight and fastest velocity per exercise
// found in sets, but only where they beat the user's existing record.
// Returns the new records.
func (db *DB) RecordPersonalBests(ctx context.Context, userID int, sets []models.WorkoutSetRow) ([]models.PersonalRecordRow, error) {
	var inserted []models.PersonalRecordRow
	for _, rec := range bestsFromSets(userID, sets) {
		tag, err := db.Pool.Exec(ctx,
			`INSERT INTO personal_records (id, user_id, exercise_name, record_type, value, unit, workout_id, achieved_at)
			 SELECT $1::uuid, $2::int, $3::text, $4::text, $5::float8, $6::text, $7::uuid, $8::timestamptz
			 WHERE NOT EXISTS (
				SELECT 1 FROM personal_records
				WHERE user_id = $2 AND exercise_name = $3 AND record_type = $4 AND value >= $5
			 )`,
			rec.ID, rec.UserID, rec.ExerciseName, rec.RecordType, rec.Value, rec.Unit, rec.WorkoutID, rec.AchievedAt)
		if err != nil {
			return inserted, fmt.Errorf("inserting %s record for %s: %w", rec.RecordType, rec.ExerciseName, err)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, rec)
		}
	}
	return inserted, nil
}

// QueryPersonalRecords returns the current best per exercise and record type.
// exercise filters by exact name when non-empty.
func (db *DB) QueryPersonalRecords(ctx context.Context, userID int, exercise string) ([]models.PersonalRecordRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (exercise_name, record_type)
		        id, user_id, exercise_name, record_type, value, unit, workout_id, achieved_at
		 FROM personal_records
		 WHERE user_id = $1 AND ($2 = '' OR exercise_name = $2)
		 ORDER BY exercise_name, record_type, value DESC, achieved_at ASC`,
		userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecordRow
	for rows.Next() {
		var r models.PersonalRecordRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseName, &r.RecordType, &r.Value, &r.Unit,
			&r.WorkoutID, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// bestsFromSets picks the record candidates from a batch of sets, ordered by
// exercise then record type.
func bestsFromSets(userID int, sets []models.WorkoutSetRow) []models.PersonalRecordRow {
	type key struct{ exercise, kind string }
	best := make(map[key]models.PersonalRecordRow)

	consider := func(s models.WorkoutSetRow, kind, unit string, value float64) {
		k := key{s.ExerciseName, kind}
		if cur, ok := best[k]; ok && cur.Value >= value {
			return
		}
		achieved := s.CreatedAt
		if achieved.IsZero() {
			achieved = time.Now()
		}
		workoutID := s.WorkoutID
		best[k] = models.PersonalRecordRow{
			ID:           uuid.New(),
			UserID:       userID,
			ExerciseName: s.ExerciseName,
			RecordType:   kind,
			Value:        value,
			Unit:         unit,
			WorkoutID:    &workoutID,
			AchievedAt:   achieved,
		}
	}

	for _, s := range sets {
		if s.WeightKg != nil && *s.WeightKg > 0 {
			consider(s, models.RecordMaxWeight, "kg", *s.WeightKg)
		}
		peak := s.PeakVelocity
		if peak == nil {
			peak = s.Velocity
		}
		if peak != nil && *peak > 0 {
			consider(s, models.RecordPeakVelocity, "m/s", *peak)
		}
	}

	result := make([]models.PersonalRecordRow, 0, len(best))
	for _, r := range best {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ExerciseName != result[j].ExerciseName {
			return result[i].ExerciseName < result[j].ExerciseName
		}
		return result[i].RecordType < result[j].RecordType
	})
	return result
}
