package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
)

// InsertMobilityAssessment stores one assessment with its recommended drills.
func (db *DB) InsertMobilityAssessment(ctx context.Context, row models.MobilityAssessmentRow) error {
	drills := row.RecommendedDrills
	if drills == nil {
		drills = []string{}
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO mobility_assessments (id, user_id, body_part, mobility_score, pain_level,
		 range_of_motion_degrees, recommended_drills, notes, assessment_date)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		row.ID, row.UserID, row.BodyPart, row.MobilityScore, row.PainLevel,
		row.RangeOfMotionDegrees, drills, row.Notes, row.AssessmentDate)
	if err != nil {
		return fmt.Errorf("inserting mobility assessment: %w", err)
	}
	return nil
}

// QueryMobilityAssessments retrieves assessments in a time range, newest first.
// bodyPart filters case-insensitively when non-empty.
func (db *DB) QueryMobilityAssessments(ctx context.Context, start, end time.Time, userID int, bodyPart string) ([]models.MobilityAssessmentRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, body_part, mobility_score, pain_level, range_of_motion_degrees,
		 recommended_drills, notes, assessment_date
		 FROM mobility_assessments
		 WHERE assessment_date >= $1 AND assessment_date < $2 AND user_id = $3
		   AND ($4 = '' OR LOWER(body_part) = LOWER($4))
		 ORDER BY assessment_date DESC`,
		start, end, userID, bodyPart)
	if err != nil {
		return nil, fmt.Errorf("querying mobility assessments: %w", err)
	}
	defer rows.Close()

	var result []models.MobilityAssessmentRow
	for rows.Next() {
		var r models.MobilityAssessmentRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.BodyPart, &r.MobilityScore, &r.PainLevel,
			&r.RangeOfMotionDegrees, &r.RecommendedDrills, &r.Notes, &r.AssessmentDate); err != nil {
			return nil, fmt.Errorf("scanning mobility assessment: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
