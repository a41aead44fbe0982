package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/google/uuid"
)

// ListChallenges returns challenges running at activeAt (open-ended dates count
// as running), with their participant counts.
func (db *DB) ListChallenges(ctx context.Context, activeAt time.Time) ([]models.ChallengeRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.challenge_name, c.description, c.challenge_type, c.target_metric,
		        c.target_value, c.difficulty_level, c.start_date, c.end_date, c.ai_generated,
		        (SELECT COUNT(*)::int FROM challenge_participants p WHERE p.challenge_id = c.id)
		 FROM challenges c
		 WHERE (c.start_date IS NULL OR c.start_date <= $1)
		   AND (c.end_date IS NULL OR c.end_date >= $1)
		 ORDER BY c.end_date ASC NULLS LAST, c.challenge_name ASC`,
		activeAt)
	if err != nil {
		return nil, fmt.Errorf("querying challenges: %w", err)
	}
	defer rows.Close()

	var result []models.ChallengeRow
	for rows.Next() {
		var c models.ChallengeRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ChallengeType, &c.TargetMetric,
			&c.TargetValue, &c.DifficultyLevel, &c.StartDate, &c.EndDate, &c.AIGenerated,
			&c.Participants); err != nil {
			return nil, fmt.Errorf("scanning challenge: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// JoinChallenge adds the user to a challenge. Joining twice returns the existing
// participation.
func (db *DB) JoinChallenge(ctx context.Context, challengeID uuid.UUID, userID int) (*models.ChallengeParticipantRow, error) {
	var exists bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenges WHERE id = $1)`, challengeID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking challenge %s: %w", challengeID, err)
	}
	if !exists {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
	}

	var p models.ChallengeParticipantRow
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO challenge_participants (id, challenge_id, user_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (challenge_id, user_id) DO UPDATE SET challenge_id = EXCLUDED.challenge_id
		 RETURNING id, challenge_id, user_id, current_progress, rank, completed, joined_at`,
		uuid.New(), challengeID, userID,
	).Scan(&p.ID, &p.ChallengeID, &p.UserID, &p.CurrentProgress, &p.Rank, &p.Completed, &p.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("joining challenge %s: %w", challengeID, err)
	}
	return &p, nil
}

// JoinedChallenge is a participation together with its challenge.
type JoinedChallenge struct {
	models.ChallengeParticipantRow
	Challenge models.ChallengeRow `json:"challenge"`
}

// QueryJoinedChallenges returns the user's participations, most recently joined first.
func (db *DB) QueryJoinedChallenges(ctx context.Context, userID int) ([]JoinedChallenge, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT p.id, p.challenge_id, p.user_id, p.current_progress, p.rank, p.completed, p.joined_at,
		        c.id, c.challenge_name, c.description, c.challenge_type, c.target_metric,
		        c.target_value, c.difficulty_level, c.start_date, c.end_date, c.ai_generated,
		        (SELECT COUNT(*)::int FROM challenge_participants x WHERE x.challenge_id = c.id)
		 FROM challenge_participants p
		 JOIN challenges c ON c.id = p.challenge_id
		 WHERE p.user_id = $1
		 ORDER BY p.joined_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying joined challenges: %w", err)
	}
	defer rows.Close()

	var result []JoinedChallenge
	for rows.Next() {
		var j JoinedChallenge
		c := &j.Challenge
		if err := rows.Scan(&j.ID, &j.ChallengeID, &j.UserID, &j.CurrentProgress, &j.Rank, &j.Completed,
			&j.JoinedAt, &c.ID, &c.Name, &c.Description, &c.ChallengeType, &c.TargetMetric,
			&c.TargetValue, &c.DifficultyLevel, &c.StartDate, &c.EndDate, &c.AIGenerated,
			&c.Participants); err != nil {
			return nil, fmt.Errorf("scanning joined challenge: %w", err)
		}
		result = append(result, j)
	}
	return result, rows.Err()
}
