package sensor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/vbtcoach/internal/ingest"
	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/google/uuid"
)

// sessionNamespace seeds the name-based IDs of imported workouts and sets.
var sessionNamespace = uuid.MustParse("6f1c2b8e-4a57-4d0e-9a8c-2f3b7e5d9c41")

// Store is the storage the provider writes to.
type Store interface {
	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error)
	RecordPersonalBests(ctx context.Context, userID int, sets []models.WorkoutSetRow) ([]models.PersonalRecordRow, error)
}

// Provider processes sensor CSV exports.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new sensor ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a sensor export and stores one workout per session date with one
// set row per exercise set. IDs are derived from user, date, exercise and set
// number, so importing the same export twice inserts nothing the second time.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, rows, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing sensor export: %w: %w", err, vbt.ErrInvalidInput)
	}

	result := &ingest.Result{RowsReceived: rows, SessionsReceived: len(sessions)}
	var allSets []models.WorkoutSetRow

	for _, s := range sessions {
		workout, sets, err := Convert(s, userID)
		if err != nil {
			return nil, err
		}
		inserted, err := p.db.InsertWorkout(ctx, workout)
		if err != nil {
			return nil, fmt.Errorf("inserting session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		if inserted {
			result.WorkoutsInserted++
		}
		allSets = append(allSets, sets...)
	}

	result.SetsReceived = len(allSets)
	if len(allSets) > 0 {
		inserted, err := p.db.InsertWorkoutSets(ctx, allSets)
		if err != nil {
			return nil, fmt.Errorf("inserting sets: %w", err)
		}
		result.SetsInserted = inserted
		result.SetsSkipped = int64(len(allSets)) - inserted

		records, err := p.db.RecordPersonalBests(ctx, userID, allSets)
		if err != nil {
			p.log.Warn("recording personal bests failed", "user_id", userID, "error", err)
		}
		result.RecordsSet = len(records)
	}

	p.log.Info("sensor export ingested",
		"user_id", userID,
		"rows", result.RowsReceived,
		"sessions", result.SessionsReceived,
		"sets_inserted", result.SetsInserted,
		"sets_skipped", result.SetsSkipped,
		"records", result.RecordsSet,
	)
	return result, nil
}

// SessionID returns the workout ID of the user's sensor session on date.
func SessionID(userID int, date string) uuid.UUID {
	return uuid.NewSHA1(sessionNamespace, []byte(fmt.Sprintf("%d/%s", userID, date)))
}

// Convert maps a parsed session to its workout row and set rows. Each set stores
// the mean velocity of its reps together with the zone and recommendation for it.
func Convert(s models.SensorSession, userID int) (models.WorkoutRow, []models.WorkoutSetRow, error) {
	day := s.Date.Format("2006-01-02")
	workoutID := SessionID(userID, day)
	workout := models.WorkoutRow{
		ID:          workoutID,
		UserID:      userID,
		Name:        "VBT session " + day,
		WorkoutType: "vbt",
		StartedAt:   s.Date,
		Notes:       "Imported from sensor export",
	}

	sets := make([]models.WorkoutSetRow, 0, len(s.Sets))
	for _, set := range s.Sets {
		summary, err := vbt.SummarizeSet(set.Velocities())
		if err != nil {
			return workout, nil, fmt.Errorf("%s %s set %d: %w", day, set.Exercise, set.SetNumber, err)
		}
		assessment, err := vbt.Assess(summary.MeanVelocity, vbt.Goal(set.Goal))
		if err != nil {
			return workout, nil, fmt.Errorf("%s %s set %d: %w", day, set.Exercise, set.SetNumber, err)
		}

		reps := summary.Reps
		weight := set.WeightKg
		mean := summary.MeanVelocity
		peak := summary.PeakVelocity
		sets = append(sets, models.WorkoutSetRow{
			ID:                     uuid.NewSHA1(workoutID, []byte(fmt.Sprintf("%s/%d", set.Exercise, set.SetNumber))),
			WorkoutID:              workoutID,
			UserID:                 userID,
			ExerciseName:           set.Exercise,
			SetNumber:              set.SetNumber,
			Reps:                   &reps,
			WeightKg:               &weight,
			Velocity:               &mean,
			PeakVelocity:           &peak,
			VelocityZone:           assessment.Zone.String(),
			TrainingGoal:           set.Goal,
			RecommendationCategory: string(assessment.Recommendation.Category),
			Recommendation:         assessment.Recommendation.Message,
			CreatedAt:              s.Date,
		})
	}
	return workout, sets, nil
}
