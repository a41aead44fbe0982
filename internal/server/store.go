package server

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/claude/vbtcoach/internal/coach"
	"github.com/claude/vbtcoach/internal/ingest"
	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/google/uuid"
)

// Store is the data layer used by the HTTP handlers.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	InsertWorkout(ctx context.Context, row models.WorkoutRow) (bool, error)
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int, workoutType string) ([]models.WorkoutRow, error)
	RecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*storage.WorkoutDetail, error)
	CompleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int, completedAt time.Time, feedback json.RawMessage) error

	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exercise string) ([]models.WorkoutSetRow, error)
	GetVelocitySummary(ctx context.Context, start, end time.Time, userID int, exercise string) (*storage.VelocitySummary, error)
	LoadVelocityHistory(ctx context.Context, start, end time.Time, userID int, exercise string) ([]vbt.LoadVelocity, error)
	RecordPersonalBests(ctx context.Context, userID int, sets []models.WorkoutSetRow) ([]models.PersonalRecordRow, error)
	QueryPersonalRecords(ctx context.Context, userID int, exercise string) ([]models.PersonalRecordRow, error)

	InsertNutritionLog(ctx context.Context, row models.NutritionLogRow) error
	QueryNutritionLogs(ctx context.Context, start, end time.Time, userID int) ([]models.NutritionLogRow, error)
	GetDailyNutrition(ctx context.Context, day time.Time, userID int) (*storage.DailyNutrition, error)

	InsertMobilityAssessment(ctx context.Context, row models.MobilityAssessmentRow) error
	QueryMobilityAssessments(ctx context.Context, start, end time.Time, userID int, bodyPart string) ([]models.MobilityAssessmentRow, error)

	ListChallenges(ctx context.Context, activeAt time.Time) ([]models.ChallengeRow, error)
	JoinChallenge(ctx context.Context, challengeID uuid.UUID, userID int) (*models.ChallengeParticipantRow, error)
	QueryJoinedChallenges(ctx context.Context, userID int) ([]storage.JoinedChallenge, error)

	UpsertHealthMetric(ctx context.Context, row models.HealthMetricRow) (*models.HealthMetricRow, error)
	QueryHealthMetrics(ctx context.Context, start, end time.Time, userID int) ([]models.HealthMetricRow, error)
	GetLatestHealthMetric(ctx context.Context, userID int) (*models.HealthMetricRow, error)

	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Coach calls the remote AI coaching functions.
type Coach interface {
	NutritionAdvice(ctx context.Context, req coach.NutritionRequest) (string, error)
	MobilityDrills(ctx context.Context, req coach.MobilityRequest) ([]string, error)
	WorkoutFeedback(ctx context.Context, req coach.WorkoutFeedbackRequest) (json.RawMessage, error)
}

var _ Coach = (*coach.Client)(nil)

// Ingester stores an uploaded sensor export for a user.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}
