package mcp

import (
	"context"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int, workoutType string) ([]models.WorkoutRow, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exercise string) ([]models.WorkoutSetRow, error)
	GetVelocitySummary(ctx context.Context, start, end time.Time, userID int, exercise string) (*storage.VelocitySummary, error)
	QueryPersonalRecords(ctx context.Context, userID int, exercise string) ([]models.PersonalRecordRow, error)
	QueryNutritionLogs(ctx context.Context, start, end time.Time, userID int) ([]models.NutritionLogRow, error)
	GetDailyNutrition(ctx context.Context, day time.Time, userID int) (*storage.DailyNutrition, error)
	QueryMobilityAssessments(ctx context.Context, start, end time.Time, userID int, bodyPart string) ([]models.MobilityAssessmentRow, error)
	QueryHealthMetrics(ctx context.Context, start, end time.Time, userID int) ([]models.HealthMetricRow, error)
	GetLatestHealthMetric(ctx context.Context, userID int) (*models.HealthMetricRow, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
