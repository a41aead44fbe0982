package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row of the workouts table.
type WorkoutRow struct {
	ID              uuid.UUID       `json:"id"`
	UserID          int             `json:"user_id"`
	Name            string          `json:"name"`
	WorkoutType     string          `json:"workout_type,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	CaloriesBurned  *int            `json:"calories_burned,omitempty"`
	AvgHeartRate    *int            `json:"avg_heart_rate,omitempty"`
	IntensityLevel  *int            `json:"intensity_level,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	AIFeedback      json.RawMessage `json:"ai_feedback,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// WorkoutSetRow is a row of the workout_exercises table: one set of one exercise.
// Velocity-derived columns are empty when the set was logged without a reading.
type WorkoutSetRow struct {
	ID                     uuid.UUID `json:"id"`
	WorkoutID              uuid.UUID `json:"workout_id"`
	UserID                 int       `json:"user_id"`
	ExerciseName           string    `json:"exercise_name"`
	SetNumber              int       `json:"set_number"`
	Reps                   *int      `json:"reps,omitempty"`
	WeightKg               *float64  `json:"weight_kg,omitempty"`
	RPE                    *float64  `json:"rpe,omitempty"`
	Velocity               *float64  `json:"velocity,omitempty"`
	PeakVelocity           *float64  `json:"peak_velocity,omitempty"`
	VelocityZone           string    `json:"velocity_zone,omitempty"`
	TrainingGoal           string    `json:"training_goal,omitempty"`
	RecommendationCategory string    `json:"recommendation_category,omitempty"`
	Recommendation         string    `json:"recommendation,omitempty"`
	Tempo                  string    `json:"tempo,omitempty"`
	RestSeconds            *int      `json:"rest_seconds,omitempty"`
	FormScore              *float64  `json:"form_score,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// NutritionLogRow is a row of the nutrition_logs table.
type NutritionLogRow struct {
	ID               uuid.UUID  `json:"id"`
	UserID           int        `json:"user_id"`
	MealType         string     `json:"meal_type"`
	MealTime         time.Time  `json:"meal_time"`
	Calories         *int       `json:"calories,omitempty"`
	ProteinGrams     *float64   `json:"protein_grams,omitempty"`
	CarbsGrams       *float64   `json:"carbs_grams,omitempty"`
	FatsGrams        *float64   `json:"fats_grams,omitempty"`
	HydrationMl      *int       `json:"hydration_ml,omitempty"`
	WorkoutID        *uuid.UUID `json:"workout_id,omitempty"`
	AIRecommendation string     `json:"ai_recommendation,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// MobilityAssessmentRow is a row of the mobility_assessments table.
type MobilityAssessmentRow struct {
	ID                   uuid.UUID `json:"id"`
	UserID               int       `json:"user_id"`
	BodyPart             string    `json:"body_part"`
	MobilityScore        int       `json:"mobility_score"`
	PainLevel            int       `json:"pain_level"`
	RangeOfMotionDegrees *float64  `json:"range_of_motion_degrees,omitempty"`
	RecommendedDrills    []string  `json:"recommended_drills"`
	Notes                string    `json:"notes,omitempty"`
	AssessmentDate       time.Time `json:"assessment_date"`
}

// ChallengeRow is a row of the challenges table.
type ChallengeRow struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"challenge_name"`
	Description     string     `json:"description,omitempty"`
	ChallengeType   string     `json:"challenge_type,omitempty"`
	TargetMetric    string     `json:"target_metric,omitempty"`
	TargetValue     *float64   `json:"target_value,omitempty"`
	DifficultyLevel string     `json:"difficulty_level,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	AIGenerated     bool       `json:"ai_generated"`
	Participants    int        `json:"participants"`
}

// ChallengeParticipantRow is a row of the challenge_participants table.
type ChallengeParticipantRow struct {
	ID              uuid.UUID `json:"id"`
	ChallengeID     uuid.UUID `json:"challenge_id"`
	UserID          int       `json:"user_id"`
	CurrentProgress float64   `json:"current_progress"`
	Rank            *int      `json:"rank,omitempty"`
	Completed       bool      `json:"completed"`
	JoinedAt        time.Time `json:"joined_at"`
}

// PersonalRecordRow is a row of the personal_records table.
type PersonalRecordRow struct {
	ID           uuid.UUID  `json:"id"`
	UserID       int        `json:"user_id"`
	ExerciseName string     `json:"exercise_name"`
	RecordType   string     `json:"record_type"`
	Value        float64    `json:"value"`
	Unit         string     `json:"unit"`
	WorkoutID    *uuid.UUID `json:"workout_id,omitempty"`
	AchievedAt   time.Time  `json:"achieved_at"`
}

// Personal record types.
const (
	RecordMaxWeight    = "max_weight"
	RecordPeakVelocity = "peak_velocity"
)

// HealthMetricRow is a daily recovery check-in.
type HealthMetricRow struct {
	ID               uuid.UUID `json:"id"`
	UserID           int       `json:"user_id"`
	Date             time.Time `json:"date"`
	BodyWeight       *float64  `json:"body_weight,omitempty"`
	HRVScore         *float64  `json:"hrv_score,omitempty"`
	RestingHeartRate *int      `json:"resting_heart_rate,omitempty"`
	SleepHours       *float64  `json:"sleep_hours,omitempty"`
	SleepQuality     *int      `json:"sleep_quality,omitempty"`
	SorenessLevel    *int      `json:"soreness_level,omitempty"`
	StressLevel      *int      `json:"stress_level,omitempty"`
	RecoveryScore    *int      `json:"recovery_score,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}
