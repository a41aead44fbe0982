package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/coach"
	"github.com/claude/vbtcoach/internal/models"
	"github.com/google/uuid"
)

// nutritionFallback is returned when the coach has no recommendation for a meal.
const nutritionFallback = "Nutrition tracked successfully"

func (s *Server) handleQueryNutrition(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "nutrition logs")
		return
	}
	logs, err := s.db.QueryNutritionLogs(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "nutrition logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleDailyNutrition totals one day's meals. The date defaults to today.
func (s *Server) handleDailyNutrition(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(time.DateOnly, d)
		if err != nil {
			s.writeError(w, invalid("invalid date %q", d), "nutrition")
			return
		}
		day = parsed
	}
	totals, err := s.db.GetDailyNutrition(r.Context(), day, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "nutrition")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

type nutritionRequest struct {
	MealType     string     `json:"meal_type"`
	MealTime     *time.Time `json:"meal_time"`
	Calories     *int       `json:"calories"`
	ProteinGrams *float64   `json:"protein_grams"`
	CarbsGrams   *float64   `json:"carbs_grams"`
	FatsGrams    *float64   `json:"fats_grams"`
	HydrationMl  *int       `json:"hydration_ml"`
	WorkoutID    *uuid.UUID `json:"workout_id"`
}

type nutritionResponse struct {
	Log            models.NutritionLogRow `json:"log"`
	Recommendation string                 `json:"recommendation"`
}

// handleLogNutrition stores a meal with the coach's advice on it. A coach
// failure still logs the meal.
func (s *Server) handleLogNutrition(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req nutritionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "nutrition log")
		return
	}
	mealType := strings.ToLower(strings.TrimSpace(req.MealType))
	if !models.ValidMealType(mealType) {
		s.writeError(w, invalid("meal_type must be one of %s", strings.Join(models.MealTypes, ", ")), "nutrition log")
		return
	}
	if negInt(req.Calories) || negFloat(req.ProteinGrams) || negFloat(req.CarbsGrams) ||
		negFloat(req.FatsGrams) || negInt(req.HydrationMl) {
		s.writeError(w, invalid("nutrition values must not be negative"), "nutrition log")
		return
	}
	if req.WorkoutID != nil {
		if _, err := s.db.GetWorkout(r.Context(), *req.WorkoutID, uid); err != nil {
			s.writeError(w, err, "workout")
			return
		}
	}

	now := time.Now()
	row := models.NutritionLogRow{
		ID:           uuid.New(),
		UserID:       uid,
		MealType:     mealType,
		MealTime:     now,
		Calories:     req.Calories,
		ProteinGrams: req.ProteinGrams,
		CarbsGrams:   req.CarbsGrams,
		FatsGrams:    req.FatsGrams,
		HydrationMl:  req.HydrationMl,
		WorkoutID:    req.WorkoutID,
		CreatedAt:    now,
	}
	if req.MealTime != nil {
		row.MealTime = *req.MealTime
	}

	advice, err := s.coach.NutritionAdvice(r.Context(), coach.NutritionRequest{
		UserID:   uid,
		MealType: mealType,
		Meal: coach.Meal{
			Calories: req.Calories,
			Protein:  req.ProteinGrams,
			Carbs:    req.CarbsGrams,
			Fats:     req.FatsGrams,
		},
	})
	if err != nil {
		s.log.Warn("nutrition advice unavailable", "error", err)
	}
	row.AIRecommendation = advice

	if err := s.db.InsertNutritionLog(r.Context(), row); err != nil {
		s.writeError(w, err, "nutrition log")
		return
	}

	resp := nutritionResponse{Log: row, Recommendation: advice}
	if resp.Recommendation == "" {
		resp.Recommendation = nutritionFallback
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleQueryMobility(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "mobility assessments")
		return
	}
	bodyPart := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("body_part")))
	rows, err := s.db.QueryMobilityAssessments(r.Context(), start, end, userIDFromContext(r), bodyPart)
	if err != nil {
		s.writeError(w, err, "mobility assessments")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type mobilityRequest struct {
	BodyPart             string   `json:"body_part"`
	MobilityScore        int      `json:"mobility_score"`
	PainLevel            int      `json:"pain_level"`
	RangeOfMotionDegrees *float64 `json:"range_of_motion_degrees"`
	Notes                string   `json:"notes"`
}

// handleAssessMobility asks the coach for drills, then stores the assessment
// with them. A coach failure stores the assessment with no drills.
func (s *Server) handleAssessMobility(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req mobilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "mobility assessment")
		return
	}
	bodyPart := strings.ToLower(strings.TrimSpace(req.BodyPart))
	switch {
	case bodyPart == "":
		s.writeError(w, invalid("body_part is required"), "mobility assessment")
		return
	case req.MobilityScore < 1 || req.MobilityScore > 10:
		s.writeError(w, invalid("mobility_score must be between 1 and 10"), "mobility assessment")
		return
	case req.PainLevel < 0 || req.PainLevel > 10:
		s.writeError(w, invalid("pain_level must be between 0 and 10"), "mobility assessment")
		return
	}

	drills, err := s.coach.MobilityDrills(r.Context(), coach.MobilityRequest{
		UserID:        uid,
		BodyPart:      bodyPart,
		MobilityScore: req.MobilityScore,
		PainLevel:     req.PainLevel,
	})
	if err != nil {
		s.log.Warn("mobility drills unavailable", "body_part", bodyPart, "error", err)
	}
	if drills == nil {
		drills = []string{}
	}

	row := models.MobilityAssessmentRow{
		ID:                   uuid.New(),
		UserID:               uid,
		BodyPart:             bodyPart,
		MobilityScore:        req.MobilityScore,
		PainLevel:            req.PainLevel,
		RangeOfMotionDegrees: req.RangeOfMotionDegrees,
		RecommendedDrills:    drills,
		Notes:                req.Notes,
		AssessmentDate:       time.Now(),
	}
	if err := s.db.InsertMobilityAssessment(r.Context(), row); err != nil {
		s.writeError(w, err, "mobility assessment")
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleQueryHealthMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "health metrics")
		return
	}
	rows, err := s.db.QueryHealthMetrics(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "health metrics")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLatestHealthMetric(w http.ResponseWriter, r *http.Request) {
	row, err := s.db.GetLatestHealthMetric(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "health metric")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

type healthMetricRequest struct {
	Date             string   `json:"date"`
	BodyWeight       *float64 `json:"body_weight"`
	HRVScore         *float64 `json:"hrv_score"`
	RestingHeartRate *int     `json:"resting_heart_rate"`
	SleepHours       *float64 `json:"sleep_hours"`
	SleepQuality     *int     `json:"sleep_quality"`
	SorenessLevel    *int     `json:"soreness_level"`
	StressLevel      *int     `json:"stress_level"`
	RecoveryScore    *int     `json:"recovery_score"`
	Notes            string   `json:"notes"`
}

// validate checks the check-in's ranges: 1-10 ratings, 0-100 recovery, 0-24 hours of sleep.
func (req healthMetricRequest) validate() error {
	ratings := []struct {
		name string
		v    *int
	}{
		{"sleep_quality", req.SleepQuality},
		{"soreness_level", req.SorenessLevel},
		{"stress_level", req.StressLevel},
	}
	for _, r := range ratings {
		if r.v != nil && (*r.v < 1 || *r.v > 10) {
			return invalid("%s must be between 1 and 10", r.name)
		}
	}
	if req.RecoveryScore != nil && (*req.RecoveryScore < 0 || *req.RecoveryScore > 100) {
		return invalid("recovery_score must be between 0 and 100")
	}
	if req.SleepHours != nil && (*req.SleepHours < 0 || *req.SleepHours > 24) {
		return invalid("sleep_hours must be between 0 and 24")
	}
	if negFloat(req.BodyWeight) || negFloat(req.HRVScore) || negInt(req.RestingHeartRate) {
		return invalid("health values must not be negative")
	}
	return nil
}

// handleUpsertHealthMetric stores the daily check-in, replacing any earlier one for the same date.
func (s *Server) handleUpsertHealthMetric(w http.ResponseWriter, r *http.Request) {
	var req healthMetricRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "health metric")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, err, "health metric")
		return
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			s.writeError(w, invalid("invalid date %q", req.Date), "health metric")
			return
		}
		day = d
	}

	row, err := s.db.UpsertHealthMetric(r.Context(), models.HealthMetricRow{
		ID:               uuid.New(),
		UserID:           userIDFromContext(r),
		Date:             day,
		BodyWeight:       req.BodyWeight,
		HRVScore:         req.HRVScore,
		RestingHeartRate: req.RestingHeartRate,
		SleepHours:       req.SleepHours,
		SleepQuality:     req.SleepQuality,
		SorenessLevel:    req.SorenessLevel,
		StressLevel:      req.StressLevel,
		RecoveryScore:    req.RecoveryScore,
		Notes:            req.Notes,
	})
	if err != nil {
		s.writeError(w, err, "health metric")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func negInt(v *int) bool { return v != nil && *v < 0 }
func negFloat(v *float64) bool { return v != nil && *v < 0 }
