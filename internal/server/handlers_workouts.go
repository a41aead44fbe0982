package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/coach"
	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/google/uuid"
)

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "workouts")
		return
	}

	typeFilter := r.URL.Query().Get("type")
	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, userIDFromContext(r), typeFilter)
	if err != nil {
		s.writeError(w, err, "workouts")
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

type createWorkoutRequest struct {
	Name           string     `json:"name"`
	WorkoutType    string     `json:"workout_type"`
	StartedAt      *time.Time `json:"started_at"`
	IntensityLevel *int       `json:"intensity_level"`
	Notes          string     `json:"notes"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "workout")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.writeError(w, invalid("name is required"), "workout")
		return
	}
	if req.IntensityLevel != nil && (*req.IntensityLevel < 1 || *req.IntensityLevel > 10) {
		s.writeError(w, invalid("intensity_level must be between 1 and 10"), "workout")
		return
	}

	now := time.Now()
	row := models.WorkoutRow{
		ID:             uuid.New(),
		UserID:         userIDFromContext(r),
		Name:           name,
		WorkoutType:    strings.ToLower(strings.TrimSpace(req.WorkoutType)),
		StartedAt:      now,
		IntensityLevel: req.IntensityLevel,
		Notes:          req.Notes,
		CreatedAt:      now,
	}
	if req.StartedAt != nil {
		row.StartedAt = *req.StartedAt
	}

	if _, err := s.db.InsertWorkout(r.Context(), row); err != nil {
		s.writeError(w, err, "workout")
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type setInput struct {
	ExerciseName string   `json:"exercise_name"`
	SetNumber    int      `json:"set_number"`
	Reps         *int     `json:"reps"`
	WeightKg     *float64 `json:"weight_kg"`
	RPE          *float64 `json:"rpe"`
	Velocity     *float64 `json:"velocity"`
	Goal         string   `json:"goal"`
	Tempo        string   `json:"tempo"`
	RestSeconds  *int     `json:"rest_seconds"`
	Notes        string   `json:"notes"`
}

type logSetsRequest struct {
	Sets []setInput `json:"sets"`
}

type logSetsResponse struct {
	SetsInserted int64                      `json:"sets_inserted"`
	Sets         []models.WorkoutSetRow     `json:"sets"`
	Records      []models.PersonalRecordRow `json:"records"`
}

// handleLogSets stores sets for a workout. Sets with a velocity get their zone
// and recommendation derived from it; sets without one are stored as logged.
func (s *Server) handleLogSets(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	workoutID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}

	var req logSetsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "sets")
		return
	}
	if len(req.Sets) == 0 {
		s.writeError(w, invalid("no sets"), "sets")
		return
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, uid)
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}

	rows := make([]models.WorkoutSetRow, 0, len(req.Sets))
	next := len(detail.Sets) + 1
	for i, in := range req.Sets {
		row, err := buildSet(workoutID, uid, in)
		if err != nil {
			s.writeError(w, fmt.Errorf("set %d: %w", i+1, err), "sets")
			return
		}
		if row.SetNumber <= 0 {
			row.SetNumber = next
		}
		next = row.SetNumber + 1
		rows = append(rows, row)
	}

	inserted, err := s.db.InsertWorkoutSets(r.Context(), rows)
	if err != nil {
		s.writeError(w, err, "sets")
		return
	}
	// The sets are already stored, so a records failure is logged rather than returned.
	records, err := s.db.RecordPersonalBests(r.Context(), uid, rows)
	if err != nil {
		s.log.Warn("recording personal bests failed", "user_id", uid, "workout_id", workoutID, "error", err)
		records = []models.PersonalRecordRow{}
	}
	writeJSON(w, http.StatusCreated, logSetsResponse{SetsInserted: inserted, Sets: rows, Records: records})
}

// buildSet validates one logged set and derives its velocity assessment.
func buildSet(workoutID uuid.UUID, uid int, in setInput) (models.WorkoutSetRow, error) {
	exercise := exerciseName(in.ExerciseName)
	if exercise == "" {
		return models.WorkoutSetRow{}, invalid("exercise_name is required")
	}
	if in.Reps != nil && *in.Reps < 0 {
		return models.WorkoutSetRow{}, invalid("reps must not be negative")
	}
	if in.WeightKg != nil && *in.WeightKg < 0 {
		return models.WorkoutSetRow{}, invalid("weight_kg must not be negative")
	}
	if in.RPE != nil && (*in.RPE < 1 || *in.RPE > 10) {
		return models.WorkoutSetRow{}, invalid("rpe must be between 1 and 10")
	}

	row := models.WorkoutSetRow{
		ID:           uuid.New(),
		WorkoutID:    workoutID,
		UserID:       uid,
		ExerciseName: exercise,
		SetNumber:    in.SetNumber,
		CreatedAt:    time.Now(),
	}
	if in.Velocity != nil {
		goal := vbt.GoalStrength
		if in.Goal != "" {
			g, err := vbt.ParseGoal(in.Goal)
			if err != nil {
				return models.WorkoutSetRow{}, err
			}
			goal = g
		}
		a, err := vbt.Assess(*in.Velocity, goal)
		if err != nil {
			return models.WorkoutSetRow{}, err
		}
		row = assessedSet(workoutID, uid, exercise, in.SetNumber, a)
	}
	row.Reps = in.Reps
	row.WeightKg = in.WeightKg
	row.RPE = in.RPE
	row.Tempo = in.Tempo
	row.RestSeconds = in.RestSeconds
	row.Notes = in.Notes
	return row, nil
}

type completeWorkoutRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

// handleCompleteWorkout marks a workout done and attaches the coach's feedback.
// The workout is completed even when feedback is unavailable.
func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	workoutID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}

	var req completeWorkoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err, "workout")
			return
		}
	}
	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, uid)
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}
	if completedAt.Before(detail.StartedAt) {
		s.writeError(w, invalid("completed_at is before started_at"), "workout")
		return
	}

	feedback, err := s.coach.WorkoutFeedback(r.Context(), feedbackRequest(uid, detail.WorkoutRow, detail.Sets, completedAt))
	if err != nil {
		s.log.Warn("workout feedback unavailable", "workout_id", workoutID, "error", err)
		feedback = nil
	}

	if err := s.db.CompleteWorkout(r.Context(), workoutID, uid, completedAt, feedback); err != nil {
		s.writeError(w, err, "workout")
		return
	}
	updated, err := s.db.GetWorkout(r.Context(), workoutID, uid)
	if err != nil {
		s.writeError(w, err, "workout")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func feedbackRequest(uid int, wo models.WorkoutRow, sets []models.WorkoutSetRow, completedAt time.Time) coach.WorkoutFeedbackRequest {
	req := coach.WorkoutFeedbackRequest{
		UserID:          uid,
		WorkoutID:       wo.ID.String(),
		Name:            wo.Name,
		DurationMinutes: int(completedAt.Sub(wo.StartedAt).Minutes()),
		Sets:            make([]coach.SetFeedback, 0, len(sets)),
	}
	for _, set := range sets {
		req.Sets = append(req.Sets, coach.SetFeedback{
			Exercise:     set.ExerciseName,
			SetNumber:    set.SetNumber,
			Reps:         set.Reps,
			WeightKg:     set.WeightKg,
			Velocity:     set.Velocity,
			VelocityZone: set.VelocityZone,
		})
	}
	return req
}

func (s *Server) handleQuerySets(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "sets")
		return
	}
	exercise := exerciseName(r.URL.Query().Get("exercise"))
	sets, err := s.db.QueryWorkoutSets(r.Context(), start, end, userIDFromContext(r), exercise)
	if err != nil {
		s.writeError(w, err, "sets")
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	exercise := exerciseName(r.URL.Query().Get("exercise"))
	records, err := s.db.QueryPersonalRecords(r.Context(), userIDFromContext(r), exercise)
	if err != nil {
		s.writeError(w, err, "personal records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}
