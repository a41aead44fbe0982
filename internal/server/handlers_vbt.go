package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/google/uuid"
)

// profileHistory is how far back a profile looks when no points are posted.
const profileHistory = 90 * 24 * time.Hour

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vbt.ZoneTable())
}

type assessRequest struct {
	Velocity *float64 `json:"velocity"`
	Goal     string   `json:"goal"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "assessment")
		return
	}
	if req.Velocity == nil {
		s.writeError(w, invalid("velocity is required"), "assessment")
		return
	}
	goal, err := vbt.ParseGoal(req.Goal)
	if err != nil {
		s.writeError(w, err, "assessment")
		return
	}
	a, err := vbt.Assess(*req.Velocity, goal)
	if err != nil {
		s.writeError(w, err, "assessment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type measureRequest struct {
	Goal      string     `json:"goal"`
	Exercise  string     `json:"exercise"`
	WeightKg  float64    `json:"weight_kg"`
	Reps      *int       `json:"reps"`
	WorkoutID *uuid.UUID `json:"workout_id"`
	SetNumber int        `json:"set_number"`
}

type measureResponse struct {
	vbt.Assessment
	Exercise string                     `json:"exercise"`
	WeightKg float64                    `json:"weight_kg"`
	Set      *models.WorkoutSetRow      `json:"set,omitempty"`
	Records  []models.PersonalRecordRow `json:"records,omitempty"`
}

// handleMeasure takes one reading from the velocity source and assesses it.
// With a workout_id the reading is also stored as a set of that workout.
func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req measureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "measurement")
		return
	}
	if req.WeightKg <= 0 {
		s.writeError(w, invalid("weight_kg must be greater than 0"), "measurement")
		return
	}
	if req.Goal == "" {
		req.Goal = string(vbt.GoalStrength)
	}
	goal, err := vbt.ParseGoal(req.Goal)
	if err != nil {
		s.writeError(w, err, "measurement")
		return
	}
	exercise := exerciseName(req.Exercise)
	if exercise == "" {
		exercise = models.ExerciseSquat
	}

	var detailSets int
	if req.WorkoutID != nil {
		detail, err := s.db.GetWorkout(r.Context(), *req.WorkoutID, uid)
		if err != nil {
			s.writeError(w, err, "workout")
			return
		}
		detailSets = len(detail.Sets)
	}

	a, err := vbt.Measure(r.Context(), s.source, goal)
	if err != nil {
		s.writeError(w, err, "measurement")
		return
	}
	resp := measureResponse{Assessment: a, Exercise: exercise, WeightKg: req.WeightKg}

	if req.WorkoutID != nil {
		setNumber := req.SetNumber
		if setNumber <= 0 {
			setNumber = detailSets + 1
		}
		row := assessedSet(*req.WorkoutID, uid, exercise, setNumber, a)
		weight := req.WeightKg
		row.WeightKg = &weight
		row.Reps = req.Reps

		if _, err := s.db.InsertWorkoutSets(r.Context(), []models.WorkoutSetRow{row}); err != nil {
			s.writeError(w, err, "set")
			return
		}
		records, err := s.db.RecordPersonalBests(r.Context(), uid, []models.WorkoutSetRow{row})
		if err != nil {
			s.log.Warn("recording personal bests failed", "user_id", uid, "workout_id", row.WorkoutID, "error", err)
		}
		resp.Set = &row
		resp.Records = records
	}
	writeJSON(w, http.StatusOK, resp)
}

// exerciseName returns the canonical lift name, or the lowercased input for unknown lifts.
func exerciseName(raw string) string {
	if canonical, ok := models.NormalizeExercise(raw); ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// assessedSet builds a set row carrying an assessment's zone and recommendation.
func assessedSet(workoutID uuid.UUID, uid int, exercise string, setNumber int, a vbt.Assessment) models.WorkoutSetRow {
	v := a.Velocity
	return models.WorkoutSetRow{
		ID:                     uuid.New(),
		WorkoutID:              workoutID,
		UserID:                 uid,
		ExerciseName:           exercise,
		SetNumber:              setNumber,
		Velocity:               &v,
		VelocityZone:           a.Zone.String(),
		TrainingGoal:           string(a.Goal),
		RecommendationCategory: string(a.Recommendation.Category),
		Recommendation:         a.Recommendation.Message,
		CreatedAt:              time.Now(),
	}
}

type setSummaryRequest struct {
	Velocities []float64 `json:"velocities"`
	Goal       string    `json:"goal"`
}

type setSummaryResponse struct {
	vbt.SetSummary
	Assessment *vbt.Assessment `json:"assessment,omitempty"`
}

func (s *Server) handleSetSummary(w http.ResponseWriter, r *http.Request) {
	var req setSummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "set summary")
		return
	}
	summary, err := vbt.SummarizeSet(req.Velocities)
	if err != nil {
		s.writeError(w, err, "set summary")
		return
	}
	resp := setSummaryResponse{SetSummary: summary}
	if req.Goal != "" {
		goal, err := vbt.ParseGoal(req.Goal)
		if err != nil {
			s.writeError(w, err, "set summary")
			return
		}
		a, err := vbt.Assess(summary.MeanVelocity, goal)
		if err != nil {
			s.writeError(w, err, "set summary")
			return
		}
		resp.Assessment = &a
	}
	writeJSON(w, http.StatusOK, resp)
}

type profileRequest struct {
	Exercise string             `json:"exercise"`
	Points   []vbt.LoadVelocity `json:"points"`
}

// handleProfile fits a load-velocity profile from posted points, or from the
// user's logged sets of the last 90 days when none are posted.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err, "profile")
		return
	}
	exercise := exerciseName(req.Exercise)
	if exercise == "" {
		s.writeError(w, invalid("exercise is required"), "profile")
		return
	}

	points := req.Points
	if len(points) == 0 {
		end := time.Now()
		var err error
		points, err = s.db.LoadVelocityHistory(r.Context(), end.Add(-profileHistory), end, userIDFromContext(r), exercise)
		if err != nil {
			s.writeError(w, err, "profile")
			return
		}
	}

	p, err := vbt.FitProfile(exercise, points)
	if err != nil {
		s.writeError(w, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleVelocitySummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		s.writeError(w, err, "velocity summary")
		return
	}
	exercise := exerciseName(r.URL.Query().Get("exercise"))
	summary, err := s.db.GetVelocitySummary(r.Context(), start, end, userIDFromContext(r), exercise)
	if err != nil {
		s.writeError(w, err, "velocity summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
