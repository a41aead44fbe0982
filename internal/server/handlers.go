package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// dashboard is the landing page payload.
type dashboard struct {
	User           UserInfo                 `json:"user"`
	LatestCheckIn  *models.HealthMetricRow  `json:"latest_check_in"`
	RecentWorkouts []models.WorkoutRow      `json:"recent_workouts"`
	NutritionToday *storage.DailyNutrition  `json:"nutrition_today"`
	Velocity       *storage.VelocitySummary `json:"velocity"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	ctx := r.Context()
	now := time.Now()

	d := dashboard{User: userInfoFromContext(r)}

	latest, err := s.db.GetLatestHealthMetric(ctx, uid)
	switch {
	case err == nil:
		d.LatestCheckIn = latest
	case !errors.Is(err, storage.ErrNotFound):
		s.writeError(w, err, "dashboard")
		return
	}

	if d.RecentWorkouts, err = s.db.RecentWorkouts(ctx, uid, 5); err != nil {
		s.writeError(w, err, "dashboard")
		return
	}
	if d.NutritionToday, err = s.db.GetDailyNutrition(ctx, now, uid); err != nil {
		s.writeError(w, err, "dashboard")
		return
	}
	if d.Velocity, err = s.db.GetVelocitySummary(ctx, now.AddDate(0, 0, -7), now, uid, ""); err != nil {
		s.writeError(w, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// writeError maps err to a JSON error response. what names the resource for 404s.
func (s *Server) writeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, vbt.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
	case errors.Is(err, vbt.ErrExhausted):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "what", what, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// decodeJSON decodes a request body, reporting malformed input as ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %v: %w", err, vbt.ErrInvalidInput)
	}
	return nil
}

// invalid builds an ErrInvalidInput with a message.
func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, vbt.ErrInvalidInput)...)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, invalid("invalid %s", name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
		return
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		end, err = time.Parse(time.DateOnly, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("invalid end %q", endStr)
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return
}

// parseTime accepts RFC 3339 or a bare date.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, invalid("invalid time %q", s)
	}
	return t, nil
}
