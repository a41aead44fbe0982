package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// exerciseFilter maps a lift name to its canonical form, leaving unknown names as typed.
func exerciseFilter(raw string) string {
	if canonical, ok := models.NormalizeExercise(raw); ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// jsonResult wraps v as a JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var toolAssessVelocity = mcp.NewTool("assess_velocity",
	mcp.WithDescription("Classify a mean concentric bar velocity into a training zone and recommend a load change for the given goal."),
	mcp.WithNumber("velocity", mcp.Required(), mcp.Description("Mean concentric velocity in m/s (e.g. 0.45)")),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Training goal"), mcp.Enum("strength", "power", "hypertrophy")),
)

var toolGetVelocityZones = mcp.NewTool("get_velocity_zones",
	mcp.WithDescription("List the five velocity zones (max strength to max velocity) with their m/s bounds."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query workouts with optional type filter. Returns name, start, duration, intensity and coach feedback."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("type", mcp.Description("Filter by workout type (e.g. 'vbt', 'strength')")),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Query logged sets. Returns weight, reps, RPE, velocity, velocity zone and the recommendation given for each set."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench')")),
)

var toolGetVelocitySummary = mcp.NewTool("get_velocity_summary",
	mcp.WithDescription("Velocity zone distribution and per-exercise mean/peak velocity for a period. With an exercise, includes day-by-day progression."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Exercise name for progression (e.g. 'squat')")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Current personal records: heaviest weight and fastest peak velocity per exercise."),
	mcp.WithString("exercise", mcp.Description("Limit to one exercise")),
)

var toolGetNutritionLogs = mcp.NewTool("get_nutrition_logs",
	mcp.WithDescription("Logged meals with macros, hydration and the coach's recommendation."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetMobilityAssessments = mcp.NewTool("get_mobility_assessments",
	mcp.WithDescription("Mobility self-assessments (score 1-10, pain 0-10) with the drills recommended for each."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("body_part", mcp.Description("Filter by body part (e.g. 'shoulders')")),
)

var toolGetHealthMetrics = mcp.NewTool("get_health_metrics",
	mcp.WithDescription("Daily recovery check-ins: body weight, HRV, resting heart rate, sleep, soreness, stress and recovery score."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) assessVelocity(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := req.RequireFloat("velocity")
	if err != nil {
		return mcp.NewToolResultError("velocity parameter is required"), nil
	}
	goalStr, err := req.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("goal parameter is required"), nil
	}
	goal, err := vbt.ParseGoal(goalStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := vbt.Assess(v, goal)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

func (h *handlers) getVelocityZones(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(vbt.ZoneTable())
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	typeFilter := req.GetString("type", "")
	uid := UserIDFromContext(ctx)

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid, typeFilter)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workouts)
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exercise := exerciseFilter(req.GetString("exercise", ""))

	sets, err := h.ds.QueryWorkoutSets(ctx, start, end, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sets)
}

func (h *handlers) getVelocitySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exercise := exerciseFilter(req.GetString("exercise", ""))

	summary, err := h.ds.GetVelocitySummary(ctx, start, end, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_velocity_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	exercise := exerciseFilter(req.GetString("exercise", ""))

	records, err := h.ds.QueryPersonalRecords(ctx, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(records)
}

func (h *handlers) getNutritionLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.QueryNutritionLogs(ctx, start, end, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_nutrition_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(logs)
}

func (h *handlers) getMobilityAssessments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bodyPart := strings.ToLower(strings.TrimSpace(req.GetString("body_part", "")))
	rows, err := h.ds.QueryMobilityAssessments(ctx, start, end, UserIDFromContext(ctx), bodyPart)
	if err != nil {
		h.log.Error("mcp get_mobility_assessments", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(rows)
}

func (h *handlers) getHealthMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	rows, err := h.ds.QueryHealthMetrics(ctx, start, end, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_health_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(rows)
}

// latestCheckIn returns the newest check-in, or nil when there is none.
func (h *handlers) latestCheckIn(ctx context.Context, uid int) (*models.HealthMetricRow, error) {
	row, err := h.ds.GetLatestHealthMetric(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return row, err
}
