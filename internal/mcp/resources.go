package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) velocityZones(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, vbt.ZoneTable())
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, workouts)
}

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	checkIn, err := h.latestCheckIn(ctx, uid)
	if err != nil {
		return nil, err
	}

	nutrition, err := h.ds.GetDailyNutrition(ctx, today, uid)
	if err != nil {
		h.log.Warn("daily_summary: nutrition query failed", "error", err)
	}

	workouts, err := h.ds.QueryWorkouts(ctx, today, tomorrow, uid, "")
	if err != nil {
		h.log.Warn("daily_summary: workout query failed", "error", err)
	}

	velocity, err := h.ds.GetVelocitySummary(ctx, today, tomorrow, uid, "")
	if err != nil {
		h.log.Warn("daily_summary: velocity query failed", "error", err)
	}

	summary := map[string]any{
		"date":            today.Format("2006-01-02"),
		"latest_check_in": checkIn,
		"nutrition":       nutrition,
		"todays_workouts": workouts,
		"velocity":        velocity,
	}
	return jsonContents(req.Params.URI, summary)
}
