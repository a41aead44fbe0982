package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/mark3labs/mcp-go/mcp"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 7 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 7 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeDataSource serves fixed rows and remembers the last filter it saw.
type fakeDataSource struct {
	sets       []models.WorkoutSetRow
	latest     *models.HealthMetricRow
	err        error
	lastFilter string
	lastUser   int
}

func (f *fakeDataSource) QueryWorkouts(_ context.Context, _, _ time.Time, uid int, workoutType string) ([]models.WorkoutRow, error) {
	f.lastUser, f.lastFilter = uid, workoutType
	return []models.WorkoutRow{{Name: "Lower A"}}, f.err
}

func (f *fakeDataSource) QueryWorkoutSets(_ context.Context, _, _ time.Time, uid int, exercise string) ([]models.WorkoutSetRow, error) {
	f.lastUser, f.lastFilter = uid, exercise
	return f.sets, f.err
}

func (f *fakeDataSource) GetVelocitySummary(_ context.Context, _, _ time.Time, _ int, exercise string) (*storage.VelocitySummary, error) {
	f.lastFilter = exercise
	return &storage.VelocitySummary{TotalSets: len(f.sets)}, f.err
}

func (f *fakeDataSource) QueryPersonalRecords(_ context.Context, _ int, exercise string) ([]models.PersonalRecordRow, error) {
	f.lastFilter = exercise
	return nil, f.err
}

func (f *fakeDataSource) QueryNutritionLogs(context.Context, time.Time, time.Time, int) ([]models.NutritionLogRow, error) {
	return nil, f.err
}

func (f *fakeDataSource) GetDailyNutrition(_ context.Context, day time.Time, _ int) (*storage.DailyNutrition, error) {
	return &storage.DailyNutrition{Date: day.Format("2006-01-02")}, f.err
}

func (f *fakeDataSource) QueryMobilityAssessments(_ context.Context, _, _ time.Time, _ int, bodyPart string) ([]models.MobilityAssessmentRow, error) {
	f.lastFilter = bodyPart
	return nil, f.err
}

func (f *fakeDataSource) QueryHealthMetrics(context.Context, time.Time, time.Time, int) ([]models.HealthMetricRow, error) {
	return nil, f.err
}

func (f *fakeDataSource) GetLatestHealthMetric(context.Context, int) (*models.HealthMetricRow, error) {
	if f.latest == nil {
		return nil, storage.ErrNotFound
	}
	return f.latest, nil
}

func testHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestAssessVelocityTool verifies the tool returns the zone and recommendation.
func TestAssessVelocityTool(t *testing.T) {
	h := testHandlers(&fakeDataSource{})
	res, err := h.assessVelocity(context.Background(), toolRequest(map[string]any{"velocity": 0.8, "goal": "power"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var a vbt.Assessment
	if err := json.Unmarshal([]byte(resultText(t, res)), &a); err != nil {
		t.Fatal(err)
	}
	if a.Zone != vbt.Power || a.Recommendation.Category != vbt.Maintain {
		t.Errorf("assessment = %+v, want power/maintain", a)
	}
}

// TestAssessVelocityToolErrors verifies bad arguments come back as tool errors.
func TestAssessVelocityToolErrors(t *testing.T) {
	h := testHandlers(&fakeDataSource{})
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing velocity", map[string]any{"goal": "power"}},
		{"missing goal", map[string]any{"velocity": 0.5}},
		{"unknown goal", map[string]any{"velocity": 0.5, "goal": "endurance"}},
		{"negative velocity", map[string]any{"velocity": -0.5, "goal": "strength"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.assessVelocity(context.Background(), toolRequest(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

// TestGetVelocityZonesTool verifies all five zones are listed.
func TestGetVelocityZonesTool(t *testing.T) {
	res, err := testHandlers(&fakeDataSource{}).getVelocityZones(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	var zones []vbt.ZoneInfo
	if err := json.Unmarshal([]byte(resultText(t, res)), &zones); err != nil {
		t.Fatal(err)
	}
	if len(zones) != 5 {
		t.Errorf("zones = %d, want 5", len(zones))
	}
}

// TestGetWorkoutSetsTool verifies the exercise filter is normalized and the
// user comes from the context.
func TestGetWorkoutSetsTool(t *testing.T) {
	ds := &fakeDataSource{sets: []models.WorkoutSetRow{{ExerciseName: "bench", SetNumber: 1}}}
	h := testHandlers(ds)
	ctx := WithUserID(context.Background(), 7)

	res, err := h.getWorkoutSets(ctx, toolRequest(map[string]any{"exercise": "Bankdrücken"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if ds.lastFilter != "bench" || ds.lastUser != 7 {
		t.Errorf("filter/user = %q/%d, want bench/7", ds.lastFilter, ds.lastUser)
	}
}

// TestToolInvalidDate verifies unparseable dates are tool errors, not Go errors.
func TestToolInvalidDate(t *testing.T) {
	h := testHandlers(&fakeDataSource{})
	res, err := h.getWorkouts(context.Background(), toolRequest(map[string]any{"start": "last week"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error for invalid date")
	}
}

// TestToolQueryFailure verifies data source failures are reported as tool errors.
func TestToolQueryFailure(t *testing.T) {
	h := testHandlers(&fakeDataSource{err: errors.New("connection refused")})
	res, err := h.getHealthMetrics(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "connection refused") {
		t.Errorf("result = %+v, want tool error mentioning the cause", res)
	}
}

// TestDailySummaryWithoutCheckIn verifies the summary renders when the user has no check-ins.
func TestDailySummaryWithoutCheckIn(t *testing.T) {
	h := testHandlers(&fakeDataSource{})
	var req mcp.ReadResourceRequest
	req.Params.URI = "vbtcoach://daily_summary"

	contents, err := h.dailySummary(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T", contents[0])
	}
	var summary map[string]any
	if err := json.Unmarshal([]byte(text.Text), &summary); err != nil {
		t.Fatal(err)
	}
	if summary["latest_check_in"] != nil {
		t.Errorf("latest_check_in = %v, want null", summary["latest_check_in"])
	}
	if _, ok := summary["nutrition"].(map[string]any); !ok {
		t.Errorf("nutrition = %v, want object", summary["nutrition"])
	}
	if text.URI != req.Params.URI {
		t.Errorf("uri = %q", text.URI)
	}
}

// TestNewHTTPHandler verifies the server and its HTTP transport build.
func TestNewHTTPHandler(t *testing.T) {
	s := New(&fakeDataSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
	if NewHTTPHandler(s) == nil {
		t.Fatal("NewHTTPHandler returned nil")
	}
}
