package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
)

// HTTPClient implements DataSource by calling the VBTCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

// getJSON fetches path and decodes the response into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end time.Time, _ int, workoutType string) ([]models.WorkoutRow, error) {
	params := timeParams(start, end)
	if workoutType != "" {
		params.Set("type", workoutType)
	}
	var workouts []models.WorkoutRow
	if err := c.getJSON(ctx, "/api/v1/workouts", params, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) QueryWorkoutSets(ctx context.Context, start, end time.Time, _ int, exercise string) ([]models.WorkoutSetRow, error) {
	params := timeParams(start, end)
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	var sets []models.WorkoutSetRow
	if err := c.getJSON(ctx, "/api/v1/sets", params, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) GetVelocitySummary(ctx context.Context, start, end time.Time, _ int, exercise string) (*storage.VelocitySummary, error) {
	params := timeParams(start, end)
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	var summary storage.VelocitySummary
	if err := c.getJSON(ctx, "/api/v1/vbt/summary", params, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *HTTPClient) QueryPersonalRecords(ctx context.Context, _ int, exercise string) ([]models.PersonalRecordRow, error) {
	params := url.Values{}
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	var records []models.PersonalRecordRow
	if err := c.getJSON(ctx, "/api/v1/records", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) QueryNutritionLogs(ctx context.Context, start, end time.Time, _ int) ([]models.NutritionLogRow, error) {
	var logs []models.NutritionLogRow
	if err := c.getJSON(ctx, "/api/v1/nutrition", timeParams(start, end), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *HTTPClient) GetDailyNutrition(ctx context.Context, day time.Time, _ int) (*storage.DailyNutrition, error) {
	params := url.Values{}
	params.Set("date", day.Format("2006-01-02"))
	var totals storage.DailyNutrition
	if err := c.getJSON(ctx, "/api/v1/nutrition/daily", params, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}

func (c *HTTPClient) QueryMobilityAssessments(ctx context.Context, start, end time.Time, _ int, bodyPart string) ([]models.MobilityAssessmentRow, error) {
	params := timeParams(start, end)
	if bodyPart != "" {
		params.Set("body_part", bodyPart)
	}
	var rows []models.MobilityAssessmentRow
	if err := c.getJSON(ctx, "/api/v1/mobility", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) QueryHealthMetrics(ctx context.Context, start, end time.Time, _ int) ([]models.HealthMetricRow, error) {
	var rows []models.HealthMetricRow
	if err := c.getJSON(ctx, "/api/v1/health-metrics", timeParams(start, end), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetLatestHealthMetric returns storage.ErrNotFound when the user has no check-ins.
func (c *HTTPClient) GetLatestHealthMetric(ctx context.Context, _ int) (*models.HealthMetricRow, error) {
	var row models.HealthMetricRow
	if err := c.getJSON(ctx, "/api/v1/health-metrics/latest", nil, &row); err != nil {
		return nil, err
	}
	return &row, nil
}
