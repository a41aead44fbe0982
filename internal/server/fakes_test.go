package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/claude/vbtcoach/internal/coach"
	"github.com/claude/vbtcoach/internal/ingest"
	"github.com/claude/vbtcoach/internal/models"
	"github.com/claude/vbtcoach/internal/storage"
	"github.com/claude/vbtcoach/internal/vbt"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store. Methods it does not model return empty results.
type fakeStore struct {
	mu         sync.Mutex
	users      map[string]int
	workouts   map[uuid.UUID]models.WorkoutRow
	sets       []models.WorkoutSetRow
	nutrition  []models.NutritionLogRow
	mobility   []models.MobilityAssessmentRow
	challenges map[uuid.UUID]models.ChallengeRow
	joined     map[uuid.UUID]models.ChallengeParticipantRow
	metrics    map[string]models.HealthMetricRow
	importLogs []storage.ImportLog
	history    []vbt.LoadVelocity
	err        error
	recordsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]int{"local": 1},
		workouts:   map[uuid.UUID]models.WorkoutRow{},
		challenges: map[uuid.UUID]models.ChallengeRow{},
		joined:     map[uuid.UUID]models.ChallengeParticipantRow{},
		metrics:    map[string]models.HealthMetricRow{},
	}
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 1
	f.users[login] = id
	return id, nil
}

func (f *fakeStore) InsertWorkout(_ context.Context, row models.WorkoutRow) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.workouts[row.ID]; ok {
		return false, nil
	}
	f.workouts[row.ID] = row
	return true, nil
}

func (f *fakeStore) QueryWorkouts(_ context.Context, start, end time.Time, userID int, workoutType string) ([]models.WorkoutRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkoutRow
	for _, w := range f.workouts {
		if w.UserID == userID && !w.StartedAt.Before(start) && w.StartedAt.Before(end) &&
			(workoutType == "" || w.WorkoutType == workoutType) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, f.err
}

func (f *fakeStore) RecentWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error) {
	return f.QueryWorkouts(ctx, time.Time{}, time.Now().Add(time.Hour), userID, "")
}

func (f *fakeStore) GetWorkout(_ context.Context, workoutID uuid.UUID, userID int) (*storage.WorkoutDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil, storage.ErrNotFound
	}
	d := &storage.WorkoutDetail{WorkoutRow: w, Sets: []models.WorkoutSetRow{}}
	for _, s := range f.sets {
		if s.WorkoutID == workoutID {
			d.Sets = append(d.Sets, s)
		}
	}
	return d, nil
}

func (f *fakeStore) CompleteWorkout(_ context.Context, workoutID uuid.UUID, userID int, completedAt time.Time, feedback json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[workoutID]
	if !ok || w.UserID != userID {
		return storage.ErrNotFound
	}
	minutes := int(completedAt.Sub(w.StartedAt).Minutes())
	w.CompletedAt = &completedAt
	w.DurationMinutes = &minutes
	w.AIFeedback = feedback
	f.workouts[workoutID] = w
	return nil
}

func (f *fakeStore) InsertWorkoutSets(_ context.Context, rows []models.WorkoutSetRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sets = append(f.sets, rows...)
	return int64(len(rows)), nil
}

func (f *fakeStore) QueryWorkoutSets(_ context.Context, _, _ time.Time, userID int, exercise string) ([]models.WorkoutSetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkoutSetRow
	for _, s := range f.sets {
		if s.UserID == userID && (exercise == "" || s.ExerciseName == exercise) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetVelocitySummary(context.Context, time.Time, time.Time, int, string) (*storage.VelocitySummary, error) {
	return &storage.VelocitySummary{}, f.err
}

func (f *fakeStore) LoadVelocityHistory(context.Context, time.Time, time.Time, int, string) ([]vbt.LoadVelocity, error) {
	return f.history, f.err
}

func (f *fakeStore) RecordPersonalBests(_ context.Context, userID int, sets []models.WorkoutSetRow) ([]models.PersonalRecordRow, error) {
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	var out []models.PersonalRecordRow
	for _, s := range sets {
		if s.WeightKg != nil {
			out = append(out, models.PersonalRecordRow{
				UserID:       userID,
				ExerciseName: s.ExerciseName,
				RecordType:   models.RecordMaxWeight,
				Value:        *s.WeightKg,
				Unit:         "kg",
			})
		}
	}
	return out, nil
}

func (f *fakeStore) QueryPersonalRecords(context.Context, int, string) ([]models.PersonalRecordRow, error) {
	return []models.PersonalRecordRow{}, f.err
}

func (f *fakeStore) InsertNutritionLog(_ context.Context, row models.NutritionLogRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nutrition = append(f.nutrition, row)
	return nil
}

func (f *fakeStore) QueryNutritionLogs(context.Context, time.Time, time.Time, int) ([]models.NutritionLogRow, error) {
	return f.nutrition, f.err
}

func (f *fakeStore) GetDailyNutrition(_ context.Context, day time.Time, _ int) (*storage.DailyNutrition, error) {
	return &storage.DailyNutrition{Date: day.Format(time.DateOnly), Meals: len(f.nutrition)}, f.err
}

func (f *fakeStore) InsertMobilityAssessment(_ context.Context, row models.MobilityAssessmentRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mobility = append(f.mobility, row)
	return nil
}

func (f *fakeStore) QueryMobilityAssessments(context.Context, time.Time, time.Time, int, string) ([]models.MobilityAssessmentRow, error) {
	return f.mobility, f.err
}

func (f *fakeStore) ListChallenges(context.Context, time.Time) ([]models.ChallengeRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ChallengeRow{}
	for _, c := range f.challenges {
		out = append(out, c)
	}
	return out, f.err
}

func (f *fakeStore) JoinChallenge(_ context.Context, challengeID uuid.UUID, userID int) (*models.ChallengeParticipantRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.challenges[challengeID]; !ok {
		return nil, storage.ErrNotFound
	}
	if p, ok := f.joined[challengeID]; ok {
		return &p, nil
	}
	p := models.ChallengeParticipantRow{ID: uuid.New(), ChallengeID: challengeID, UserID: userID, JoinedAt: time.Now()}
	f.joined[challengeID] = p
	return &p, nil
}

func (f *fakeStore) QueryJoinedChallenges(context.Context, int) ([]storage.JoinedChallenge, error) {
	return []storage.JoinedChallenge{}, f.err
}

func (f *fakeStore) UpsertHealthMetric(_ context.Context, row models.HealthMetricRow) (*models.HealthMetricRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := row.Date.Format(time.DateOnly)
	if prev, ok := f.metrics[key]; ok {
		row.ID = prev.ID
	}
	f.metrics[key] = row
	return &row, nil
}

func (f *fakeStore) QueryHealthMetrics(context.Context, time.Time, time.Time, int) ([]models.HealthMetricRow, error) {
	return []models.HealthMetricRow{}, f.err
}

func (f *fakeStore) GetLatestHealthMetric(context.Context, int) (*models.HealthMetricRow, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetDataStats(context.Context, int) (*storage.DataStats, error) {
	return &storage.DataStats{}, f.err
}

func (f *fakeStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.importLogs = append(f.importLogs, log)
	return int64(len(f.importLogs)), nil
}

func (f *fakeStore) QueryImportLogs(context.Context, int, int) ([]storage.ImportLog, error) {
	return f.importLogs, f.err
}

// fakeCoach returns canned answers, or err for every call when set.
type fakeCoach struct {
	advice   string
	drills   []string
	feedback json.RawMessage
	err      error
	calls    int
}

func (c *fakeCoach) NutritionAdvice(context.Context, coach.NutritionRequest) (string, error) {
	c.calls++
	return c.advice, c.err
}

func (c *fakeCoach) MobilityDrills(context.Context, coach.MobilityRequest) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.drills, nil
}

func (c *fakeCoach) WorkoutFeedback(context.Context, coach.WorkoutFeedbackRequest) (json.RawMessage, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.feedback, nil
}

// fakeIngester returns a fixed result and remembers the body and user.
type fakeIngester struct {
	result *ingest.Result
	err    error
	body   string
	userID int
}

func (i *fakeIngester) Ingest(_ context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	b, _ := io.ReadAll(r)
	i.body = string(b)
	i.userID = userID
	return i.result, i.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAPIKey = "test-key"

// newTestServer returns a server over fakes. source defaults to a single 0.6 m/s reading.
func newTestServer(store *fakeStore, c *fakeCoach, ing *fakeIngester, source vbt.VelocitySource) *Server {
	if c == nil {
		c = &fakeCoach{}
	}
	if ing == nil {
		ing = &fakeIngester{result: &ingest.Result{}}
	}
	if source == nil {
		source = vbt.NewSamples(0.6)
	}
	return New(store, ing, c, source, testAPIKey, testLogger())
}
