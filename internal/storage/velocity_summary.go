package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/vbt"
)

// ZoneBand holds the count and percentage of sets whose mean velocity fell in a zone.
type ZoneBand struct {
	Zone  string  `json:"zone"`
	Label string  `json:"label"`
	Sets  int     `json:"sets"`
	Pct   float64 `json:"pct"`
}

// ExerciseVelocity holds aggregated velocity stats for a single exercise.
type ExerciseVelocity struct {
	Name         string  `json:"name"`
	Sets         int     `json:"sets"`
	MeanVelocity float64 `json:"mean_velocity"`
	PeakVelocity float64 `json:"peak_velocity"`
	MaxWeight    float64 `json:"max_weight_kg"`
}

// VelocityProgression holds one day's velocity data for a specific exercise.
type VelocityProgression struct {
	Date         string  `json:"date"`
	MeanVelocity float64 `json:"mean_velocity"`
	PeakVelocity float64 `json:"peak_velocity"`
	MaxWeight    float64 `json:"max_weight_kg"`
	Sets         int     `json:"sets"`
}

// VelocitySummary is the velocity analysis for a date range.
type VelocitySummary struct {
	ZoneDistribution []ZoneBand            `json:"zone_distribution"`
	TotalSets        int                   `json:"total_sets"`
	TrackedSets      int                   `json:"tracked_sets"`
	Exercises        []ExerciseVelocity    `json:"exercises"`
	Progression      []VelocityProgression `json:"progression,omitempty"`
}

// GetVelocitySummary returns zone distribution, per-exercise velocity stats and,
// when exercise is set, that exercise's daily progression.
// Sets logged without a velocity count towards TotalSets only.
func (db *DB) GetVelocitySummary(ctx context.Context, start, end time.Time, userID int, exercise string) (*VelocitySummary, error) {
	result := &VelocitySummary{}

	zoneRows, err := db.Pool.Query(ctx,
		`SELECT velocity_zone, COUNT(*)::int
		 FROM workout_exercises
		 WHERE created_at >= $1 AND created_at < $2 AND user_id = $3
		   AND ($4 = '' OR exercise_name ILIKE '%' || $4 || '%')
		 GROUP BY velocity_zone`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying zone distribution: %w", err)
	}
	defer zoneRows.Close()

	counts := make(map[string]int)
	for zoneRows.Next() {
		var zone string
		var n int
		if err := zoneRows.Scan(&zone, &n); err != nil {
			return nil, fmt.Errorf("scanning zone band: %w", err)
		}
		counts[zone] = n
		result.TotalSets += n
	}
	if err := zoneRows.Err(); err != nil {
		return nil, err
	}
	result.ZoneDistribution, result.TrackedSets = zoneBands(counts)

	exRows, err := db.Pool.Query(ctx,
		`SELECT exercise_name,
		        COUNT(*)::int,
		        AVG(velocity),
		        MAX(COALESCE(peak_velocity, velocity)),
		        COALESCE(MAX(weight_kg), 0)
		 FROM workout_exercises
		 WHERE created_at >= $1 AND created_at < $2 AND user_id = $3
		   AND velocity IS NOT NULL
		   AND ($4 = '' OR exercise_name ILIKE '%' || $4 || '%')
		 GROUP BY exercise_name
		 ORDER BY COUNT(*) DESC, exercise_name ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying exercise velocity: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var e ExerciseVelocity
		if err := exRows.Scan(&e.Name, &e.Sets, &e.MeanVelocity, &e.PeakVelocity, &e.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise velocity: %w", err)
		}
		result.Exercises = append(result.Exercises, e)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	if exercise == "" {
		return result, nil
	}

	progRows, err := db.Pool.Query(ctx,
		`SELECT created_at::date AS day,
		        AVG(velocity),
		        MAX(COALESCE(peak_velocity, velocity)),
		        COALESCE(MAX(weight_kg), 0),
		        COUNT(*)::int
		 FROM workout_exercises
		 WHERE created_at >= $1 AND created_at < $2 AND user_id = $3
		   AND velocity IS NOT NULL
		   AND exercise_name ILIKE '%' || $4 || '%'
		 GROUP BY day
		 ORDER BY day ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying velocity progression: %w", err)
	}
	defer progRows.Close()

	for progRows.Next() {
		var p VelocityProgression
		var d time.Time
		if err := progRows.Scan(&d, &p.MeanVelocity, &p.PeakVelocity, &p.MaxWeight, &p.Sets); err != nil {
			return nil, fmt.Errorf("scanning velocity progression: %w", err)
		}
		p.Date = d.Format("2006-01-02")
		result.Progression = append(result.Progression, p)
	}
	return result, progRows.Err()
}

// LoadVelocityHistory returns (weight, mean velocity) pairs of the user's sets of
// one exercise, for fitting a load-velocity profile.
func (db *DB) LoadVelocityHistory(ctx context.Context, start, end time.Time, userID int, exercise string) ([]vbt.LoadVelocity, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT weight_kg, velocity
		 FROM workout_exercises
		 WHERE created_at >= $1 AND created_at < $2 AND user_id = $3
		   AND exercise_name = $4
		   AND velocity IS NOT NULL AND weight_kg > 0
		 ORDER BY created_at ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying load-velocity history: %w", err)
	}
	defer rows.Close()

	var result []vbt.LoadVelocity
	for rows.Next() {
		var p vbt.LoadVelocity
		if err := rows.Scan(&p.LoadKg, &p.Velocity); err != nil {
			return nil, fmt.Errorf("scanning load-velocity point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// zoneBands orders zone counts slowest zone first, always listing every zone, and
// computes percentages over sets that carry a zone. Rows with an empty zone are untracked.
func zoneBands(counts map[string]int) ([]ZoneBand, int) {
	tracked := 0
	for _, z := range vbt.Zones {
		tracked += counts[z.String()]
	}
	bands := make([]ZoneBand, 0, len(vbt.Zones))
	for _, z := range vbt.Zones {
		b := ZoneBand{Zone: z.String(), Label: z.Label(), Sets: counts[z.String()]}
		if tracked > 0 {
			b.Pct = float64(b.Sets) / float64(tracked) * 100
		}
		bands = append(bands, b)
	}
	return bands, tracked
}
