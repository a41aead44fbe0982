package vbt

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// SetSummary aggregates the per-rep velocities of one set.
type SetSummary struct {
	Reps            int     `json:"reps"`
	MeanVelocity    float64 `json:"mean_velocity"`
	PeakVelocity    float64 `json:"peak_velocity"`
	FirstVelocity   float64 `json:"first_velocity"`
	LastVelocity    float64 `json:"last_velocity"`
	StdDev          float64 `json:"std_dev"`
	VelocityLossPct float64 `json:"velocity_loss_pct"`
	Zone            Zone    `json:"zone"`
}

// SummarizeSet computes set statistics from rep velocities in the order performed.
// Velocity loss is measured from the fastest rep to the last one.
func SummarizeSet(velocities []float64) (SetSummary, error) {
	if len(velocities) == 0 {
		return SetSummary{}, fmt.Errorf("no reps: %w", ErrInvalidInput)
	}
	peak := 0.0
	for i, v := range velocities {
		if err := checkVelocity(v); err != nil {
			return SetSummary{}, fmt.Errorf("rep %d: %w", i+1, err)
		}
		peak = math.Max(peak, v)
	}

	s := SetSummary{
		Reps:          len(velocities),
		MeanVelocity:  stat.Mean(velocities, nil),
		PeakVelocity:  peak,
		FirstVelocity: velocities[0],
		LastVelocity:  velocities[len(velocities)-1],
	}
	if len(velocities) > 1 {
		s.StdDev = stat.StdDev(velocities, nil)
	}
	if peak > 0 {
		s.VelocityLossPct = (peak - s.LastVelocity) / peak * 100
	}

	zone, err := Classify(s.MeanVelocity)
	if err != nil {
		return SetSummary{}, err
	}
	s.Zone = zone
	return s, nil
}

// LoadVelocity is one point on a load-velocity curve.
type LoadVelocity struct {
	LoadKg   float64 `json:"load_kg"`
	Velocity float64 `json:"velocity"`
}

// Minimum velocity thresholds in m/s: the mean velocity of a true 1RM.
var minimumVelocityThresholds = map[string]float64{
	"squat":    0.30,
	"bench":    0.17,
	"deadlift": 0.15,
	"row":      0.50,
}

const defaultMVT = 0.30

// MinimumVelocityThreshold returns the 1RM velocity for an exercise.
func MinimumVelocityThreshold(exercise string) float64 {
	if mvt, ok := minimumVelocityThresholds[strings.ToLower(strings.TrimSpace(exercise))]; ok {
		return mvt
	}
	return defaultMVT
}

// Profile is a linear load-velocity relationship: load = Intercept + Slope*velocity.
type Profile struct {
	Exercise     string  `json:"exercise"`
	Intercept    float64 `json:"intercept"`
	Slope        float64 `json:"slope"`
	RSquared     float64 `json:"r_squared"`
	MVT          float64 `json:"mvt"`
	Estimated1RM float64 `json:"estimated_1rm_kg"`
	Points       int     `json:"points"`
}

// LoadAt predicts the load that moves at velocity v.
func (p Profile) LoadAt(v float64) float64 {
	return p.Intercept + p.Slope*v
}

// FitProfile fits a load-velocity line and estimates 1RM at the exercise's MVT.
// Needs at least two distinct velocities, and heavier loads must move slower.
func FitProfile(exercise string, points []LoadVelocity) (Profile, error) {
	if len(points) < 2 {
		return Profile{}, fmt.Errorf("need at least 2 points, got %d: %w", len(points), ErrInvalidInput)
	}
	velocities := make([]float64, len(points))
	loads := make([]float64, len(points))
	distinct := false
	for i, p := range points {
		if err := checkVelocity(p.Velocity); err != nil {
			return Profile{}, fmt.Errorf("point %d: %w", i+1, err)
		}
		if p.LoadKg <= 0 || math.IsNaN(p.LoadKg) || math.IsInf(p.LoadKg, 0) {
			return Profile{}, fmt.Errorf("point %d: load %v kg: %w", i+1, p.LoadKg, ErrInvalidInput)
		}
		velocities[i] = p.Velocity
		loads[i] = p.LoadKg
		if p.Velocity != points[0].Velocity {
			distinct = true
		}
	}
	if !distinct {
		return Profile{}, fmt.Errorf("all points share one velocity: %w", ErrInvalidInput)
	}

	intercept, slope := stat.LinearRegression(velocities, loads, nil, false)
	if slope >= 0 {
		return Profile{}, fmt.Errorf("load does not decrease with velocity (slope %.2f): %w", slope, ErrInvalidInput)
	}

	p := Profile{
		Exercise:  exercise,
		Intercept: intercept,
		Slope:     slope,
		RSquared:  stat.RSquared(velocities, loads, nil, intercept, slope),
		MVT:       MinimumVelocityThreshold(exercise),
		Points:    len(points),
	}
	p.Estimated1RM = math.Round(p.LoadAt(p.MVT)*10) / 10
	return p, nil
}
