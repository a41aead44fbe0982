package vbt

import (
	"errors"
	"math"
	"testing"
)

// TestSummarizeSet verifies mean, peak and velocity loss for a typical set
// where the second rep is the fastest.
func TestSummarizeSet(t *testing.T) {
	s, err := SummarizeSet([]float64{0.5, 0.6, 0.45})
	if err != nil {
		t.Fatal(err)
	}
	if s.Reps != 3 {
		t.Errorf("reps = %d, want 3", s.Reps)
	}
	if math.Abs(s.MeanVelocity-0.51667) > 1e-4 {
		t.Errorf("mean = %.5f, want 0.51667", s.MeanVelocity)
	}
	if s.PeakVelocity != 0.6 {
		t.Errorf("peak = %v, want 0.6", s.PeakVelocity)
	}
	if s.FirstVelocity != 0.5 || s.LastVelocity != 0.45 {
		t.Errorf("first/last = %v/%v, want 0.5/0.45", s.FirstVelocity, s.LastVelocity)
	}
	if math.Abs(s.VelocityLossPct-25) > 1e-9 {
		t.Errorf("velocity loss = %.2f%%, want 25%%", s.VelocityLossPct)
	}
	if s.StdDev <= 0 {
		t.Errorf("std dev = %v, want > 0", s.StdDev)
	}
	if s.Zone != StrengthSpeed {
		t.Errorf("zone = %s, want strength_speed", s.Zone)
	}
}

// TestSummarizeSingleRep verifies a single rep has no spread and no loss.
func TestSummarizeSingleRep(t *testing.T) {
	s, err := SummarizeSet([]float64{0.8})
	if err != nil {
		t.Fatal(err)
	}
	if s.StdDev != 0 || s.VelocityLossPct != 0 {
		t.Errorf("std dev/loss = %v/%v, want 0/0", s.StdDev, s.VelocityLossPct)
	}
	if s.Zone != Power {
		t.Errorf("zone = %s, want power", s.Zone)
	}
}

// TestSummarizeSetInvalid verifies empty sets and invalid reps are rejected.
func TestSummarizeSetInvalid(t *testing.T) {
	if _, err := SummarizeSet(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty set error = %v, want ErrInvalidInput", err)
	}
	if _, err := SummarizeSet([]float64{0.5, -0.1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative rep error = %v, want ErrInvalidInput", err)
	}
}

// TestFitProfile verifies a two-point profile recovers the line and estimates
// 1RM at the squat minimum velocity threshold.
func TestFitProfile(t *testing.T) {
	p, err := FitProfile("squat", []LoadVelocity{
		{LoadKg: 100, Velocity: 0.5},
		{LoadKg: 140, Velocity: 0.3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Slope-(-200)) > 1e-6 {
		t.Errorf("slope = %v, want -200", p.Slope)
	}
	if math.Abs(p.Intercept-200) > 1e-6 {
		t.Errorf("intercept = %v, want 200", p.Intercept)
	}
	if p.MVT != 0.30 {
		t.Errorf("mvt = %v, want 0.30", p.MVT)
	}
	if math.Abs(p.Estimated1RM-140) > 0.05 {
		t.Errorf("estimated 1RM = %v, want 140", p.Estimated1RM)
	}
	if math.Abs(p.RSquared-1) > 1e-9 {
		t.Errorf("r² = %v, want 1", p.RSquared)
	}
	if math.Abs(p.LoadAt(0.4)-120) > 1e-6 {
		t.Errorf("LoadAt(0.4) = %v, want 120", p.LoadAt(0.4))
	}
}

// TestFitProfileRejects verifies degenerate inputs fail instead of producing a
// nonsensical 1RM estimate.
func TestFitProfileRejects(t *testing.T) {
	tests := []struct {
		name   string
		points []LoadVelocity
	}{
		{"single point", []LoadVelocity{{100, 0.5}}},
		{"same velocity", []LoadVelocity{{100, 0.5}, {120, 0.5}}},
		{"heavier is faster", []LoadVelocity{{100, 0.4}, {120, 0.6}}},
		{"zero load", []LoadVelocity{{0, 0.9}, {120, 0.4}}},
		{"negative velocity", []LoadVelocity{{100, -0.4}, {120, 0.4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FitProfile("bench", tt.points); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// TestMinimumVelocityThreshold verifies known lifts and the fallback.
func TestMinimumVelocityThreshold(t *testing.T) {
	if got := MinimumVelocityThreshold(" Bench "); got != 0.17 {
		t.Errorf("bench MVT = %v, want 0.17", got)
	}
	if got := MinimumVelocityThreshold("lunge"); got != defaultMVT {
		t.Errorf("unknown MVT = %v, want %v", got, defaultMVT)
	}
}
