package vbt

import (
	"errors"
	"testing"
)

// TestAdvise covers every row of the decision table, including the strength
// dead band between 0.4 and 0.5 which falls through to the generic message.
func TestAdvise(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		goal Goal
		want Recommendation
	}{
		{"strength too slow", 0.3, GoalStrength, recStrengthTooSlow},
		{"strength fast", 0.6, GoalStrength, recStrengthFast},
		{"strength dead band", 0.45, GoalStrength, recAppropriate},
		{"strength dead band low edge", 0.4, GoalStrength, recAppropriate},
		{"strength dead band high edge", 0.5, GoalStrength, recAppropriate},
		{"power just below threshold", 0.6, GoalPower, recPowerTooSlow},
		{"power below zone", 0.5, GoalPower, recPowerTooSlow},
		{"power threshold", 0.7, GoalPower, recPowerInZone},
		{"power fast", 0.9, GoalPower, recPowerInZone},
		{"hypertrophy slow", 0.4, GoalHypertrophy, recHypertrophySlow},
		{"hypertrophy threshold", 0.5, GoalHypertrophy, recHypertrophyFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advise(tt.v, tt.goal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Advise(%v, %s) = %+v, want %+v", tt.v, tt.goal, got, tt.want)
			}
		})
	}
}

// TestAdvisePowerThreshold verifies the power goal switches from reduce_load to
// maintain at exactly 0.7 m/s, so 0.6 still asks for less load.
func TestAdvisePowerThreshold(t *testing.T) {
	below, err := Advise(0.6, GoalPower)
	if err != nil {
		t.Fatal(err)
	}
	if below.Category != ReduceLoad {
		t.Errorf("Advise(0.6, power) category = %s, want reduce_load", below.Category)
	}
	at, err := Advise(0.7, GoalPower)
	if err != nil {
		t.Fatal(err)
	}
	if at.Category != Maintain {
		t.Errorf("Advise(0.7, power) category = %s, want maintain", at.Category)
	}
}

// TestAdviseCategories verifies the category attached to each goal's main branches.
func TestAdviseCategories(t *testing.T) {
	tests := []struct {
		v    float64
		goal Goal
		want Category
	}{
		{0.3, GoalStrength, ReduceLoad},
		{0.6, GoalStrength, IncreaseLoad},
		{0.45, GoalStrength, Informational},
		{0.5, GoalPower, ReduceLoad},
		{0.4, GoalHypertrophy, Informational},
		{0.5, GoalHypertrophy, Maintain},
	}
	for _, tt := range tests {
		got, err := Advise(tt.v, tt.goal)
		if err != nil {
			t.Fatalf("Advise(%v, %s): %v", tt.v, tt.goal, err)
		}
		if got.Category != tt.want {
			t.Errorf("Advise(%v, %s).Category = %s, want %s", tt.v, tt.goal, got.Category, tt.want)
		}
	}
}

// TestAdviseInvalidInput verifies unknown goals and negative velocities fail
// with ErrInvalidInput.
func TestAdviseInvalidInput(t *testing.T) {
	if _, err := Advise(0.5, Goal("endurance")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown goal error = %v, want ErrInvalidInput", err)
	}
	if _, err := Advise(-0.1, GoalStrength); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative velocity error = %v, want ErrInvalidInput", err)
	}
}

// TestAdviseIdempotent verifies repeated calls with identical inputs return
// identical results.
func TestAdviseIdempotent(t *testing.T) {
	for _, goal := range Goals {
		for _, v := range []float64{0, 0.35, 0.45, 0.55, 0.72, 1.2} {
			a, errA := Assess(v, goal)
			b, errB := Assess(v, goal)
			if errA != nil || errB != nil {
				t.Fatalf("Assess(%v, %s) errors: %v, %v", v, goal, errA, errB)
			}
			if a != b {
				t.Errorf("Assess(%v, %s) not idempotent: %+v vs %+v", v, goal, a, b)
			}
		}
	}
}

// TestParseGoal verifies goal parsing is case-insensitive and rejects unknown values.
func TestParseGoal(t *testing.T) {
	g, err := ParseGoal("  Power ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != GoalPower {
		t.Errorf("ParseGoal = %q, want power", g)
	}
	if _, err := ParseGoal(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty goal error = %v, want ErrInvalidInput", err)
	}
}

// TestAssess verifies the combined output carries zone, label and recommendation.
func TestAssess(t *testing.T) {
	a, err := Assess(0.6, GoalStrength)
	if err != nil {
		t.Fatal(err)
	}
	if a.Zone != StrengthSpeed {
		t.Errorf("zone = %s, want strength_speed", a.Zone)
	}
	if a.ZoneLabel != "Strength-Speed" {
		t.Errorf("zone label = %q, want Strength-Speed", a.ZoneLabel)
	}
	if a.Recommendation.Category != IncreaseLoad {
		t.Errorf("category = %s, want increase_load", a.Recommendation.Category)
	}
}
