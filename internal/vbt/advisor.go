package vbt

import (
	"fmt"
	"strings"
)

// Goal is the training goal selected before a set.
type Goal string

const (
	GoalStrength    Goal = "strength"
	GoalPower       Goal = "power"
	GoalHypertrophy Goal = "hypertrophy"
)

// Goals lists the supported goals.
var Goals = []Goal{GoalStrength, GoalPower, GoalHypertrophy}

// Valid reports whether g is one of the supported goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalStrength, GoalPower, GoalHypertrophy:
		return true
	}
	return false
}

// ParseGoal accepts a goal name, ignoring case and surrounding whitespace.
func ParseGoal(s string) (Goal, error) {
	g := Goal(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown training goal %q: %w", s, ErrInvalidInput)
	}
	return g, nil
}

// Category is the kind of adjustment a recommendation asks for.
type Category string

const (
	ReduceLoad    Category = "reduce_load"
	IncreaseLoad  Category = "increase_load"
	Maintain      Category = "maintain"
	Informational Category = "informational"
)

// Recommendation is the advice derived from one velocity reading.
type Recommendation struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

var (
	recStrengthTooSlow = Recommendation{ReduceLoad, "Velocity too low for strength gains. Reduce weight by 5-10% or end set."}
	recStrengthFast    = Recommendation{IncreaseLoad, "Great velocity! Consider adding 2.5-5kg for next set."}
	recPowerTooSlow    = Recommendation{ReduceLoad, "Velocity below power zone. Reduce weight to maintain 0.75-1.0 m/s."}
	recPowerInZone     = Recommendation{Maintain, "Perfect power zone! Maintain this velocity."}
	recHypertrophySlow = Recommendation{Informational, "Good tempo for hypertrophy. 2-3 more reps."}
	recHypertrophyFast = Recommendation{Maintain, "Velocity optimal. Continue until form breaks down."}
	recAppropriate     = Recommendation{Informational, "Velocity is appropriate for your training goal."}
)

// Advise returns the load recommendation for a reading under the given goal.
// Rules are checked goal first, then by threshold; the first match wins.
//
// For strength, 0.4 <= v <= 0.5 matches no specific rule and gets the generic
// "appropriate" message.
func Advise(v float64, goal Goal) (Recommendation, error) {
	if err := checkVelocity(v); err != nil {
		return Recommendation{}, err
	}
	if !goal.Valid() {
		return Recommendation{}, fmt.Errorf("unknown training goal %q: %w", goal, ErrInvalidInput)
	}

	switch {
	case goal == GoalStrength && v < 0.4:
		return recStrengthTooSlow, nil
	case goal == GoalStrength && v > 0.5:
		return recStrengthFast, nil
	case goal == GoalPower && v < 0.7:
		return recPowerTooSlow, nil
	case goal == GoalPower:
		return recPowerInZone, nil
	case goal == GoalHypertrophy && v < 0.5:
		return recHypertrophySlow, nil
	case goal == GoalHypertrophy:
		return recHypertrophyFast, nil
	default:
		return recAppropriate, nil
	}
}

// Assessment is the full judgment for one reading.
type Assessment struct {
	Velocity       float64        `json:"velocity"`
	Goal           Goal           `json:"goal"`
	Zone           Zone           `json:"zone"`
	ZoneLabel      string         `json:"zone_label"`
	Recommendation Recommendation `json:"recommendation"`
}

// Assess classifies v and advises on it.
func Assess(v float64, goal Goal) (Assessment, error) {
	zone, err := Classify(v)
	if err != nil {
		return Assessment{}, err
	}
	rec, err := Advise(v, goal)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Velocity:       v,
		Goal:           goal,
		Zone:           zone,
		ZoneLabel:      zone.Label(),
		Recommendation: rec,
	}, nil
}
