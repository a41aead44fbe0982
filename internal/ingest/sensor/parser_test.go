package sensor

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `date,exercise,goal,weight_kg,set,rep,velocity
2026-03-02,Back Squat,strength,140,1,1,0.42
2026-03-02,Back Squat,strength,140,1,2,0.40
2026-03-02,Back Squat,strength,140,1,3,0.35
2026-03-02,Bench Press,power,60,1,2,0.81
2026-03-02,Bench Press,power,60,1,1,0.84

2026-02-27,Deadlift,hypertrophy,160,2,1,0.38
`

// TestParseGroupsSessions verifies rows are grouped into dated sessions, sets and
// reps, with sessions ordered oldest first and reps ordered by number.
func TestParseGroupsSessions(t *testing.T) {
	sessions, rows, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if rows != 6 {
		t.Errorf("rows = %d, want 6", rows)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	first := sessions[0]
	if !first.Date.Equal(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first session date = %v, want 2026-02-27", first.Date)
	}
	if len(first.Sets) != 1 || first.Sets[0].SetNumber != 2 || first.Sets[0].Exercise != "deadlift" {
		t.Errorf("first session sets = %+v", first.Sets)
	}

	second := sessions[1]
	if len(second.Sets) != 2 {
		t.Fatalf("second session sets = %d, want 2", len(second.Sets))
	}
	squat := second.Sets[0]
	if squat.Exercise != "squat" || squat.Goal != "strength" || squat.WeightKg != 140 {
		t.Errorf("squat set = %+v", squat)
	}
	if got := squat.Velocities(); len(got) != 3 || got[0] != 0.42 || got[2] != 0.35 {
		t.Errorf("squat velocities = %v", got)
	}
	bench := second.Sets[1]
	if bench.Exercise != "bench" {
		t.Errorf("bench exercise = %q", bench.Exercise)
	}
	if bench.Reps[0].Number != 1 || bench.Reps[0].Velocity != 0.84 {
		t.Errorf("bench reps not sorted by number: %+v", bench.Reps)
	}
}

// TestParseSemicolonDecimalComma verifies European exports with semicolons and
// decimal commas parse to the same values.
func TestParseSemicolonDecimalComma(t *testing.T) {
	csv := "date;exercise;goal;weight_kg;set;rep;velocity\n" +
		"2026-03-02;Kniebeuge;Strength;102,5;1;1;0,45\n"
	sessions, _, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	set := sessions[0].Sets[0]
	if set.Exercise != "squat" || set.WeightKg != 102.5 || set.Reps[0].Velocity != 0.45 {
		t.Errorf("set = %+v", set)
	}
	if set.Goal != "strength" {
		t.Errorf("goal = %q, want strength", set.Goal)
	}
}

// TestParseUnknownExerciseKept verifies exercises outside the alias table are kept
// under their lowercased name rather than rejected.
func TestParseUnknownExerciseKept(t *testing.T) {
	csv := "date,exercise,goal,weight_kg,set,rep,velocity\n2026-03-02,Hip Thrust,hypertrophy,100,1,1,0.5\n"
	sessions, _, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := sessions[0].Sets[0].Exercise; got != "hip thrust" {
		t.Errorf("exercise = %q, want hip thrust", got)
	}
}

// TestParseColumnOrderAndAliases verifies columns are located by header name.
func TestParseColumnOrderAndAliases(t *testing.T) {
	csv := "velocity,rep,set,weight,goal,exercise,date\n0.7,1,1,80,power,row,2026-03-02T07:30:00Z\n"
	sessions, _, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	set := sessions[0].Sets[0]
	if set.Exercise != "row" || set.WeightKg != 80 || set.Reps[0].Velocity != 0.7 {
		t.Errorf("set = %+v", set)
	}
	if sessions[0].Date.Hour() != 0 {
		t.Errorf("session date keeps time of day: %v", sessions[0].Date)
	}
}

// TestParseErrors verifies malformed exports fail with the offending line.
func TestParseErrors(t *testing.T) {
	const header = "date,exercise,goal,weight_kg,set,rep,velocity\n"
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"empty", "", "empty export"},
		{"missing column", "date,exercise,goal,weight_kg,set,rep\n", "velocity"},
		{"bad goal", header + "2026-03-02,squat,endurance,100,1,1,0.5\n", "line 2"},
		{"negative velocity", header + "2026-03-02,squat,strength,100,1,1,-0.5\n", "invalid input"},
		{"bad date", header + "02/03/2026,squat,strength,100,1,1,0.5\n", "cannot parse date"},
		{"zero set", header + "2026-03-02,squat,strength,100,0,1,0.5\n", "set"},
		{"duplicate rep", header + "2026-03-02,squat,strength,100,1,1,0.5\n2026-03-02,squat,strength,100,1,1,0.4\n", "duplicate rep"},
		{"weight change", header + "2026-03-02,squat,strength,100,1,1,0.5\n2026-03-02,squat,strength,110,1,2,0.4\n", "weight changes"},
		{"negative weight", header + "2026-03-02,squat,strength,-5,1,1,0.5\n", "negative"},
		{"infinite weight", header + "2026-03-02,squat,strength,Inf,1,1,0.5\n", "weight_kg"},
		{"signed infinite weight", header + "2026-03-02,squat,strength,+Inf,1,1,0.5\n", "weight_kg"},
		{"NaN weight", header + "2026-03-02,squat,strength,NaN,1,1,0.5\n", "weight_kg"},
		{"NaN weight multi rep", header + "2026-03-02,squat,strength,NaN,1,1,0.5\n2026-03-02,squat,strength,NaN,1,2,0.4\n", "weight_kg"},
		{"NaN velocity", header + "2026-03-02,squat,strength,100,1,1,NaN\n", "velocity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.csv))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
