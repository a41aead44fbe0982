package models

import "strings"

// Canonical barbell lifts tracked with a velocity sensor.
const (
	ExerciseSquat    = "squat"
	ExerciseBench    = "bench"
	ExerciseDeadlift = "deadlift"
	ExerciseRow      = "row"
)

// exerciseMap maps lowercased exercise names, as typed by users or exported by
// sensor apps, to their canonical lift. Covers English and German spellings.
var exerciseMap = map[string]string{
	// English
	"squat":          ExerciseSquat,
	"back squat":     ExerciseSquat,
	"barbell squat":  ExerciseSquat,
	"high bar squat": ExerciseSquat,
	"low bar squat":  ExerciseSquat,
	"bench":          ExerciseBench,
	"bench press":    ExerciseBench,
	"barbell bench":  ExerciseBench,
	"flat bench":     ExerciseBench,
	"deadlift":       ExerciseDeadlift,
	"sumo deadlift":  ExerciseDeadlift,
	"row":            ExerciseRow,
	"barbell row":    ExerciseRow,
	"bent over row":  ExerciseRow,
	"pendlay row":    ExerciseRow,

	// German
	"kniebeuge":        ExerciseSquat,
	"kniebeugen":       ExerciseSquat,
	"bankdrücken":      ExerciseBench,
	"bankdruecken":     ExerciseBench,
	"kreuzheben":       ExerciseDeadlift,
	"langhantelrudern": ExerciseRow,
	"rudern":           ExerciseRow,
}

// NormalizeExercise maps a possibly-localized exercise name to its canonical
// lift. Returns the canonical name and true if recognized, or the trimmed
// original and false if unknown.
func NormalizeExercise(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := exerciseMap[strings.ToLower(trimmed)]; ok {
		return canonical, true
	}
	return trimmed, false
}

// Meal types accepted by the nutrition log.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack", "post-workout"}

// ValidMealType reports whether t is one of MealTypes.
func ValidMealType(t string) bool {
	for _, m := range MealTypes {
		if m == t {
			return true
		}
	}
	return false
}
