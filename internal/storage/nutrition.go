package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vbtcoach/internal/models"
)

// InsertNutritionLog stores one meal.
func (db *DB) InsertNutritionLog(ctx context.Context, row models.NutritionLogRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO nutrition_logs (id, user_id, meal_type, meal_time, calories, protein_grams,
		 carbs_grams, fats_grams, hydration_ml, workout_id, ai_recommendation)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		row.ID, row.UserID, row.MealType, row.MealTime, row.Calories, row.ProteinGrams,
		row.CarbsGrams, row.FatsGrams, row.HydrationMl, row.WorkoutID, row.AIRecommendation)
	if err != nil {
		return fmt.Errorf("inserting nutrition log: %w", err)
	}
	return nil
}

// QueryNutritionLogs retrieves meals eaten in a time range, newest first.
func (db *DB) QueryNutritionLogs(ctx context.Context, start, end time.Time, userID int) ([]models.NutritionLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, meal_type, meal_time, calories, protein_grams, carbs_grams, fats_grams,
		 hydration_ml, workout_id, ai_recommendation, created_at
		 FROM nutrition_logs
		 WHERE meal_time >= $1 AND meal_time < $2 AND user_id = $3
		 ORDER BY meal_time DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying nutrition logs: %w", err)
	}
	defer rows.Close()

	var result []models.NutritionLogRow
	for rows.Next() {
		var r models.NutritionLogRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.MealType, &r.MealTime, &r.Calories, &r.ProteinGrams,
			&r.CarbsGrams, &r.FatsGrams, &r.HydrationMl, &r.WorkoutID, &r.AIRecommendation,
			&r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning nutrition log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DailyNutrition is the sum of one day's logged meals.
type DailyNutrition struct {
	Date         string  `json:"date"`
	Meals        int     `json:"meals"`
	Calories     int     `json:"calories"`
	ProteinGrams float64 `json:"protein_grams"`
	CarbsGrams   float64 `json:"carbs_grams"`
	FatsGrams    float64 `json:"fats_grams"`
	HydrationMl  int     `json:"hydration_ml"`
}

// GetDailyNutrition totals the meals logged on day (in day's location).
func (db *DB) GetDailyNutrition(ctx context.Context, day time.Time, userID int) (*DailyNutrition, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	d := &DailyNutrition{Date: start.Format("2006-01-02")}
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int,
		        COALESCE(SUM(calories), 0)::int,
		        COALESCE(SUM(protein_grams), 0),
		        COALESCE(SUM(carbs_grams), 0),
		        COALESCE(SUM(fats_grams), 0),
		        COALESCE(SUM(hydration_ml), 0)::int
		 FROM nutrition_logs
		 WHERE meal_time >= $1 AND meal_time < $2 AND user_id = $3`,
		start, end, userID,
	).Scan(&d.Meals, &d.Calories, &d.ProteinGrams, &d.CarbsGrams, &d.FatsGrams, &d.HydrationMl)
	if err != nil {
		return nil, fmt.Errorf("querying daily nutrition: %w", err)
	}
	return d, nil
}
