package coach

import (
	"context"
	"encoding/json"
)

// Meal is the macro breakdown sent for nutrition advice.
type Meal struct {
	Calories *int     `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fats     *float64 `json:"fats,omitempty"`
}

// NutritionRequest asks for advice on one logged meal.
type NutritionRequest struct {
	UserID   int    `json:"userId"`
	MealType string `json:"mealType,omitempty"`
	Meal     Meal   `json:"meal"`
}

type nutritionResponse struct {
	Recommendation string `json:"recommendation"`
}

// NutritionAdvice returns the coach's recommendation for a meal. The result may be
// empty when the function has nothing to say.
func (c *Client) NutritionAdvice(ctx context.Context, req NutritionRequest) (string, error) {
	var resp nutritionResponse
	if err := c.Invoke(ctx, FuncNutrition, req, &resp); err != nil {
		return "", err
	}
	return resp.Recommendation, nil
}

// MobilityRequest describes one self-assessment.
type MobilityRequest struct {
	UserID        int    `json:"userId"`
	BodyPart      string `json:"bodyPart"`
	MobilityScore int    `json:"mobilityScore"`
	PainLevel     int    `json:"painLevel"`
}

type mobilityResponse struct {
	Recommendations []string `json:"recommendations"`
}

// MobilityDrills returns recommended drills for an assessment.
func (c *Client) MobilityDrills(ctx context.Context, req MobilityRequest) ([]string, error) {
	var resp mobilityResponse
	if err := c.Invoke(ctx, FuncMobility, req, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// SetFeedback is one set as sent for workout feedback.
type SetFeedback struct {
	Exercise     string   `json:"exercise"`
	SetNumber    int      `json:"setNumber"`
	Reps         *int     `json:"reps,omitempty"`
	WeightKg     *float64 `json:"weightKg,omitempty"`
	Velocity     *float64 `json:"velocity,omitempty"`
	VelocityZone string   `json:"velocityZone,omitempty"`
}

// WorkoutFeedbackRequest describes a completed workout.
type WorkoutFeedbackRequest struct {
	UserID          int           `json:"userId"`
	WorkoutID       string        `json:"workoutId"`
	Name            string        `json:"name"`
	DurationMinutes int           `json:"durationMinutes"`
	Sets            []SetFeedback `json:"sets"`
}

// WorkoutFeedback returns the coach's free-form feedback document.
func (c *Client) WorkoutFeedback(ctx context.Context, req WorkoutFeedbackRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.Invoke(ctx, FuncWorkoutFeedback, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
