package nutrition

import (
	"fmt"

	"github.com/pageza/dininghall/backend/internal/model"
)

// Raw is an item's nutrition block exactly as published.
type Raw struct {
	Calories        string `json:"calories"`
	CaloriesFromFat string `json:"calories_from_fat,omitempty"`
	TotalFat        string `json:"total_fat"`
	SatFat          string `json:"sat_fat,omitempty"`
	TransFat        string `json:"trans_fat,omitempty"`
	Cholesterol     string `json:"cholesterol,omitempty"`
	Sodium          string `json:"sodium"`
	TotalCarb       string `json:"total_carb"`
	DietaryFiber    string `json:"dietary_fiber"`
	Sugars          string `json:"sugars"`
	Protein         string `json:"protein"`
	ServingSize     string `json:"serving_size"`
}

// FieldError names the nutrient a malformed value belonged to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// Parse converts every field. Malformed values become nil and are reported
// through warn, so one bad field never drops the item.
func (r Raw) Parse(warn func(error)) model.Nutrition {
	field := func(name, raw, unit string) *float64 {
		return ParseLenient(raw, unit, func(err error) {
			if warn != nil {
				warn(&FieldError{Field: name, Err: err})
			}
		})
	}

	var n model.Nutrition
	cal, err := ParseCalories(r.Calories)
	if err != nil && warn != nil {
		warn(&FieldError{Field: "calories", Err: err})
	}
	n.Calories = cal
	n.TotalFat = field("total_fat", r.TotalFat, Grams)
	n.SaturatedFat = field("sat_fat", r.SatFat, Grams)
	n.TransFat = field("trans_fat", r.TransFat, Grams)
	n.Cholesterol = field("cholesterol", r.Cholesterol, Milligrams)
	n.Sodium = field("sodium", r.Sodium, Milligrams)
	n.TotalCarb = field("total_carb", r.TotalCarb, Grams)
	n.DietaryFiber = field("dietary_fiber", r.DietaryFiber, Grams)
	n.Sugars = field("sugars", r.Sugars, Grams)
	n.Protein = field("protein", r.Protein, Grams)
	return n
}
