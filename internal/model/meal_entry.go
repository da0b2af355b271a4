package model

import (
	"time"

	"github.com/google/uuid"
)

// MealEntry logs servings of a food item against a profile for one day.
type MealEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uuid.UUID `gorm:"type:uuid;not null;index:idx_meal_entries_profile_date,priority:1" json:"profile_id"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FoodItemID   uint      `gorm:"not null;index" json:"food_item_id"`
	FoodItem     *FoodItem `gorm:"constraint:OnDelete:CASCADE" json:"food_item,omitempty"`
	EntryDate    string    `gorm:"size:10;not null;index:idx_meal_entries_profile_date,priority:2" json:"entry_date"`
	MealCategory MealType  `gorm:"size:20;not null" json:"meal_category"`
	Servings     float64   `gorm:"not null;default:1" json:"servings"`
	CreatedAt    time.Time `json:"created_at"`
}

// NutritionTotals sums nutrients over a set of items. Unreported values count as zero.
type NutritionTotals struct {
	Calories           float64 `json:"calories"`
	TotalFat           float64 `json:"total_fat"`
	Sodium             float64 `json:"sodium"`
	TotalCarb          float64 `json:"total_carb"`
	DietaryFiber       float64 `json:"dietary_fiber"`
	Sugars             float64 `json:"sugars"`
	Protein            float64 `json:"protein"`
	Items              int     `json:"items"`
	UnreportedCalories int     `json:"unreported_calories"`
}
