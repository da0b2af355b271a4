package model

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// FoodItem is a persisted FoodRecord. Rows are never updated after insert.
type FoodItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:255;not null;uniqueIndex:idx_food_items_natural_key,priority:1" json:"name"`
	Location      Location        `gorm:"size:50;not null;uniqueIndex:idx_food_items_natural_key,priority:2" json:"location"`
	MenuDate      string          `gorm:"size:10;not null;uniqueIndex:idx_food_items_natural_key,priority:3;index" json:"date"`
	MealType      MealType        `gorm:"size:50;not null;uniqueIndex:idx_food_items_natural_key,priority:4" json:"meal_type"`
	Category      string          `gorm:"size:255" json:"category"`
	ServingSize   string          `gorm:"size:100" json:"serving_size"`
	Calories      *int            `json:"calories"`
	TotalFat      *float64        `json:"total_fat"`
	SaturatedFat  *float64        `json:"sat_fat"`
	TransFat      *float64        `json:"trans_fat"`
	Cholesterol   *float64        `json:"cholesterol"`
	Sodium        *float64        `json:"sodium"`
	TotalCarb     *float64        `json:"total_carb"`
	DietaryFiber  *float64        `json:"dietary_fiber"`
	Sugars        *float64        `json:"sugars"`
	Protein       *float64        `json:"protein"`
	Allergens     string          `gorm:"type:text" json:"allergens,omitempty"`
	Diet          string          `gorm:"type:text" json:"diet,omitempty"`
	Ingredients   string          `gorm:"type:text" json:"ingredients,omitempty"`
	Healthfulness string          `gorm:"size:50" json:"healthfulness,omitempty"`
	CarbonRating  string          `gorm:"size:50" json:"carbon_rating,omitempty"`
	Embedding     pgvector.Vector `gorm:"type:vector(16)" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NaturalKeyColumns are the columns of the food_items uniqueness constraint.
var NaturalKeyColumns = []string{"name", "location", "menu_date", "meal_type"}

// NewFoodItem converts a record into its row form.
func NewFoodItem(r FoodRecord) FoodItem {
	n := r.Nutrition
	return FoodItem{
		Name:          r.Name,
		Location:      r.Location,
		MenuDate:      r.Date,
		MealType:      r.MealType,
		Category:      r.Category,
		ServingSize:   r.ServingSize,
		Calories:      n.Calories,
		TotalFat:      n.TotalFat,
		SaturatedFat:  n.SaturatedFat,
		TransFat:      n.TransFat,
		Cholesterol:   n.Cholesterol,
		Sodium:        n.Sodium,
		TotalCarb:     n.TotalCarb,
		DietaryFiber:  n.DietaryFiber,
		Sugars:        n.Sugars,
		Protein:       n.Protein,
		Allergens:     r.Allergens,
		Diet:          r.Diet,
		Ingredients:   r.Ingredients,
		Healthfulness: r.Healthfulness,
		CarbonRating:  r.CarbonRating,
		Embedding:     NameEmbedding(r.Name),
	}
}

func (f FoodItem) Key() NaturalKey {
	return NaturalKey{Name: f.Name, Location: f.Location, Date: f.MenuDate, MealType: f.MealType}
}

// BeforeCreate fills the embedding; the vector column rejects empty values.
func (f *FoodItem) BeforeCreate(tx *gorm.DB) error {
	if len(f.Embedding.Slice()) == 0 {
		f.Embedding = NameEmbedding(f.Name)
	}
	return nil
}
