package testhelpers

import (
	"testing"

	"github.com/pageza/dininghall/backend/internal/model"
	"gorm.io/gorm"
)

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

// Oatmeal is the reference breakfast item used across tests.
func Oatmeal() model.MenuItem {
	return model.MenuItem{
		Name:        "Oatmeal",
		ServingSize: "1 cup",
		Nutrition: model.Nutrition{
			Calories:     Int(150),
			TotalFat:     Float(3),
			Sodium:       Float(5),
			TotalCarb:    Float(27),
			DietaryFiber: Float(4),
			Sugars:       Float(1),
			Protein:      Float(5),
		},
	}
}

// DayWith builds a DayMenu with items under a single meal and category.
func DayWith(loc model.Location, date string, meal model.MealType, items ...model.MenuItem) model.DayMenu {
	return model.DayMenu{
		Location: loc,
		Date:     date,
		Meals: []model.Meal{{
			Type:       meal,
			Categories: []model.Category{{Name: "Entrees", Items: items}},
		}},
	}
}

// SeedFood inserts a food item and returns it.
func SeedFood(t *testing.T, db *gorm.DB, loc model.Location, date string, meal model.MealType, item model.MenuItem) model.FoodItem {
	t.Helper()
	row := model.NewFoodItem(model.FoodRecord{MenuItem: item, Location: loc, Date: date, MealType: meal})
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("failed to seed food item: %v", err)
	}
	return row
}

// SeedProfile inserts a valid profile.
func SeedProfile(t *testing.T, db *gorm.DB, email string) model.Profile {
	t.Helper()
	p := model.Profile{Email: email, FullName: "Test User", Age: 30, Sex: "M", HeightCM: 180, WeightKG: 80, ActivityLevel: model.Moderate}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return p
}
