package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/testhelpers"
)

const (
	day1 = "2025-11-07"
	day2 = "2025-11-08"
)

var fixedNow = time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)

func burger() model.MenuItem {
	return model.MenuItem{Name: "Burger", Nutrition: model.Nutrition{Protein: testhelpers.Float(20), TotalFat: testhelpers.Float(25)}}
}

// seedMenu stores a small two-day menu and returns the rows by name and date.
func seedMenu(t *testing.T, db *gorm.DB) map[string]model.FoodItem {
	t.Helper()
	rows := map[string]model.FoodItem{
		"oatmeal":    testhelpers.SeedFood(t, db, model.Berkshire, day1, model.Breakfast, testhelpers.Oatmeal()),
		"burger":     testhelpers.SeedFood(t, db, model.Berkshire, day1, model.Dinner, burger()),
		"oatmeal-d2": testhelpers.SeedFood(t, db, model.Berkshire, day2, model.Breakfast, testhelpers.Oatmeal()),
		"worcester":  testhelpers.SeedFood(t, db, model.Worcester, day1, model.Lunch, model.MenuItem{Name: "Oat Bran Muffin"}),
	}
	return rows
}
