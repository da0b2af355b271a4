package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/pageza/dininghall/backend/internal/model"
)

var summedNutrients = []string{"calories", "total_fat", "sodium", "total_carb", "dietary_fiber", "sugars", "protein"}

// nutritionSelect builds the aggregate select list for food_items joined as f,
// weighting each nutrient by the factor expression. Unreported values count as zero.
func nutritionSelect(factor string) string {
	parts := make([]string, 0, len(summedNutrients)+2)
	for _, col := range summedNutrients {
		parts = append(parts, fmt.Sprintf("COALESCE(SUM(COALESCE(f.%[1]s, 0) * %[2]s), 0) AS %[1]s", col, factor))
	}
	parts = append(parts,
		"COUNT(f.id) AS items",
		"COALESCE(SUM(CASE WHEN f.id IS NOT NULL AND f.calories IS NULL THEN 1 ELSE 0 END), 0) AS unreported_calories",
	)
	return strings.Join(parts, ", ")
}

func roundTotals(t model.NutritionTotals) model.NutritionTotals {
	r := func(v float64) float64 { return math.Round(v*100) / 100 }
	t.Calories = r(t.Calories)
	t.TotalFat = r(t.TotalFat)
	t.Sodium = r(t.Sodium)
	t.TotalCarb = r(t.TotalCarb)
	t.DietaryFiber = r(t.DietaryFiber)
	t.Sugars = r(t.Sugars)
	t.Protein = r(t.Protein)
	return t
}
