package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/nutrition"
)

// legacyItem is one item in the older scraper's export format.
type legacyItem struct {
	Name          string        `json:"name"`
	Nutrition     nutrition.Raw `json:"nutrition"`
	Allergens     string        `json:"allergens"`
	Diet          string        `json:"diet"`
	CarbonRating  string        `json:"carbon_rating"`
	Healthfulness string        `json:"healthfulness"`
	Ingredients   string        `json:"ingredients"`
}

type legacyDay struct {
	Date  string                             `json:"date"`
	Meals map[string]map[string][]legacyItem `json:"meals"`
}

// DecodeLegacy reads the older export format, a JSON object keyed by dining
// hall. Meals are ordered Breakfast, Lunch, Dinner then alphabetically, and
// categories alphabetically, since the export does not keep page order.
// Malformed nutrition values are reported through warn and stored as null.
func DecodeLegacy(r io.Reader, warn func(error)) (*model.MenuSnapshot, error) {
	var doc map[string][]legacyDay
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode legacy menus: %w", err)
	}

	snap := model.NewMenuSnapshot()
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		loc, err := model.ParseLocation(name)
		if err != nil {
			return nil, err
		}
		for _, d := range doc[name] {
			date, err := model.ParseMenuDate(d.Date)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", loc, err)
			}
			day := model.DayMenu{Location: loc, Date: date, Label: d.Date}
			for _, mealName := range sortedMeals(d.Meals) {
				meal := model.Meal{Type: model.NormalizeMealType(mealName)}
				for _, catName := range sortedKeys(d.Meals[mealName]) {
					cat := model.Category{Name: catName}
					for _, it := range d.Meals[mealName][catName] {
						cat.Items = append(cat.Items, it.toMenuItem(warn))
					}
					meal.Categories = append(meal.Categories, cat)
				}
				day.Meals = append(day.Meals, meal)
			}
			if err := snap.Add(day); err != nil {
				return nil, err
			}
		}
	}
	return snap, nil
}

func (it legacyItem) toMenuItem(warn func(error)) model.MenuItem {
	return model.MenuItem{
		Name:        it.Name,
		ServingSize: it.Nutrition.ServingSize,
		Nutrition: it.Nutrition.Parse(func(err error) {
			if warn != nil {
				warn(fmt.Errorf("%s: %w", it.Name, err))
			}
		}),
		Allergens:     it.Allergens,
		Diet:          it.Diet,
		Ingredients:   it.Ingredients,
		Healthfulness: it.Healthfulness,
		CarbonRating:  it.CarbonRating,
	}
}

func sortedMeals(meals map[string]map[string][]legacyItem) []string {
	rank := func(name string) int {
		switch model.NormalizeMealType(name) {
		case model.Breakfast:
			return 0
		case model.Lunch:
			return 1
		case model.Dinner:
			return 2
		}
		return 3
	}
	names := make([]string, 0, len(meals))
	for name := range meals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
