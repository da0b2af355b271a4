package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
)

var nov7 = model.MenuDate{Value: "11/07/2025", Label: "Fri November 07, 2025", Day: "2025-11-07"}

func TestParseMenu(t *testing.T) {
	page := menuPage(
		meal{id: "breakfast", title: "Breakfast", categories: []category{
			{name: "Hot Cereal", items: []item{oatmealItem()}},
			{name: "Bakery", items: []item{
				{name: "Blueberry Muffin", attrs: map[string]string{"calories": "410", "protein": "—", "allergens": "Wheat, Eggs", "clean-diet-str": "Vegetarian", "healthfulness": "38", "carbon-list": "B"}},
				{name: "Mystery Scone"},
			}},
		}},
		meal{id: "dinner", title: "dinner", categories: []category{
			{name: "Grill", items: []item{{name: "Burger", attrs: map[string]string{"calories": "540", "sodium": "lots"}}}},
		}},
	)

	var warnings []error
	day, err := ParseMenu(strings.NewReader(page), model.Worcester, nov7, func(err error) { warnings = append(warnings, err) })
	require.NoError(t, err)

	assert.Equal(t, model.Worcester, day.Location)
	assert.Equal(t, "2025-11-07", day.Date)
	require.Len(t, day.Meals, 2, "navigation container is not a meal")
	assert.Equal(t, model.Breakfast, day.Meals[0].Type)
	assert.Equal(t, model.Dinner, day.Meals[1].Type)

	breakfast := day.Meals[0]
	require.Len(t, breakfast.Categories, 2)
	assert.Equal(t, "Hot Cereal", breakfast.Categories[0].Name)
	require.Len(t, breakfast.Categories[0].Items, 1, "items stop at the next category")

	oatmeal := breakfast.Categories[0].Items[0]
	assert.Equal(t, "1 cup", oatmeal.ServingSize)
	assert.Equal(t, 150, *oatmeal.Nutrition.Calories)
	assert.Equal(t, 27.0, *oatmeal.Nutrition.TotalCarb)
	assert.Equal(t, 5.0, *oatmeal.Nutrition.Sodium)

	muffin := breakfast.Categories[1].Items[0]
	assert.Nil(t, muffin.Nutrition.Protein)
	assert.Equal(t, "Wheat, Eggs", muffin.Allergens)
	assert.Equal(t, "Vegetarian", muffin.Diet)
	assert.Equal(t, "B", muffin.CarbonRating)

	scone := breakfast.Categories[1].Items[1]
	assert.Equal(t, "Mystery Scone", scone.Name, "items without nutrition are kept")
	assert.Nil(t, scone.Nutrition.Calories)

	burger := day.Meals[1].Categories[0].Items[0]
	assert.Nil(t, burger.Nutrition.Sodium)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "Burger")
}

func TestParseMenuNoPublishedMenu(t *testing.T) {
	day, err := ParseMenu(strings.NewReader(menuPage()), model.Franklin, nov7, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Franklin, day.Location)
	assert.Equal(t, "2025-11-07", day.Date)
	assert.Empty(t, day.Meals)
	assert.Zero(t, day.ItemCount())
}

func TestExtractFetchFailure(t *testing.T) {
	r := newFakeRenderer()
	ex := NewExtractor(r, logging.Discard())

	_, err := ex.Extract(context.Background(), model.Hampshire, nov7)
	require.Error(t, err)

	var ff *FetchFailure
	require.ErrorAs(t, err, &ff)
	assert.Equal(t, model.Hampshire, ff.Location)
	assert.Equal(t, "2025-11-07", ff.Date)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestMenuDates(t *testing.T) {
	dates, err := menuDates([]selectOption{
		{Value: "11/07/2025", Label: "Fri November 07, 2025"},
		{Value: "", Label: "Select a date"},
		{Value: "11/08/2025", Label: "Sat November 08, 2025"},
		{Value: "11/07/2025", Label: "again"},
	})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2025-11-07", dates[0].Day)
	assert.Equal(t, "11/08/2025", dates[1].Value)
}
