package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

type profileResponse struct {
	Profile model.Profile `json:"profile"`
}

type entryResponse struct {
	Entry model.MealEntry `json:"entry"`
}

func (a *testAPI) createProfile(t *testing.T) model.Profile {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/profiles", map[string]any{
		"email":          "Student@UMass.edu",
		"full_name":      "Alex Student",
		"age":            25,
		"sex":            "F",
		"height_cm":      165,
		"weight_kg":      60,
		"activity_level": "sedentary",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[profileResponse](t, w).Profile
}

func TestProfileRoutes(t *testing.T) {
	a := setupAPI(t, 20)
	p := a.createProfile(t)
	assert.Equal(t, "student@umass.edu", p.Email)
	assert.Equal(t, 1345.25, p.BMR)
	assert.Equal(t, 1614.3, p.TDEE)

	// emails are unique
	w := a.do(t, http.MethodPost, "/api/v1/profiles", map[string]any{
		"email": "student@umass.edu", "age": 20, "sex": "M", "height_cm": 180, "weight_kg": 80,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = a.do(t, http.MethodPut, "/api/v1/profiles/"+p.ID.String(), map[string]any{"weight_kg": 70, "activity_level": "light"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[profileResponse](t, w).Profile
	assert.Equal(t, 1445.25, updated.BMR)
	assert.Equal(t, 1987.22, updated.TDEE)

	w = a.do(t, http.MethodPut, "/api/v1/profiles/"+p.ID.String(), map[string]any{"sex": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Profiles []model.Profile `json:"profiles"`
	}](t, w).Profiles, 1)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, "/api/v1/profiles/"+p.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/profiles/"+p.ID.String(), nil).Code)
}

func TestCreateProfileValidation(t *testing.T) {
	a := setupAPI(t, 20)

	w := a.do(t, http.MethodPost, "/api/v1/profiles", map[string]any{"email": "not-an-email", "age": 20, "sex": "M", "height_cm": 180, "weight_kg": 80})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/profiles", map[string]any{"email": "a@b.edu", "age": 20, "sex": "M", "height_cm": 180, "weight_kg": 80, "activity_level": "couch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealEntryRoutes(t *testing.T) {
	a := setupAPI(t, 20)
	p := a.createProfile(t)
	base := "/api/v1/profiles/" + p.ID.String()

	w := a.do(t, http.MethodPost, base+"/entries", service.EntryInput{
		FoodItemID:   a.foods["oatmeal"].ID,
		MealCategory: "breakfast",
		Servings:     1.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[entryResponse](t, w).Entry
	assert.Equal(t, day1, entry.EntryDate)
	assert.Equal(t, model.Breakfast, entry.MealCategory)

	w = a.do(t, http.MethodPost, base+"/entries", service.EntryInput{FoodItemID: a.foods["burger"].ID, MealCategory: "Dinner"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, base+"/entries", service.EntryInput{FoodItemID: a.foods["burger"].ID, MealCategory: "Brunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(t, http.MethodPost, base+"/entries", service.EntryInput{FoodItemID: 9999, MealCategory: "Lunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, base+"/entries?date="+day1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Entries []model.MealEntry `json:"entries"`
	}](t, w).Entries, 2)

	w = a.do(t, http.MethodGet, base+"/totals?date="+day1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	totals := decode[struct {
		Totals    model.NutritionTotals `json:"totals"`
		TDEE      float64               `json:"tdee"`
		Remaining float64               `json:"remaining"`
	}](t, w)
	assert.Equal(t, 225.0, totals.Totals.Calories)
	assert.Equal(t, 27.5, totals.Totals.Protein)
	assert.InDelta(t, 1614.3-225, totals.Remaining, 0.001)

	w = a.do(t, http.MethodGet, base+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	days := decode[struct {
		Days []service.DayHistory `json:"days"`
	}](t, w).Days
	require.Len(t, days, service.HistoryDays)
	assert.Equal(t, "2025-11-01", days[0].Date)
	assert.Equal(t, day1, days[6].Date)
	assert.Len(t, days[6].Meals[model.Dinner], 1)

	path := fmt.Sprintf("%s/entries/%d", base, entry.ID)
	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, nil).Code)
}
