package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/testhelpers"
)

func newTracker(t *testing.T) (*TrackerService, map[string]model.FoodItem) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	rows := seedMenu(t, db)
	return NewTrackerService(db).WithClock(func() time.Time { return fixedNow }), rows
}

func newProfile() *model.Profile {
	return &model.Profile{Email: " Alex@Example.com ", Age: 25, Sex: "f", HeightCM: 165, WeightKG: 60, ActivityLevel: model.Sedentary}
}

func TestTrackerProfiles(t *testing.T) {
	svc, _ := newTracker(t)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, newProfile())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "alex@example.com", p.Email)
	assert.Equal(t, "F", p.Sex)
	assert.Equal(t, 1345.25, p.BMR)
	assert.Equal(t, 1614.3, p.TDEE)

	_, err = svc.CreateProfile(ctx, newProfile())
	assert.ErrorIs(t, err, ErrConflict)

	bad := newProfile()
	bad.Email = "other@example.com"
	bad.Sex = "x"
	_, err = svc.CreateProfile(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	weight := 70.0
	level := model.Light
	updated, err := svc.UpdateProfile(ctx, p.ID, ProfileUpdate{WeightKG: &weight, ActivityLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, 1445.25, updated.BMR)
	assert.Equal(t, 1987.22, updated.TDEE)

	zero := 0
	_, err = svc.UpdateProfile(ctx, p.ID, ProfileUpdate{Age: &zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrackerEntriesAndTotals(t *testing.T) {
	svc, rows := newTracker(t)
	ctx := context.Background()
	p, err := svc.CreateProfile(ctx, newProfile())
	require.NoError(t, err)

	entry, err := svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: rows["oatmeal"].ID, MealCategory: "breakfast", Servings: 1.5})
	require.NoError(t, err)
	assert.Equal(t, day1, entry.EntryDate, "defaults to today")
	assert.Equal(t, model.Breakfast, entry.MealCategory)

	_, err = svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: rows["burger"].ID, MealCategory: "Dinner"})
	require.NoError(t, err)

	_, err = svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: rows["oatmeal"].ID, MealCategory: "Brunch"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: 9999, MealCategory: "Lunch"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddEntry(ctx, uuid.New(), EntryInput{FoodItemID: rows["oatmeal"].ID, MealCategory: "Lunch"})
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := svc.ListEntries(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotNil(t, entries[0].FoodItem)

	totals, err := svc.DailyTotals(ctx, p.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, 225.0, totals.Calories)
	assert.Equal(t, 27.5, totals.Protein)
	assert.Equal(t, 40.5, totals.TotalCarb)
	assert.Equal(t, 2, totals.Items)
	assert.Equal(t, 1, totals.UnreportedCalories)

	require.NoError(t, svc.DeleteEntry(ctx, p.ID, entry.ID))
	assert.ErrorIs(t, svc.DeleteEntry(ctx, p.ID, entry.ID), ErrNotFound)

	totals, err = svc.DailyTotals(ctx, p.ID, "11/07/2025")
	require.NoError(t, err)
	assert.Zero(t, totals.Calories)
	assert.Equal(t, 20.0, totals.Protein)
}

func TestTrackerHistory(t *testing.T) {
	svc, rows := newTracker(t)
	ctx := context.Background()
	p, err := svc.CreateProfile(ctx, newProfile())
	require.NoError(t, err)

	for _, date := range []string{"2025-11-07", "2025-11-04", "2025-10-31"} {
		_, err := svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: rows["oatmeal"].ID, MealCategory: "Breakfast", EntryDate: date})
		require.NoError(t, err)
	}

	days, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, days, HistoryDays)
	assert.Equal(t, "2025-11-01", days[0].Date)
	assert.Equal(t, "2025-11-07", days[6].Date)

	assert.Len(t, days[3].Meals[model.Breakfast], 1)
	assert.Equal(t, 150.0, days[3].Totals.Calories)
	assert.Len(t, days[6].Meals[model.Breakfast], 1)
	assert.Empty(t, days[0].Meals[model.Breakfast])
	assert.NotNil(t, days[0].Meals[model.Dinner])
	assert.Zero(t, days[0].Totals.Items)
}

func TestTrackerDeleteProfileCascades(t *testing.T) {
	svc, rows := newTracker(t)
	ctx := context.Background()
	p, err := svc.CreateProfile(ctx, newProfile())
	require.NoError(t, err)
	_, err = svc.AddEntry(ctx, p.ID, EntryInput{FoodItemID: rows["oatmeal"].ID, MealCategory: "Breakfast"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProfile(ctx, p.ID))

	var n int64
	require.NoError(t, svc.db.Model(&model.MealEntry{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.ErrorIs(t, svc.DeleteProfile(ctx, p.ID), ErrNotFound)
}
