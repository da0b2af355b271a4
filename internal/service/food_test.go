package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/testhelpers"
)

func TestFoodServiceList(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	seedMenu(t, db)
	svc := NewFoodService(db)
	ctx := context.Background()

	all, err := svc.List(ctx, FoodFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, day2, all[0].MenuDate, "newest first")

	berkshire, err := svc.List(ctx, FoodFilter{Location: model.Berkshire, Date: "11/07/2025"})
	require.NoError(t, err)
	assert.Len(t, berkshire, 2)

	breakfast, err := svc.List(ctx, FoodFilter{MealType: model.Breakfast, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, breakfast, 1)

	_, err = svc.List(ctx, FoodFilter{Location: "Atlantis"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.List(ctx, FoodFilter{Date: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFoodServiceGet(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	rows := seedMenu(t, db)
	svc := NewFoodService(db)

	item, err := svc.Get(context.Background(), rows["oatmeal"].ID)
	require.NoError(t, err)
	assert.Equal(t, "Oatmeal", item.Name)
	assert.Equal(t, 150, *item.Calories)

	_, err = svc.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFoodServiceSearch(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	seedMenu(t, db)
	svc := NewFoodService(db)
	ctx := context.Background()

	items, err := svc.Search(ctx, "OAT", FoodFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Oat Bran Muffin", items[0].Name)

	items, err = svc.Search(ctx, "oat", FoodFilter{Location: model.Berkshire, Date: day1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oatmeal", items[0].Name)

	_, err = svc.Search(ctx, "  ", FoodFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFoodServiceMenu(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	seedMenu(t, db)
	svc := NewFoodService(db)

	view, err := svc.Menu(context.Background(), model.Berkshire, "11/07/2025")
	require.NoError(t, err)
	assert.Equal(t, day1, view.Date)
	assert.Equal(t, 2, view.Items)
	assert.Len(t, view.Meals[model.Breakfast], 1)
	assert.Empty(t, view.Meals[model.Lunch])
	assert.NotNil(t, view.Meals[model.Lunch])
	assert.Len(t, view.Meals[model.Dinner], 1)

	_, err = svc.Menu(context.Background(), "Atlantis", day1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFoodServiceDates(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	seedMenu(t, db)
	svc := NewFoodService(db)

	dates, err := svc.Dates(context.Background(), model.Berkshire)
	require.NoError(t, err)
	assert.Equal(t, []string{day2, day1}, dates)

	dates, err = svc.Dates(context.Background(), model.Hampshire)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestFoodServiceSearchPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	seedMenu(t, db)
	svc := NewFoodService(db)

	items, err := svc.Search(context.Background(), "oatmeal", FoodFilter{Location: model.Berkshire})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, "Oatmeal", it.Name)
	}
}
