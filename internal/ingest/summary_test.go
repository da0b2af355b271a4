package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/testhelpers"
)

func TestSummarize(t *testing.T) {
	snap := model.NewMenuSnapshot()
	require.NoError(t, snap.Add(testhelpers.DayWith(model.Berkshire, "2025-11-07", model.Dinner,
		testhelpers.Oatmeal(), model.MenuItem{Name: "Burger"})))
	require.NoError(t, snap.Add(testhelpers.DayWith(model.Berkshire, "2025-11-08", "Late Night",
		model.MenuItem{Name: "Pizza"})))
	require.NoError(t, snap.Add(testhelpers.DayWith(model.Worcester, "2025-11-07", model.Breakfast,
		testhelpers.Oatmeal())))
	require.NoError(t, snap.Add(model.DayMenu{Location: model.Hampshire, Date: "2025-11-07"}))

	s := Summarize(snap)
	assert.Equal(t, 4, s.Days)
	assert.Equal(t, 4, s.Items)
	assert.Equal(t, []model.MealType{model.Breakfast, model.Dinner, "Late Night"}, s.Meals())

	var buf bytes.Buffer
	s.Write(&buf, &LoadReport{Inserted: 3, SkippedDuplicate: 1})
	out := buf.String()
	assert.Contains(t, out, "days:  4\n")
	assert.Contains(t, out, "Late Night")
	assert.Contains(t, out, "inserted: 3  skipped_duplicate: 1  failed: 0")
}
