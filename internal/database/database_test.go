package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "menus.db"),
	}

	db, err := Open(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, Migrate(db))
	require.NoError(t, HealthCheck(context.Background(), db))

	for _, table := range []string{"food_items", "profiles", "meal_entries", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	item := model.FoodItem{Name: "Oatmeal", Location: model.Berkshire, MenuDate: "2025-11-07", MealType: model.Breakfast}
	require.NoError(t, db.Create(&item).Error)
	assert.NotZero(t, item.ID)
	assert.Len(t, item.Embedding.Slice(), model.EmbeddingDims)

	dup := model.FoodItem{Name: "Oatmeal", Location: model.Berkshire, MenuDate: "2025-11-07", MealType: model.Breakfast}
	assert.Error(t, db.Create(&dup).Error, "natural key must be unique")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{RedisURL: "redis://" + mr.Addr()}
	client, err := NewRedisClient(cfg, logging.Discard())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewRedisClientUnreachable(t *testing.T) {
	cfg := &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"}
	_, err := NewRedisClient(cfg, logging.Discard())
	assert.Error(t, err)
}
