package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/dininghall/backend/internal/model"
)

// IFoodService defines read access to persisted menu items
type IFoodService interface {
	List(ctx context.Context, filter FoodFilter) ([]model.FoodItem, error)
	Get(ctx context.Context, id uint) (*model.FoodItem, error)
	Search(ctx context.Context, query string, filter FoodFilter) ([]model.FoodItem, error)
	Menu(ctx context.Context, loc model.Location, date string) (*MenuView, error)
	Dates(ctx context.Context, loc model.Location) ([]string, error)
}

// IOrderService defines order operations
type IOrderService interface {
	List(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetails, error)
	Create(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	Confirm(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NutritionTotals(ctx context.Context, id uuid.UUID) (model.NutritionTotals, error)
}

// ITrackerService defines calorie tracker operations
type ITrackerService interface {
	CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*model.Profile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	AddEntry(ctx context.Context, profileID uuid.UUID, in EntryInput) (*model.MealEntry, error)
	ListEntries(ctx context.Context, profileID uuid.UUID, date string) ([]model.MealEntry, error)
	DeleteEntry(ctx context.Context, profileID uuid.UUID, entryID uint) error
	DailyTotals(ctx context.Context, profileID uuid.UUID, date string) (model.NutritionTotals, error)
	History(ctx context.Context, profileID uuid.UUID) ([]DayHistory, error)
}

// IIngestService defines the scrape and load pipeline
type IIngestService interface {
	Scrape(ctx context.Context, locations []model.Location) (*ScrapeResult, error)
	Load(ctx context.Context, key string) (*LoadResult, error)
	LoadLegacy(ctx context.Context, r io.Reader) (*LoadResult, error)
}

// IChatService defines the tool-calling assistant
type IChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*ChatReply, error)
	History(ctx context.Context, sessionID string) ([]Content, error)
	Reset(ctx context.Context, sessionID string) error
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time
