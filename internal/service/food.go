package service

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/dininghall/backend/internal/model"
)

const (
	defaultFoodLimit = 50
	maxFoodLimit     = 200
)

// FoodFilter narrows food item listings. Zero fields match everything.
type FoodFilter struct {
	Location model.Location
	Date     string
	MealType model.MealType
	Limit    int
	Offset   int
}

func (f FoodFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.Date != "" {
		q = q.Where("menu_date = ?", f.Date)
	}
	if f.MealType != "" {
		q = q.Where("meal_type = ?", f.MealType)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultFoodLimit
	}
	limit = min(limit, maxFoodLimit)
	return q.Limit(limit).Offset(max(f.Offset, 0))
}

func (f FoodFilter) validate() error {
	if f.Location != "" && !f.Location.Valid() {
		return invalid("unknown location %q", f.Location)
	}
	if f.Date != "" {
		if _, err := model.ParseMenuDate(f.Date); err != nil {
			return invalid("bad date %q", f.Date)
		}
	}
	return nil
}

// MenuView is one location's stored menu for a date, grouped by meal.
type MenuView struct {
	Location model.Location                      `json:"location"`
	Date     string                              `json:"date"`
	Meals    map[model.MealType][]model.FoodItem `json:"meals"`
	Items    int                                 `json:"items"`
}

// FoodService reads persisted menu items. It never writes; the loader owns inserts.
type FoodService struct {
	db *gorm.DB
}

var _ IFoodService = (*FoodService)(nil)

func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// List returns items ordered by date, location, meal and name.
func (s *FoodService) List(ctx context.Context, filter FoodFilter) ([]model.FoodItem, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	filter.Date = normalizeDate(filter.Date)

	var items []model.FoodItem
	q := filter.apply(s.db.WithContext(ctx).Model(&model.FoodItem{}))
	if err := q.Order("menu_date DESC, location, meal_type, category, name").Find(&items).Error; err != nil {
		return nil, translate(err, "list foods")
	}
	return items, nil
}

func (s *FoodService) Get(ctx context.Context, id uint) (*model.FoodItem, error) {
	var item model.FoodItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err, "get food")
	}
	return &item, nil
}

// Search matches item names. On postgres the matches are ranked by the
// distance between name embeddings; elsewhere by name.
func (s *FoodService) Search(ctx context.Context, query string, filter FoodFilter) ([]model.FoodItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("search query is required")
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}
	filter.Date = normalizeDate(filter.Date)

	like := "%" + strings.ToLower(query) + "%"
	q := filter.apply(s.db.WithContext(ctx).Model(&model.FoodItem{}))
	if s.db.Dialector.Name() == "postgres" {
		vec := model.NameEmbedding(query)
		q = q.Where("name ILIKE ?", like).Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?, name", Vars: []interface{}{vec}},
		})
	} else {
		q = q.Where("LOWER(name) LIKE ?", like).Order("name, menu_date DESC")
	}

	var items []model.FoodItem
	if err := q.Find(&items).Error; err != nil {
		return nil, translate(err, "search foods")
	}
	return items, nil
}

// Menu groups a location's items for one date by meal. Breakfast, Lunch and
// Dinner are always present, possibly empty.
func (s *FoodService) Menu(ctx context.Context, loc model.Location, date string) (*MenuView, error) {
	if !loc.Valid() {
		return nil, invalid("unknown location %q", loc)
	}
	d, err := model.ParseMenuDate(date)
	if err != nil {
		return nil, invalid("bad date %q", date)
	}

	var items []model.FoodItem
	err = s.db.WithContext(ctx).
		Where("location = ? AND menu_date = ?", loc, d).
		Order("meal_type, category, name").
		Find(&items).Error
	if err != nil {
		return nil, translate(err, "menu")
	}

	view := &MenuView{Location: loc, Date: d, Meals: make(map[model.MealType][]model.FoodItem), Items: len(items)}
	for _, m := range model.TrackedMealTypes {
		view.Meals[m] = []model.FoodItem{}
	}
	for _, item := range items {
		view.Meals[item.MealType] = append(view.Meals[item.MealType], item)
	}
	return view, nil
}

// Dates lists the distinct stored dates for a location, newest first.
func (s *FoodService) Dates(ctx context.Context, loc model.Location) ([]string, error) {
	if !loc.Valid() {
		return nil, invalid("unknown location %q", loc)
	}
	var dates []string
	err := s.db.WithContext(ctx).Model(&model.FoodItem{}).
		Where("location = ?", loc).
		Distinct("menu_date").
		Order("menu_date DESC").
		Pluck("menu_date", &dates).Error
	if err != nil {
		return nil, translate(err, "menu dates")
	}
	return dates, nil
}

// normalizeDate accepts the source MM/DD/YYYY form as well as ISO dates.
// Callers validate first.
func normalizeDate(date string) string {
	if date == "" {
		return ""
	}
	d, err := model.ParseMenuDate(date)
	if err != nil {
		return date
	}
	return d
}
