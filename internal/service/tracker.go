package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/dininghall/backend/internal/model"
)

// HistoryDays is the length of the tracker history window, today included.
const HistoryDays = 7

// ProfileUpdate carries the fields a client may change. Nil means unchanged.
type ProfileUpdate struct {
	FullName      *string              `json:"full_name"`
	Age           *int                 `json:"age"`
	Sex           *string              `json:"sex"`
	HeightCM      *float64             `json:"height_cm"`
	WeightKG      *float64             `json:"weight_kg"`
	ActivityLevel *model.ActivityLevel `json:"activity_level"`
}

// EntryInput logs servings of a food item.
type EntryInput struct {
	FoodItemID   uint    `json:"food_item_id" binding:"required"`
	EntryDate    string  `json:"entry_date"`
	MealCategory string  `json:"meal_category" binding:"required"`
	Servings     float64 `json:"servings"`
}

// DayHistory is one day of logged entries with its totals.
type DayHistory struct {
	Date   string                               `json:"date"`
	Meals  map[model.MealType][]model.MealEntry `json:"meals"`
	Totals model.NutritionTotals                `json:"totals"`
}

// TrackerService manages profiles and their meal log.
type TrackerService struct {
	db  *gorm.DB
	now Clock
}

var _ ITrackerService = (*TrackerService)(nil)

func NewTrackerService(db *gorm.DB) *TrackerService {
	return &TrackerService{db: db, now: time.Now}
}

// WithClock pins the time used for defaults and history windows.
func (s *TrackerService) WithClock(now Clock) *TrackerService {
	s.now = now
	return s
}

func (s *TrackerService) today() string {
	return s.now().Format(model.DateLayout)
}

// CreateProfile stores a profile; BMR and TDEE are derived on save.
func (s *TrackerService) CreateProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	p.ID = uuid.Nil
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, profileError(err, "create profile")
	}
	return p, nil
}

func (s *TrackerService) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get profile")
	}
	return &p, nil
}

func (s *TrackerService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := s.db.WithContext(ctx).Order("created_at").Find(&profiles).Error; err != nil {
		return nil, translate(err, "list profiles")
	}
	return profiles, nil
}

// UpdateProfile applies the set fields and recomputes BMR and TDEE.
func (s *TrackerService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*model.Profile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		p.FullName = *in.FullName
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Sex != nil {
		p.Sex = *in.Sex
	}
	if in.HeightCM != nil {
		p.HeightCM = *in.HeightCM
	}
	if in.WeightKG != nil {
		p.WeightKG = *in.WeightKG
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = *in.ActivityLevel
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, profileError(err, "update profile")
	}
	return p, nil
}

// DeleteProfile removes the profile; its meal entries cascade.
func (s *TrackerService) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Profile{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete profile")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete profile")
	}
	return nil
}

func profileError(err error, what string) error {
	if errors.Is(err, model.ErrInvalidProfile) {
		return invalid("%v", err)
	}
	return translate(err, what)
}

// AddEntry logs a food item. The date defaults to today and servings to one.
func (s *TrackerService) AddEntry(ctx context.Context, profileID uuid.UUID, in EntryInput) (*model.MealEntry, error) {
	meal, err := model.ParseTrackedMealType(in.MealCategory)
	if err != nil {
		return nil, invalid("%v", err)
	}
	date := s.today()
	if in.EntryDate != "" {
		if date, err = model.ParseMenuDate(in.EntryDate); err != nil {
			return nil, invalid("bad entry date %q", in.EntryDate)
		}
	}
	servings := in.Servings
	if servings == 0 {
		servings = 1
	}
	if servings < 0 {
		return nil, invalid("servings must be positive")
	}

	if _, err := s.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	var food model.FoodItem
	if err := s.db.WithContext(ctx).First(&food, in.FoodItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("unknown food item %d", in.FoodItemID)
		}
		return nil, translate(err, "add entry")
	}

	entry := &model.MealEntry{
		ProfileID:    profileID,
		FoodItemID:   food.ID,
		EntryDate:    date,
		MealCategory: meal,
		Servings:     servings,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, translate(err, "add entry")
	}
	entry.FoodItem = &food
	return entry, nil
}

// ListEntries returns a profile's entries for a date, with their food items.
func (s *TrackerService) ListEntries(ctx context.Context, profileID uuid.UUID, date string) ([]model.MealEntry, error) {
	day, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}
	var entries []model.MealEntry
	err = s.db.WithContext(ctx).Preload("FoodItem").
		Where("profile_id = ? AND entry_date = ?", profileID, day).
		Order("meal_category, id").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "list entries")
	}
	return entries, nil
}

func (s *TrackerService) DeleteEntry(ctx context.Context, profileID uuid.UUID, entryID uint) error {
	res := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&model.MealEntry{}, entryID)
	if res.Error != nil {
		return translate(res.Error, "delete entry")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete entry")
	}
	return nil
}

// DailyTotals sums nutrient times servings over a profile's entries for a date.
func (s *TrackerService) DailyTotals(ctx context.Context, profileID uuid.UUID, date string) (model.NutritionTotals, error) {
	var totals model.NutritionTotals
	day, err := s.dateOrToday(date)
	if err != nil {
		return totals, err
	}
	err = s.entryTotals(ctx).
		Where("me.profile_id = ? AND me.entry_date = ?", profileID, day).
		Scan(&totals).Error
	if err != nil {
		return totals, translate(err, "daily totals")
	}
	return roundTotals(totals), nil
}

type dayTotalsRow struct {
	EntryDate string
	model.NutritionTotals
}

// History returns the last HistoryDays days, oldest first, including empty days.
func (s *TrackerService) History(ctx context.Context, profileID uuid.UUID) ([]DayHistory, error) {
	if _, err := s.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	end := s.now()
	start := end.AddDate(0, 0, -(HistoryDays - 1))
	from, to := start.Format(model.DateLayout), end.Format(model.DateLayout)

	var entries []model.MealEntry
	err := s.db.WithContext(ctx).Preload("FoodItem").
		Where("profile_id = ? AND entry_date BETWEEN ? AND ?", profileID, from, to).
		Order("entry_date, meal_category, id").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "history")
	}

	var rows []dayTotalsRow
	err = s.entryTotals(ctx).
		Select("me.entry_date AS entry_date, "+nutritionSelect("me.servings")).
		Where("me.profile_id = ? AND me.entry_date BETWEEN ? AND ?", profileID, from, to).
		Group("me.entry_date").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "history totals")
	}
	totals := make(map[string]model.NutritionTotals, len(rows))
	for _, r := range rows {
		totals[r.EntryDate] = roundTotals(r.NutritionTotals)
	}

	days := make([]DayHistory, 0, HistoryDays)
	index := make(map[string]int, HistoryDays)
	for i := 0; i < HistoryDays; i++ {
		d := start.AddDate(0, 0, i).Format(model.DateLayout)
		meals := make(map[model.MealType][]model.MealEntry, len(model.TrackedMealTypes))
		for _, m := range model.TrackedMealTypes {
			meals[m] = []model.MealEntry{}
		}
		index[d] = len(days)
		days = append(days, DayHistory{Date: d, Meals: meals, Totals: totals[d]})
	}
	for _, e := range entries {
		i, ok := index[e.EntryDate]
		if !ok {
			continue
		}
		days[i].Meals[e.MealCategory] = append(days[i].Meals[e.MealCategory], e)
	}
	return days, nil
}

func (s *TrackerService) entryTotals(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("meal_entries AS me").
		Select(nutritionSelect("me.servings")).
		Joins("JOIN food_items f ON f.id = me.food_item_id")
}

func (s *TrackerService) dateOrToday(date string) (string, error) {
	if date == "" {
		return s.today(), nil
	}
	d, err := model.ParseMenuDate(date)
	if err != nil {
		return "", invalid("bad date %q", date)
	}
	return d, nil
}
