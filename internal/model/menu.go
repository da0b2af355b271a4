package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage format for menu dates.
const DateLayout = "2006-01-02"

// MealType is the meal period an item was served under.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// TrackedMealTypes are the periods a meal entry may be logged under.
var TrackedMealTypes = []MealType{Breakfast, Lunch, Dinner}

// NormalizeMealType canonicalizes the three standard periods and keeps any
// other label (e.g. "Late Night") trimmed as published.
func NormalizeMealType(s string) MealType {
	s = strings.TrimSpace(s)
	for _, m := range TrackedMealTypes {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	return MealType(s)
}

// ParseTrackedMealType accepts only Breakfast, Lunch or Dinner.
func ParseTrackedMealType(s string) (MealType, error) {
	m := NormalizeMealType(s)
	for _, t := range TrackedMealTypes {
		if m == t {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid meal category %q", s)
}

// MenuDate is one option of the date selector on a menu page.
type MenuDate struct {
	Value string `json:"value"` // selector value, e.g. 11/07/2025
	Label string `json:"label"`
	Day   string `json:"day"` // YYYY-MM-DD
}

var dateLayouts = []string{
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	"Monday, January 2, 2006",
	"Monday, January 02, 2006",
	"Mon, Jan 2, 2006",
	"January 2, 2006",
	"Monday January 2, 2006",
}

// ParseMenuDate normalizes a source date string to YYYY-MM-DD.
func ParseMenuDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized menu date %q", s)
}

// NewMenuDate builds a MenuDate from a selector option, deriving Day from the
// value or, failing that, the label.
func NewMenuDate(value, label string) (MenuDate, error) {
	day, err := ParseMenuDate(value)
	if err != nil {
		if day, err = ParseMenuDate(label); err != nil {
			return MenuDate{}, err
		}
	}
	return MenuDate{Value: value, Label: label, Day: day}, nil
}

// Nutrition holds parsed values. Nil means not reported.
type Nutrition struct {
	Calories     *int     `json:"calories"`
	TotalFat     *float64 `json:"total_fat"`
	SaturatedFat *float64 `json:"sat_fat,omitempty"`
	TransFat     *float64 `json:"trans_fat,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	Sodium       *float64 `json:"sodium"`
	TotalCarb    *float64 `json:"total_carb"`
	DietaryFiber *float64 `json:"dietary_fiber"`
	Sugars       *float64 `json:"sugars"`
	Protein      *float64 `json:"protein"`
}

// MenuItem is an item as listed under a category.
type MenuItem struct {
	Name          string    `json:"name"`
	ServingSize   string    `json:"serving_size"`
	Nutrition     Nutrition `json:"nutrition"`
	Allergens     string    `json:"allergens,omitempty"`
	Diet          string    `json:"diet,omitempty"`
	Ingredients   string    `json:"ingredients,omitempty"`
	Healthfulness string    `json:"healthfulness,omitempty"`
	CarbonRating  string    `json:"carbon_rating,omitempty"`
}

type Category struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type Meal struct {
	Type       MealType   `json:"type"`
	Categories []Category `json:"categories"`
}

// DayMenu is the published menu for one location on one day. A DayMenu with
// no meals means nothing was served, not that the fetch failed.
type DayMenu struct {
	Location Location `json:"location"`
	Date     string   `json:"date"`
	Label    string   `json:"label,omitempty"`
	Meals    []Meal   `json:"meals"`
}

// ItemCount returns the number of items across all meals.
func (d DayMenu) ItemCount() int {
	n := 0
	for _, m := range d.Meals {
		for _, c := range m.Categories {
			n += len(c.Items)
		}
	}
	return n
}

// Records flattens the menu into FoodRecords in page order.
func (d DayMenu) Records() []FoodRecord {
	var out []FoodRecord
	for _, m := range d.Meals {
		for _, c := range m.Categories {
			for _, item := range c.Items {
				out = append(out, FoodRecord{
					MenuItem: item,
					Location: d.Location,
					Date:     d.Date,
					MealType: m.Type,
					Category: c.Name,
				})
			}
		}
	}
	return out
}

// FoodRecord is one item occurrence with the context it was observed under.
type FoodRecord struct {
	MenuItem
	Location Location `json:"location"`
	Date     string   `json:"date"`
	MealType MealType `json:"meal_type"`
	Category string   `json:"category"`
}

// NaturalKey identifies a record independent of any generated id.
type NaturalKey struct {
	Name     string
	Location Location
	Date     string
	MealType MealType
}

func (r FoodRecord) Key() NaturalKey {
	return NaturalKey{Name: r.Name, Location: r.Location, Date: r.Date, MealType: r.MealType}
}

// ErrDuplicateDay is returned when a snapshot would hold the same location and date twice.
var ErrDuplicateDay = errors.New("duplicate location/date in snapshot")

// MenuSnapshot is the result of one aggregation run.
type MenuSnapshot struct {
	ID        uuid.UUID              `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Locations map[Location][]DayMenu `json:"locations"`
}

func NewMenuSnapshot() *MenuSnapshot {
	return &MenuSnapshot{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Locations: make(map[Location][]DayMenu),
	}
}

// Add appends day under its location, rejecting a repeated (location, date).
func (s *MenuSnapshot) Add(day DayMenu) error {
	for _, existing := range s.Locations[day.Location] {
		if existing.Date == day.Date {
			return fmt.Errorf("%w: %s %s", ErrDuplicateDay, day.Location, day.Date)
		}
	}
	s.Locations[day.Location] = append(s.Locations[day.Location], day)
	return nil
}

// OrderedLocations returns the snapshot's locations in canonical order.
func (s *MenuSnapshot) OrderedLocations() []Location {
	locs := make([]Location, 0, len(s.Locations))
	for loc := range s.Locations {
		locs = append(locs, loc)
	}
	sort.SliceStable(locs, func(i, j int) bool {
		ri, rj := locs[i].Rank(), locs[j].Rank()
		if ri != rj {
			return ri < rj
		}
		return locs[i] < locs[j]
	})
	return locs
}

// Days returns every DayMenu in canonical location order.
func (s *MenuSnapshot) Days() []DayMenu {
	var out []DayMenu
	for _, loc := range s.OrderedLocations() {
		out = append(out, s.Locations[loc]...)
	}
	return out
}

// Records flattens the whole snapshot.
func (s *MenuSnapshot) Records() []FoodRecord {
	var out []FoodRecord
	for _, day := range s.Days() {
		out = append(out, day.Records()...)
	}
	return out
}
