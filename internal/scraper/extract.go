package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/nutrition"
)

// FetchFailure reports a (location, date) pair that could not be fetched.
type FetchFailure struct {
	Location model.Location
	Date     string
	Attempts int
	Err      error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %s %s failed after %d attempt(s): %v", f.Location, f.Date, f.Attempts, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }

// Extractor turns one rendered menu page into a DayMenu.
type Extractor struct {
	renderer Renderer
	log      *slog.Logger
}

func NewExtractor(renderer Renderer, log *slog.Logger) *Extractor {
	return &Extractor{renderer: renderer, log: logging.Component(log, "extractor")}
}

// Extract renders the page for loc on date and parses it. A page with no
// published menu yields an empty DayMenu, not an error.
func (e *Extractor) Extract(ctx context.Context, loc model.Location, date model.MenuDate) (model.DayMenu, error) {
	html, err := e.renderer.Render(ctx, loc.BaseURL(), date.Value)
	if err != nil {
		return model.DayMenu{}, &FetchFailure{Location: loc, Date: date.Day, Attempts: 1, Err: err}
	}

	day, err := ParseMenu(strings.NewReader(html), loc, date, func(err error) {
		e.log.Warn("malformed nutrition value", "location", loc, "date", date.Day, "error", err)
	})
	if err != nil {
		return model.DayMenu{}, &FetchFailure{Location: loc, Date: date.Day, Attempts: 1, Err: err}
	}
	return day, nil
}

// ParseMenu extracts meals, categories and items from a menu page. Each meal
// lives in a div whose id contains "_menu"; within its #content_text, items
// are the li.lightbox-nutrition siblings following each category heading.
func ParseMenu(r io.Reader, loc model.Location, date model.MenuDate, warn func(error)) (model.DayMenu, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.DayMenu{}, fmt.Errorf("parse menu html: %w", err)
	}

	day := model.DayMenu{Location: loc, Date: date.Day, Label: date.Label}
	mealIndex := make(map[model.MealType]int)

	doc.Find("div[id*='_menu']").Each(func(_ int, mealDiv *goquery.Selection) {
		content := mealDiv.Find("div#content_text")
		mealType := mealName(mealDiv)
		// unrelated *_menu containers (navigation) carry no content block
		if content.Length() == 0 || mealType == "" {
			return
		}

		idx, ok := mealIndex[mealType]
		if !ok {
			idx = len(day.Meals)
			mealIndex[mealType] = idx
			day.Meals = append(day.Meals, model.Meal{Type: mealType})
		}

		content.Find("h2.menu_category_name").Each(func(_ int, heading *goquery.Selection) {
			cat := model.Category{Name: strings.TrimSpace(heading.Text())}
			heading.NextUntil("h2.menu_category_name").Filter("li.lightbox-nutrition").Each(func(_ int, li *goquery.Selection) {
				link := li.Find("a").First()
				if link.Length() == 0 {
					return
				}
				if item, ok := parseItem(link, warn); ok {
					cat.Items = append(cat.Items, item)
				}
			})
			day.Meals[idx].Categories = append(day.Meals[idx].Categories, cat)
		})
	})
	return day, nil
}

func mealName(mealDiv *goquery.Selection) model.MealType {
	header := mealDiv.Find("h2").Not(".menu_category_name").First()
	name := strings.TrimSpace(header.Text())
	if name == "" {
		id, _ := mealDiv.Attr("id")
		name = strings.ReplaceAll(id, "_menu", "")
	}
	return model.NormalizeMealType(name)
}

func parseItem(link *goquery.Selection, warn func(error)) (model.MenuItem, bool) {
	name := strings.TrimSpace(link.Text())
	if name == "" {
		return model.MenuItem{}, false
	}
	attr := func(key string) string {
		v, _ := link.Attr("data-" + key)
		return strings.TrimSpace(v)
	}

	raw := nutrition.Raw{
		Calories:        attr("calories"),
		CaloriesFromFat: attr("calories-from-fat"),
		TotalFat:        attr("total-fat"),
		SatFat:          attr("sat-fat"),
		TransFat:        attr("trans-fat"),
		Cholesterol:     attr("cholesterol"),
		Sodium:          attr("sodium"),
		TotalCarb:       attr("total-carb"),
		DietaryFiber:    attr("dietary-fiber"),
		Sugars:          attr("sugars"),
		Protein:         attr("protein"),
		ServingSize:     attr("serving-size"),
	}

	return model.MenuItem{
		Name:        name,
		ServingSize: raw.ServingSize,
		Nutrition: raw.Parse(func(err error) {
			if warn != nil {
				warn(fmt.Errorf("%s: %w", name, err))
			}
		}),
		Allergens:     attr("allergens"),
		Diet:          attr("clean-diet-str"),
		Ingredients:   attr("ingredient-list"),
		Healthfulness: attr("healthfulness"),
		CarbonRating:  attr("carbon-list"),
	}, true
}
