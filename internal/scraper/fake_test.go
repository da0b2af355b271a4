package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pageza/dininghall/backend/internal/model"
)

var errUnavailable = errors.New("page unavailable")

// fakeRenderer serves canned pages and fails a configurable number of times.
type fakeRenderer struct {
	mu        sync.Mutex
	dates     map[string][]model.MenuDate
	dateErr   map[string]error
	pages     map[string]string // baseURL|value
	failures  map[string]int    // remaining failures per baseURL|value
	calls     []string
	inFlight  int
	maxFlight int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		dates:    make(map[string][]model.MenuDate),
		dateErr:  make(map[string]error),
		pages:    make(map[string]string),
		failures: make(map[string]int),
	}
}

func (f *fakeRenderer) publish(loc model.Location, date model.MenuDate, html string) {
	f.dates[loc.BaseURL()] = append(f.dates[loc.BaseURL()], date)
	f.pages[loc.BaseURL()+"|"+date.Value] = html
}

func (f *fakeRenderer) failTimes(loc model.Location, date model.MenuDate, n int) {
	f.failures[loc.BaseURL()+"|"+date.Value] = n
}

func (f *fakeRenderer) AvailableDates(ctx context.Context, baseURL string) ([]model.MenuDate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "dates "+baseURL)
	if err := f.dateErr[baseURL]; err != nil {
		return nil, err
	}
	return f.dates[baseURL], nil
}

func (f *fakeRenderer) Render(ctx context.Context, baseURL, value string) (string, error) {
	key := baseURL + "|" + value
	f.mu.Lock()
	f.calls = append(f.calls, "render "+key)
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	fail := f.failures[key] > 0
	if fail {
		f.failures[key]--
	}
	html, ok := f.pages[key]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if fail || !ok {
		return "", errUnavailable
	}
	return html, nil
}

func (f *fakeRenderer) renderCalls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == "render "+key {
			n++
		}
	}
	return n
}

// item describes one menu link for page building.
type item struct {
	name  string
	attrs map[string]string
}

type category struct {
	name  string
	items []item
}

type meal struct {
	id         string
	title      string
	categories []category
}

// menuPage renders HTML shaped like the dining site's menu pages.
func menuPage(meals ...meal) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="main_menu"><ul><li>Home</li></ul></div>`)
	b.WriteString(`<select id="upcoming-foodpro"><option value="11/07/2025">Fri November 07, 2025</option></select>`)
	for _, m := range meals {
		fmt.Fprintf(&b, `<div id="%s_menu"><h2>%s</h2><div id="content_text">`, m.id, m.title)
		for _, c := range m.categories {
			fmt.Fprintf(&b, `<h2 class="menu_category_name">%s</h2>`, c.name)
			for _, it := range c.items {
				b.WriteString(`<li class="lightbox-nutrition"><a href="#"`)
				for k, v := range it.attrs {
					fmt.Fprintf(&b, ` data-%s="%s"`, k, v)
				}
				fmt.Fprintf(&b, `>%s</a></li>`, it.name)
			}
		}
		b.WriteString(`</div></div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func oatmealItem() item {
	return item{name: "Oatmeal", attrs: map[string]string{
		"calories":      "150",
		"total-fat":     "3g",
		"sodium":        "5mg",
		"total-carb":    "27g",
		"dietary-fiber": "4g",
		"sugars":        "1g",
		"protein":       "5g",
		"serving-size":  "1 cup",
	}}
}

func breakfastPage(items ...item) string {
	return menuPage(meal{id: "breakfast", title: "Breakfast", categories: []category{{name: "Hot Cereal", items: items}}})
}
