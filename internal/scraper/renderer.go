// Package scraper discovers and extracts dining hall menus from the
// rendered menu pages.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pageza/dininghall/backend/internal/model"
)

// Renderer fetches fully rendered menu pages. Implementations may be slow and
// fail transiently.
type Renderer interface {
	// AvailableDates lists the date selector options in page order.
	AvailableDates(ctx context.Context, baseURL string) ([]model.MenuDate, error)
	// Render selects dateValue on the page and returns the resulting HTML.
	Render(ctx context.Context, baseURL, dateValue string) (string, error)
}

const dateSelector = "#upcoming-foodpro"

// ChromeRenderer drives a headless Chrome through chromedp. Each call uses its
// own tab so calls may run concurrently.
type ChromeRenderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	settle   time.Duration
}

// NewChromeRenderer starts a browser allocator. execPath may be empty to use
// the chromedp default lookup.
func NewChromeRenderer(execPath string, timeout, settle time.Duration) *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeRenderer{allocCtx: allocCtx, cancel: cancel, timeout: timeout, settle: settle}
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() {
	r.cancel()
}

// tab opens a browser tab bound to both ctx and the render timeout.
func (r *ChromeRenderer) tab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	stop := context.AfterFunc(ctx, cancelTab)
	return tabCtx, func() {
		stop()
		cancelTimeout()
		cancelTab()
	}
}

type selectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (r *ChromeRenderer) AvailableDates(ctx context.Context, baseURL string) ([]model.MenuDate, error) {
	tabCtx, cancel := r.tab(ctx)
	defer cancel()

	var options []selectOption
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(baseURL),
		chromedp.WaitReady(dateSelector, chromedp.ByQuery),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('#upcoming-foodpro option'))
			.map(o => ({value: o.value, label: o.textContent.trim()}))`, &options),
	)
	if err != nil {
		return nil, fmt.Errorf("read date options from %s: %w", baseURL, err)
	}
	return menuDates(options)
}

func menuDates(options []selectOption) ([]model.MenuDate, error) {
	dates := make([]model.MenuDate, 0, len(options))
	seen := make(map[string]bool)
	for _, o := range options {
		if strings.TrimSpace(o.Value) == "" {
			continue
		}
		d, err := model.NewMenuDate(o.Value, o.Label)
		if err != nil {
			return nil, err
		}
		if seen[d.Day] {
			continue
		}
		seen[d.Day] = true
		dates = append(dates, d)
	}
	return dates, nil
}

func (r *ChromeRenderer) Render(ctx context.Context, baseURL, dateValue string) (string, error) {
	tabCtx, cancel := r.tab(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(baseURL),
		chromedp.WaitReady(dateSelector, chromedp.ByQuery),
		chromedp.SetValue(dateSelector, dateValue, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelector('#upcoming-foodpro')
			.dispatchEvent(new Event('change', {bubbles: true}))`, nil),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s for %s: %w", baseURL, dateValue, err)
	}
	return html, nil
}
