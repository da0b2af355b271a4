package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
)

// ErrNoMenus is returned when not a single (location, date) pair succeeded.
var ErrNoMenus = errors.New("no menus fetched")

// maxAttempts is one try plus a single retry.
const maxAttempts = 2

// AggregatorConfig tunes the politeness and parallelism of a run.
type AggregatorConfig struct {
	// FetchInterval is the minimum gap between consecutive page fetches.
	FetchInterval time.Duration
	// RetryDelay is waited before the single retry of a failed pair.
	RetryDelay time.Duration
	// Concurrency bounds how many pairs are fetched at once.
	Concurrency int
}

// Result is the outcome of one aggregation run.
type Result struct {
	Snapshot *model.MenuSnapshot
	Failures []*FetchFailure
	Pairs    int
}

// Aggregator discovers published dates per location and extracts every
// (location, date) pair into a MenuSnapshot.
type Aggregator struct {
	renderer    Renderer
	extractor   *Extractor
	log         *slog.Logger
	limiter     *rate.Limiter
	retryDelay  time.Duration
	concurrency int
	sleep       func(context.Context, time.Duration) error
}

func NewAggregator(renderer Renderer, cfg AggregatorConfig, log *slog.Logger) *Aggregator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Aggregator{
		renderer:    renderer,
		extractor:   NewExtractor(renderer, log),
		log:         logging.Component(log, "aggregator"),
		limiter:     rate.NewLimiter(rate.Every(cfg.FetchInterval), 1),
		retryDelay:  cfg.RetryDelay,
		concurrency: cfg.Concurrency,
		sleep:       sleepContext,
	}
}

type pair struct {
	loc  model.Location
	date model.MenuDate
}

type pairResult struct {
	day model.DayMenu
	err *FetchFailure
}

// Aggregate returns the snapshot of every pair that could be fetched. It
// fails only when nothing could be fetched.
func (a *Aggregator) Aggregate(ctx context.Context, locations []model.Location) (*model.MenuSnapshot, error) {
	res, err := a.Run(ctx, locations)
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

// Run is Aggregate with the failed pairs reported alongside the snapshot.
func (a *Aggregator) Run(ctx context.Context, locations []model.Location) (*Result, error) {
	locs := append([]model.Location(nil), locations...)
	model.SortLocations(locs)

	res := &Result{Snapshot: model.NewMenuSnapshot()}
	var pairs []pair
	seen := make(map[model.Location]bool)
	for _, loc := range locs {
		if seen[loc] {
			continue
		}
		seen[loc] = true

		dates, err := a.discover(ctx, loc)
		if err != nil {
			res.Failures = append(res.Failures, err)
			a.log.Error("date discovery failed, skipping location", "location", loc, "error", err.Err)
			continue
		}
		a.log.Info("discovered dates", "location", loc, "count", len(dates))
		days := make(map[string]bool, len(dates))
		for _, d := range dates {
			if days[d.Day] {
				continue
			}
			days[d.Day] = true
			pairs = append(pairs, pair{loc: loc, date: d})
		}
	}
	res.Pairs = len(pairs)

	// each pair owns its slot so the snapshot keeps discovery order
	results := make([]pairResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			day, err := a.fetch(gctx, p)
			results[i] = pairResult{day: day, err: err}
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for i, r := range results {
		if r.err != nil {
			res.Failures = append(res.Failures, r.err)
			a.log.Error("menu fetch failed", "location", pairs[i].loc, "date", pairs[i].date.Day, "attempts", r.err.Attempts, "error", r.err.Err)
			continue
		}
		if err := res.Snapshot.Add(r.day); err != nil {
			return nil, err
		}
		succeeded++
	}

	a.log.Info("aggregation finished", "pairs", len(pairs), "succeeded", succeeded, "failed", len(res.Failures))
	if succeeded == 0 {
		return res, fmt.Errorf("%w: %d of %d pairs failed", ErrNoMenus, len(res.Failures), len(pairs))
	}
	return res, nil
}

func (a *Aggregator) discover(ctx context.Context, loc model.Location) ([]model.MenuDate, *FetchFailure) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &FetchFailure{Location: loc, Attempts: attempt, Err: err}
		}
		dates, err := a.renderer.AvailableDates(ctx, loc.BaseURL())
		if err == nil {
			return dates, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			a.log.Warn("date discovery failed, retrying", "location", loc, "attempt", attempt, "error", err)
			if err := a.sleep(ctx, a.retryDelay); err != nil {
				return nil, &FetchFailure{Location: loc, Attempts: attempt, Err: err}
			}
		}
	}
	return nil, &FetchFailure{Location: loc, Attempts: maxAttempts, Err: lastErr}
}

func (a *Aggregator) fetch(ctx context.Context, p pair) (model.DayMenu, *FetchFailure) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return model.DayMenu{}, &FetchFailure{Location: p.loc, Date: p.date.Day, Attempts: attempt, Err: err}
		}
		day, err := a.extractor.Extract(ctx, p.loc, p.date)
		if err == nil {
			return day, nil
		}
		lastErr = err
		var ff *FetchFailure
		if errors.As(err, &ff) {
			lastErr = ff.Err
		}
		if attempt < maxAttempts {
			a.log.Warn("menu fetch failed, retrying", "location", p.loc, "date", p.date.Day, "attempt", attempt, "error", lastErr)
			if err := a.sleep(ctx, a.retryDelay); err != nil {
				return model.DayMenu{}, &FetchFailure{Location: p.loc, Date: p.date.Day, Attempts: attempt, Err: err}
			}
		}
	}
	return model.DayMenu{}, &FetchFailure{Location: p.loc, Date: p.date.Day, Attempts: maxAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
