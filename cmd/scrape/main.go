// Command scrape aggregates the dining hall menus into a snapshot artifact
// and optionally loads it into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/database"
	"github.com/pageza/dininghall/backend/internal/ingest"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/scraper"
	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/snapshot"
)

func main() {
	locations := flag.String("locations", "", "comma separated dining halls (default all)")
	load := flag.Bool("load", false, "load the snapshot into the database after saving it")
	dryRun := flag.Bool("dry-run", false, "scrape and print the summary without saving")
	flag.Parse()

	if err := run(*locations, *load, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(locationList string, load, dryRun bool) error {
	locs, err := model.ParseLocations(locationList)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := scraper.NewChromeRenderer(cfg.ChromeExecPath, cfg.RenderTimeout, cfg.SettleDelay)
	defer renderer.Close()
	aggregator := scraper.NewAggregator(renderer, scraper.AggregatorConfig{
		FetchInterval: cfg.FetchInterval,
		RetryDelay:    cfg.RetryDelay,
		Concurrency:   cfg.Concurrency,
	}, log)

	if dryRun {
		res, err := aggregator.Run(ctx, locs)
		if err != nil {
			return err
		}
		ingest.Summarize(res.Snapshot).Write(os.Stdout, nil)
		printFailures(res.Failures)
		return nil
	}

	store, err := snapshot.Open(ctx, cfg)
	if err != nil {
		return err
	}

	var loader service.SnapshotLoader
	if load {
		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		loader = ingest.NewLoader(db, log)
	}

	svc := service.NewIngestService(aggregator, store, loader, log)
	res, err := svc.Scrape(ctx, locs)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot: %s\n", res.Key)

	var report *ingest.LoadReport
	if load {
		loaded, err := svc.Load(ctx, res.Key)
		if err != nil {
			return err
		}
		report = &loaded.Report
	}
	ingest.Summarize(res.Snapshot).Write(os.Stdout, report)
	printFailures(res.Failures)
	return nil
}

func printFailures(failures []*scraper.FetchFailure) {
	for _, f := range failures {
		fmt.Printf("failed: %v\n", f)
	}
}
