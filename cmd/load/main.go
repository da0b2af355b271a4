// Command load writes a stored snapshot, or a legacy scraper JSON file, into
// the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/database"
	"github.com/pageza/dininghall/backend/internal/ingest"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/snapshot"
)

func main() {
	key := flag.String("key", "", "snapshot key to load (default latest)")
	legacy := flag.String("legacy", "", "path of a legacy scraper JSON file to load instead")
	flag.Parse()

	if err := run(*key, *legacy); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(key, legacy string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	loader := ingest.NewLoader(db, log)

	if legacy != "" {
		f, err := os.Open(legacy)
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := service.NewIngestService(nil, nil, loader, log).LoadLegacy(ctx, f)
		if err != nil {
			return err
		}
		fmt.Printf("legacy: %s\n", legacy)
		ingest.Summarize(res.Snapshot).Write(os.Stdout, &res.Report)
		return nil
	}

	store, err := snapshot.Open(ctx, cfg)
	if err != nil {
		return err
	}
	res, err := service.NewIngestService(nil, store, loader, log).Load(ctx, key)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot: %s\n", res.Key)
	ingest.Summarize(res.Snapshot).Write(os.Stdout, &res.Report)
	return nil
}
