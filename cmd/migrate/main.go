// Command migrate applies or rolls back the postgres schema migrations.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/database"
	"github.com/pageza/dininghall/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	if err := run(*rollback); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(rollback bool) error {
	// DATABASE_URL takes precedence over the DB_* settings
	dsn := os.Getenv("DATABASE_URL")
	level := "info"
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.DBDriver != config.DriverPostgres {
			return fmt.Errorf("migrations target postgres; DB_DRIVER is %q", cfg.DBDriver)
		}
		dsn = cfg.DSN()
		level = cfg.LogLevel
	}
	log := logging.Setup(level)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if rollback {
		if err := database.MigrateDown(db); err != nil {
			return err
		}
	} else if err := database.MigrateUp(db); err != nil {
		return err
	}

	version, err := database.MigrationVersion(db)
	if err != nil {
		return err
	}
	log.Info("migrations complete", "rollback", rollback, "version", version)
	return nil
}
