package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBPassword == "" && (env == Production || env == CI) {
			errs = append(errs, ValidationError{"db_password", "secret is required in " + string(env)})
		}
	case DriverSQLite:
		if env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not supported in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	switch cfg.SnapshotBackend {
	case BackendFile:
		if cfg.SnapshotDir == "" {
			errs = append(errs, ValidationError{"SNAPSHOT_DIR", "is required for the file backend"})
		}
	case BackendS3:
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for the s3 backend"})
		}
	default:
		errs = append(errs, ValidationError{"SNAPSHOT_BACKEND", fmt.Sprintf("unknown backend %q", cfg.SnapshotBackend)})
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, ValidationError{"SCRAPER_CONCURRENCY", "must be at least 1"})
	}
	if cfg.FetchInterval < 0 || cfg.RetryDelay < 0 {
		errs = append(errs, ValidationError{"SCRAPER_FETCH_INTERVAL", "delays must not be negative"})
	}
	if cfg.RenderTimeout <= 0 {
		errs = append(errs, ValidationError{"SCRAPER_RENDER_TIMEOUT", "must be positive"})
	}
	if env == Production && cfg.RedisPassword == "" && cfg.RedisURL == "" {
		errs = append(errs, ValidationError{"redis_password", "secret is required in production"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError reports whether err came from ValidateConfig.
func IsValidationError(err error) bool {
	var v ValidationErrors
	var single ValidationError
	return errors.As(err, &v) || errors.As(err, &single)
}
