package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string
	LogLevel    string

	// Database configuration
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Chat model
	GeminiAPIKey string
	GeminiModel  string
	GeminiURL    string

	// Snapshot artifact storage
	SnapshotBackend string // file or s3
	SnapshotDir     string
	S3Bucket        string
	S3Prefix        string
	S3Region        string
	S3Endpoint      string

	// Scraper
	FetchInterval  time.Duration
	RetryDelay     time.Duration
	Concurrency    int
	RenderTimeout  time.Duration
	SettleDelay    time.Duration
	ChromeExecPath string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendFile = "file"
	BackendS3   = "s3"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if IsDevelopment() || env == Test {
		if err := loadDotEnv(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8501"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBName = getEnv("DB_NAME", "dininghall")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "dininghall.db")
	cfg.DBPassword = readSecretOrEnv("db_password")

	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisPassword = readSecretOrEnv("redis_password")
	db, err := getInt("REDIS_DB", 0)
	if err != nil {
		return err
	}
	cfg.RedisDB = db

	cfg.GeminiAPIKey = readSecretOrEnv("gemini_api_key")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.GeminiURL = getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta")

	cfg.SnapshotBackend = strings.ToLower(getEnv("SNAPSHOT_BACKEND", BackendFile))
	cfg.SnapshotDir = getEnv("SNAPSHOT_DIR", "snapshots")
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Prefix = getEnv("S3_PREFIX", "snapshots/")
	cfg.S3Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")

	if cfg.FetchInterval, err = getDuration("SCRAPER_FETCH_INTERVAL", time.Second); err != nil {
		return err
	}
	if cfg.RetryDelay, err = getDuration("SCRAPER_RETRY_DELAY", 2*time.Second); err != nil {
		return err
	}
	if cfg.RenderTimeout, err = getDuration("SCRAPER_RENDER_TIMEOUT", 45*time.Second); err != nil {
		return err
	}
	if cfg.SettleDelay, err = getDuration("SCRAPER_SETTLE_DELAY", 3*time.Second); err != nil {
		return err
	}
	if cfg.Concurrency, err = getInt("SCRAPER_CONCURRENCY", 2); err != nil {
		return err
	}
	cfg.ChromeExecPath = os.Getenv("CHROME_PATH")

	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", v)}
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be a duration, got %q", v)}
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecretOrEnv prefers a Docker secret file and falls back to the
// upper-cased environment variable of the same name.
func readSecretOrEnv(name string) string {
	if v := readSecret(name); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(strings.ToUpper(name)))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
