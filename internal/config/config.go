package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the runtime configuration for the secretpages backend.
// DatabaseURL and TokenSecret are required; missing values abort startup.
// ServiceKey is deliberately optional: without it the account deletion
// endpoint fails closed while the rest of the service runs normally.
type Config struct {
	AppPort      int           `env:"SECRETPAGES_PORT" envDefault:"8080"`
	DatabaseURL  string        `env:"SECRETPAGES_DATABASE_URL,required,notEmpty"`
	TokenSecret  string        `env:"SECRETPAGES_TOKEN_SECRET,required,notEmpty"`
	ServiceKey   string        `env:"SECRETPAGES_SERVICE_KEY"`
	MigrationDir string        `env:"SECRETPAGES_MIGRATIONS" envDefault:"migrations"`
	SeedDir      string        `env:"SECRETPAGES_SEEDS" envDefault:"seeds"`
	LogLevel     string        `env:"SECRETPAGES_LOG_LEVEL" envDefault:"info"`
	AccessTTL    time.Duration `env:"SECRETPAGES_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL   time.Duration `env:"SECRETPAGES_REFRESH_TTL" envDefault:"24h"`
	SessionSweep time.Duration `env:"SECRETPAGES_SESSION_SWEEP_INTERVAL" envDefault:"10m"`

	AuthRateLimit RateLimitConfig `envPrefix:"SECRETPAGES_AUTH_RATE_"`
	Backup        BackupConfig    `envPrefix:"SECRETPAGES_BACKUP_"`
}

// RateLimitConfig tunes the per-IP limiter guarding sensitive endpoints.
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
	Burst    int           `env:"BURST" envDefault:"5"`
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
}

// BackupConfig targets the object store used by the backup subcommand.
type BackupConfig struct {
	Bucket   string `env:"BUCKET"`
	Region   string `env:"REGION" envDefault:"us-east-1"`
	Endpoint string `env:"ENDPOINT"`
	Prefix   string `env:"PREFIX" envDefault:"snapshots"`
}

// Load reads configuration from environment variables. Required values
// that are absent produce an error so the process can fail fast.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
