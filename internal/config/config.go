package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sadopc/punchclock/internal/store"
)

type Config struct {
	Env       string // dev or prod
	Addr      string // HTTP listen address, e.g. :8080
	DBDriver  string // sqlite or mysql
	DBDSN     string // file path for sqlite, go-sql-driver DSN for mysql
	JWTSecret string
	TokenTTL  time.Duration
	ReportTZ  string // IANA zone name or "Local"
	LogLevel  slog.Level

	loc *time.Location
}

// Load reads an optional .env file and then the environment.
// Precedence: environment > .env > defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Env:       get("ENV", "dev"),
		Addr:      get("ADDR", ":8080"),
		DBDriver:  get("DB_DRIVER", store.DriverSQLite),
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: get("JWT_SECRET", "dev-punchclock-secret"),
		ReportTZ:  get("REPORT_TZ", "Local"),
	}

	switch c.DBDriver {
	case store.DriverSQLite:
		if c.DBDSN == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve default db path: %w", err)
			}
			c.DBDSN = p
		}
	case store.DriverMySQL:
		if c.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for DB_DRIVER=mysql")
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "720h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration")
	}
	c.TokenTTL = ttl

	if c.loc, err = time.LoadLocation(c.ReportTZ); err != nil {
		return nil, fmt.Errorf("invalid REPORT_TZ %q: %w", c.ReportTZ, err)
	}

	if err := c.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if c.Env == "prod" && c.JWTSecret == "dev-punchclock-secret" {
		return nil, fmt.Errorf("JWT_SECRET must be set when ENV=prod")
	}
	return c, nil
}

// Location is the reporting timezone.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

func get(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
