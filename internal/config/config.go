package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at startup
// and passed to the components that need it.
type Config struct {
	ServerPort      int
	DatabaseURL     string
	DBTimeout       time.Duration
	JWTSecret       string
	JWTExpire       time.Duration
	AppEnv          string
	ExposeErrors    bool
	UploadDir       string
	MaxUploadBytes  int64
	CORSOrigins     []string
	LogLevel        string
	AdminName       string
	AdminEmail      string
	AdminPassword   string
	JanitorSchedule string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads a .env file if present, then loads configuration from
// environment variables or sets defaults.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	dbTimeout, err := time.ParseDuration(getEnv("DB_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_TIMEOUT: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	expire, err := ParseLifetime(getEnv("JWT_EXPIRE", "30d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", strconv.Itoa(5<<20)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	appEnv := getEnv("APP_ENV", "development")
	expose, err := strconv.ParseBool(getEnv("EXPOSE_ERRORS", strconv.FormatBool(appEnv != "production")))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPOSE_ERRORS: %w", err)
	}

	return &Config{
		ServerPort:      port,
		DatabaseURL:     getEnv("DATABASE_URL", "./taskflow.db"),
		DBTimeout:       dbTimeout,
		JWTSecret:       secret,
		JWTExpire:       expire,
		AppEnv:          appEnv,
		ExposeErrors:    expose,
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:  maxUpload,
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AdminName:       getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@hourly"),
	}, nil
}

// ParseLifetime accepts Go durations ("12h") as well as a day suffix ("30d").
func ParseLifetime(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %s", s)
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

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
