package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds everything the terminal reads from the environment.
type Config struct {
	DBDriver         string
	DBDSN            string
	DBLogLevel       string
	DBConnectRetries int

	HTTPAddr          string
	BaseURL           string
	CORSOrigins       []string
	AllowRegistration bool
	UploadDir         string

	JWTSecret string
	JWTTTL    time.Duration

	LogMode string
	LogFile string

	CurrencySymbol string
}

// Load reads .env (if present) and the process environment.
// Missing required keys are reported as errors; the caller decides whether to exit.
func Load(files ...string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load(files...)

	cfg := &Config{
		DBDriver:          strings.ToLower(getenv("DB_DRIVER", "mysql")),
		DBDSN:             os.Getenv("DB_DSN"),
		DBLogLevel:        getenv("DB_LOG_LEVEL", "warn"),
		DBConnectRetries:  cast.ToInt(getenv("DB_CONNECT_RETRIES", "5")),
		HTTPAddr:          getenv("HTTP_ADDR", "127.0.0.1:8080"),
		BaseURL:           getenv("BASE_URL", "http://localhost:8080"),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		AllowRegistration: cast.ToBool(os.Getenv("ALLOW_REGISTRATION")),
		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTTTL:            cast.ToDuration(getenv("JWT_TTL", "24h")),
		LogMode:           getenv("LOG_MODE", "development"),
		LogFile:           os.Getenv("LOG_FILE"),
		CurrencySymbol:    getenv("CURRENCY_SYMBOL", "Rs."),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case "mysql", "sqlite":
	default:
		return nil, errors.New("DB_DRIVER must be mysql or sqlite")
	}
	if cfg.DBConnectRetries < 1 {
		cfg.DBConnectRetries = 1
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
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
