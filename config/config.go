package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is everything the process reads from the environment.
type Config struct {
	Port          string
	GinMode       string
	LogLevel      string
	DBDriver      string
	DBDSN         string
	DBLogSQL      bool
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigin    string
	CSP           string
	FrameOptions  string
	HSTSMaxAge    int
	RateLimit     int
	RateBurst     int
	DisplayBuffer int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:         getEnv("DB_DSN", "bakery.db"),
		DBLogSQL:      cast.ToBool(getEnv("DB_LOG_SQL", "false")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      cast.ToDuration(getEnv("TOKEN_TTL", "1h")),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
		CSP:           getEnv("CONTENT_SECURITY_POLICY", "default-src 'self'"),
		FrameOptions:  getEnv("FRAME_OPTIONS", "DENY"),
		HSTSMaxAge:    cast.ToInt(getEnv("HSTS_MAX_AGE", "0")),
		RateLimit:     cast.ToInt(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateBurst:     cast.ToInt(getEnv("RATE_LIMIT_BURST", "40")),
		DisplayBuffer: cast.ToInt(getEnv("DISPLAY_BUFFER", cast.ToString(services.DefaultDisplayBuffer))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBDriver != DriverMySQL && c.DBDriver != DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DisplayBuffer < 0 {
		return fmt.Errorf("DISPLAY_BUFFER cannot be negative")
	}
	if c.HSTSMaxAge < 0 {
		return fmt.Errorf("HSTS_MAX_AGE cannot be negative")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit and burst must be positive")
	}
	return nil
}

// Services returns the engine configuration derived from c.
func (c *Config) Services() services.Config {
	return services.Config{DisplayBuffer: c.DisplayBuffer}
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DBDSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.DBLogSQL {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		// one writer at a time; sqlite serializes transactions on the file
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
