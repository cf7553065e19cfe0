package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	ChangePollInterval      time.Duration
	ActivityRefreshInterval time.Duration
	SessionIdleTimeout      time.Duration
	JanitorInterval         time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_DSN", "clubday.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("CHANGE_POLL_INTERVAL", "1s")
	v.SetDefault("ACTIVITY_REFRESH_INTERVAL", "30s")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "12h")
	v.SetDefault("JANITOR_INTERVAL", "15m")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                    v.GetString("PORT"),
		GinMode:                 v.GetString("GIN_MODE"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		DBDriver:                strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:                   v.GetString("DB_DSN"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		JWTTTL:                  v.GetDuration("JWT_TTL"),
		CORSOrigins:             splitList(v.GetString("CORS_ORIGINS")),
		ChangePollInterval:      v.GetDuration("CHANGE_POLL_INTERVAL"),
		ActivityRefreshInterval: v.GetDuration("ACTIVITY_REFRESH_INTERVAL"),
		SessionIdleTimeout:      v.GetDuration("SESSION_IDLE_TIMEOUT"),
		JanitorInterval:         v.GetDuration("JANITOR_INTERVAL"),
		RateLimitRPS:            v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:          v.GetInt("RATE_LIMIT_BURST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.ChangePollInterval <= 0 || c.ActivityRefreshInterval <= 0 || c.JanitorInterval <= 0 {
		return fmt.Errorf("monitor intervals must be positive")
	}
	return nil
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DBDSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	if cfg.DBDriver == DriverSQLite {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func splitList(raw string) []string {
	items := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(items)
}
