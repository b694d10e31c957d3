package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	DefaultTenant  string        `mapstructure:"DEFAULT_TENANT"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// Scheduling rules. Times of day are minutes from midnight so that the
	// booking window can be compared with shift bounds without time zones.
	SlotMinutes        int `mapstructure:"SLOT_MINUTES"`
	BookingOpenMin     int `mapstructure:"BOOKING_OPEN_MIN"`
	BookingCloseMin    int `mapstructure:"BOOKING_CLOSE_MIN"`
	RescheduleCloseMin int `mapstructure:"RESCHEDULE_CLOSE_MIN"`
	StoreRetryAttempts int `mapstructure:"STORE_RETRY_ATTEMPTS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("BOOKING_OPEN_MIN", 8*60)      // 08:00
	v.SetDefault("BOOKING_CLOSE_MIN", 17*60)    // 17:00
	v.SetDefault("RESCHEDULE_CLOSE_MIN", 22*60) // 22:00
	v.SetDefault("STORE_RETRY_ATTEMPTS", 3)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_TENANT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("SLOT_MINUTES")
	v.BindEnv("BOOKING_OPEN_MIN")
	v.BindEnv("BOOKING_CLOSE_MIN")
	v.BindEnv("RESCHEDULE_CLOSE_MIN")
	v.BindEnv("STORE_RETRY_ATTEMPTS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the scheduling windows form a usable configuration.
// The reschedule window may extend past the booking window (the clinic accepts
// moved appointments into the evening) but never precede it.
func (c *Config) Validate() error {
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("SLOT_MINUTES must be positive, got %d", c.SlotMinutes)
	}
	if c.BookingOpenMin < 0 || c.BookingOpenMin >= 24*60 {
		return fmt.Errorf("BOOKING_OPEN_MIN must be a time of day in minutes, got %d", c.BookingOpenMin)
	}
	if c.BookingCloseMin <= c.BookingOpenMin {
		return fmt.Errorf("BOOKING_CLOSE_MIN (%d) must be after BOOKING_OPEN_MIN (%d)", c.BookingCloseMin, c.BookingOpenMin)
	}
	if c.BookingCloseMin > 24*60 {
		return fmt.Errorf("BOOKING_CLOSE_MIN must not pass midnight, got %d", c.BookingCloseMin)
	}
	if c.RescheduleCloseMin < c.BookingCloseMin || c.RescheduleCloseMin > 24*60 {
		return fmt.Errorf("RESCHEDULE_CLOSE_MIN must lie between BOOKING_CLOSE_MIN and midnight, got %d", c.RescheduleCloseMin)
	}
	if c.StoreRetryAttempts < 1 {
		return fmt.Errorf("STORE_RETRY_ATTEMPTS must be at least 1, got %d", c.StoreRetryAttempts)
	}
	return nil
}
