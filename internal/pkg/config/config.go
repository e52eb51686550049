package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   secrets), security settings
// - default: Values common across all environments (timezone, salon policy,
//   timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Salon    SalonConfig
	Stripe   StripeConfig
	Reminder ReminderConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"America/New_York"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5500"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone   string `envconfig:"LOG_TIMEZONE" default:"America/New_York"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

// SalonConfig is the booking policy of the shop: opening window, which
// weekdays accept bookings, the slot step, the idle buffer required between
// appointments and the cancellation window.
type SalonConfig struct {
	TimeZone           string        `envconfig:"SALON_TIMEZONE" default:"America/New_York"`
	OpenTime           string        `envconfig:"SALON_OPEN_TIME" default:"09:00"`
	CloseTime          string        `envconfig:"SALON_CLOSE_TIME" default:"18:00"`
	BusinessDays       []string      `envconfig:"SALON_BUSINESS_DAYS" default:"Tuesday,Wednesday,Thursday,Friday,Saturday"`
	SlotStepMinutes    int           `envconfig:"SALON_SLOT_STEP_MINUTES" default:"30"`
	BufferMinutes      int           `envconfig:"SALON_BUFFER_MINUTES" default:"15"`
	CancellationWindow time.Duration `envconfig:"SALON_CANCELLATION_WINDOW" default:"24h"`
}

type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
}

// ReminderConfig drives the in-process reminder poller. PollInterval must be
// finer than the narrowest eligibility window (30 minutes) or reminders can
// be skipped.
type ReminderConfig struct {
	Enabled      bool          `envconfig:"REMINDER_ENABLED" default:"true"`
	PollInterval time.Duration `envconfig:"REMINDER_POLL_INTERVAL" default:"5m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "America/New_York",
			MaxConns: 5,
			MinConns: 1,
		},
		Log: LogConfig{
			Level:      "error",
			TimeZone:   "America/New_York",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Salon: SalonConfig{
			TimeZone:           "America/New_York",
			OpenTime:           "09:00",
			CloseTime:          "18:00",
			BusinessDays:       []string{"Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
			SlotStepMinutes:    30,
			BufferMinutes:      15,
			CancellationWindow: 24 * time.Hour,
		},
		Reminder: ReminderConfig{
			Enabled:      false,
			PollInterval: 5 * time.Minute,
		},
	}
}
