package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Server   ServerConfig   `validate:"required"`
	Logging  LoggingConfig  `validate:"required"`
	Postgres PostgresConfig `validate:"required"`
	Billing  BillingConfig  `validate:"required"`
	MikroTik MikroTikConfig `validate:"required"`
	Cache    CacheConfig
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `validate:"required"`
	SSLMode                string `validate:"required"`
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

// BillingConfig drives the monthly billing cycle. All days are days of the
// calendar month in the business timezone.
type BillingConfig struct {
	// Timezone is the IANA name of the business timezone, e.g. Asia/Jakarta
	Timezone string `validate:"required"`
	// InvoiceDueDay is the day of month invoices fall due (grace period end)
	InvoiceDueDay int `validate:"required,min=1,max=28"`
	// SuspensionDay is the day of month the suspension engine is allowed to run
	SuspensionDay int `validate:"required,min=1,max=28"`
	// ProrationEnabled toggles first-month proration for mid-cycle activations
	ProrationEnabled bool
}

// MikroTikConfig configures the RouterOS REST gateway client
type MikroTikConfig struct {
	// APITimeout bounds every gateway call; an expired timeout is treated as a
	// gateway failure, identical to an explicit error response
	APITimeout time.Duration `validate:"required"`
	// RequestsPerSecond rate-limits calls per router device
	RequestsPerSecond float64
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	// A missing .env is fine; deployments configure through the environment
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fiberbill")

	v.SetEnvPrefix("FIBERBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "fiberbill")
	v.SetDefault("postgres.dbname", "fiberbill")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("billing.timezone", "Asia/Jakarta")
	v.SetDefault("billing.invoicedueday", 5)
	v.SetDefault("billing.suspensionday", 6)
	v.SetDefault("billing.prorationenabled", true)
	v.SetDefault("mikrotik.apitimeout", "15s")
	v.SetDefault("mikrotik.requestspersecond", 5)
	v.SetDefault("cache.enabled", true)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("invalid billing timezone %q: %w", c.Billing.Timezone, err)
	}
	return nil
}

// BusinessLocation returns the loaded business timezone. Validate guarantees
// the name resolves, so the error path only fires for a zero Configuration.
func (c Configuration) BusinessLocation() *time.Location {
	loc, err := time.LoadLocation(c.Billing.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			Timezone:         "Asia/Jakarta",
			InvoiceDueDay:    5,
			SuspensionDay:    6,
			ProrationEnabled: true,
		},
		MikroTik: MikroTikConfig{
			APITimeout:        15 * time.Second,
			RequestsPerSecond: 5,
		},
		Cache: CacheConfig{Enabled: true},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
