package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Storage  StorageConfig  `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Payment  PaymentConfig  `mapstructure:",squash"`
	Reminder ReminderConfig `mapstructure:",squash"`
	SMTP     SMTPConfig     `mapstructure:",squash"`
	Weather  WeatherConfig  `mapstructure:",squash"`
	AI       AIConfig       `mapstructure:",squash"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type StorageConfig struct {
	// Driver selects the key-value backend: memory, redis or postgres
	Driver string `mapstructure:"STORAGE_DRIVER"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"DATABASE_URL"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type PaymentConfig struct {
	// FailurePIN deterministically declines a wallet payment
	FailurePIN      string `mapstructure:"PAYMENT_FAILURE_PIN"`
	ProcessingDelay string `mapstructure:"PAYMENT_PROCESSING_DELAY"`
}

type ReminderConfig struct {
	// CheckSpec is the cron spec (with seconds) for the due-today scan
	CheckSpec string `mapstructure:"REMINDER_CHECK_SPEC"`
	// NotificationsEnabled stands in for the OS permission grant when
	// the log notifier is in use
	NotificationsEnabled bool `mapstructure:"NOTIFICATIONS_ENABLED"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
	To       string `mapstructure:"SMTP_TO"`
}

type WeatherConfig struct {
	BaseURL string `mapstructure:"WEATHER_BASE_URL"`
}

type AIConfig struct {
	APIKey string `mapstructure:"AI_API_KEY"`
	Model  string `mapstructure:"AI_MODEL"`
}

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("STORAGE_DRIVER", DriverMemory)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_FAILURE_PIN", "0000")
	viper.SetDefault("PAYMENT_PROCESSING_DELAY", "2s")
	viper.SetDefault("REMINDER_CHECK_SPEC", "0 * * * * *")
	viper.SetDefault("NOTIFICATIONS_ENABLED", true)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("AI_MODEL", "gemini-2.5-flash")

	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, redis, postgres")
	}

	if c.Payment.FailurePIN == "" {
		return fmt.Errorf("PAYMENT_FAILURE_PIN is required")
	}

	if _, err := time.ParseDuration(c.Payment.ProcessingDelay); err != nil {
		return fmt.Errorf("PAYMENT_PROCESSING_DELAY must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// GetProcessingDelay returns the simulated settlement delay
func (c *Config) GetProcessingDelay() time.Duration {
	delay, _ := time.ParseDuration(c.Payment.ProcessingDelay)
	return delay
}
