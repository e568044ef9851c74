package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the API server configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	VideoPrep  VideoPrepConfig  `mapstructure:"video_prep"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Email      EmailConfig      `mapstructure:"email"`
	Turnstile  TurnstileConfig  `mapstructure:"turnstile"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Session    SessionConfig    `mapstructure:"session"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BaseURL      string        `mapstructure:"base_url"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// VideoPrepConfig contains settings for the remote video preparation backend
type VideoPrepConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APISecret      string        `mapstructure:"api_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// StorageConfig contains S3-compatible settings for the prepared-video bucket
type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// EmailConfig contains outbound email provider settings
type EmailConfig struct {
	APIURL   string `mapstructure:"api_url"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// TurnstileConfig contains Cloudflare Turnstile verification settings
type TurnstileConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	VerifyURL string `mapstructure:"verify_url"`
}

// TelegramConfig contains Telegram bot deep-link settings
type TelegramConfig struct {
	BotUsername string `mapstructure:"bot_username"`
}

// SessionConfig contains session cookie settings
type SessionConfig struct {
	CookieName   string `mapstructure:"cookie_name"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.base_url", "https://yntoyg.com")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "covenant")

	// Video prep defaults
	viper.SetDefault("video_prep.request_timeout", "30s")

	// Storage defaults
	viper.SetDefault("storage.region", "auto")
	viper.SetDefault("storage.bucket", "unique-videos")

	// Email defaults
	viper.SetDefault("email.api_url", "https://api.resend.com")
	viper.SetDefault("email.from", "noreply@yntoyg.com")
	viper.SetDefault("email.from_name", "YNTOYG Covenant")

	// Turnstile defaults
	viper.SetDefault("turnstile.verify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")

	// Telegram defaults
	viper.SetDefault("telegram.bot_username", "yntoyg_claim_bot")

	// Session defaults
	viper.SetDefault("session.cookie_name", "covenant_session")
	viper.SetDefault("session.secure_cookie", true)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	viper.SetDefault("shutdown.timeout", "30s")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.VideoPrep.BaseURL == "" {
		return fmt.Errorf("video_prep.base_url is required")
	}
	if config.VideoPrep.APISecret == "" {
		return fmt.Errorf("video_prep.api_secret is required")
	}
	if config.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if config.Email.APIKey == "" {
		return fmt.Errorf("email.api_key is required")
	}
	return nil
}
