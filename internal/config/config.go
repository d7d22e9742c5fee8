package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// Firebase / Firestore
	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`
	// CredentialsJSON is the raw service-account JSON. When empty the Admin SDK
	// falls back to application default credentials.
	CredentialsJSON string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`

	// Redis (async job queue)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Google OAuth (Gmail sales import)
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `mapstructure:"GOOGLE_REDIRECT_URI"`
	// OAuthStateSecret signs the state JWT carried through the consent flow.
	OAuthStateSecret string `mapstructure:"OAUTH_STATE_SECRET"`

	// FrontendURL is where the OAuth callback redirects back to.
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Business
	ReportStoragePath string `mapstructure:"REPORT_STORAGE_PATH"`
	// AlertEmail receives low-stock notifications; empty disables them.
	AlertEmail string `mapstructure:"LOW_STOCK_ALERT_EMAIL"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 5)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("REPORT_STORAGE_PATH", "/tmp/stallsync/reports")

	// Optional .env file for local development; missing file is not an error
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
