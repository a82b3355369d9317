package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageBackend       = errors.New("unknown storage backend")
	ErrInvalidValue                = errors.New("invalid config value")
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`       // current application environment (local, dev, production)
	LogLevel         string  `mapstructure:"log_level"` // debug, info, warn or error; empty keeps the env default
	TelegramAPIToken string  `mapstructure:"-"`         // Telegram API token loaded from environment
	Storage          Storage `mapstructure:"storage"`
	DB               DB      `mapstructure:"database"`
	Quran            Quran   `mapstructure:"quran"`
	Reading          Reading `mapstructure:"reading"`
	HTTP             HTTP    `mapstructure:"http"`
	Auth             Auth    `mapstructure:"auth"`
}

// Storage selects where the key-value records live.
type Storage struct {
	Backend    string `mapstructure:"backend"`     // sqlite, postgres or memory
	SQLitePath string `mapstructure:"sqlite_path"` // database file for the sqlite backend
	Owner      string `mapstructure:"owner"`       // identity unscoped records are moved to on upgrade
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Quran configures the content API and the reciter catalog.
type Quran struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CatalogPath string        `mapstructure:"catalog_path"` // optional YAML catalog, built-in defaults when empty
}

// Reading tunes reading sessions.
type Reading struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"` // a session with no activity for this long ends on its own
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Auth configures the identity provider and Google OAuth.
type Auth struct {
	FirebaseBaseURL    string        `mapstructure:"firebase_base_url"`
	FirebaseAPIKey     string        `mapstructure:"-"`
	Timeout            time.Duration `mapstructure:"timeout"`
	GoogleClientID     string        `mapstructure:"google_client_id"`
	GoogleClientSecret string        `mapstructure:"-"`
	GoogleRedirectURL  string        `mapstructure:"google_redirect_url"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"` // how long a verified id token is trusted without asking the provider again
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Variables from .env never override the real environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite_path", "data/tilawah.db")
	v.SetDefault("storage.owner", "local")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("quran.base_url", "https://api.alquran.cloud/v1")
	v.SetDefault("quran.timeout", "10s")
	v.SetDefault("quran.catalog_path", "")
	v.SetDefault("reading.idle_timeout", "5m")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("auth.firebase_base_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("auth.timeout", "10s")
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.google_redirect_url", "")
	v.SetDefault("auth.token_ttl", "5m")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("firebase_api_key", "FIREBASE_API_KEY")
	_ = v.BindEnv("google_client_secret", "GOOGLE_CLIENT_SECRET")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Secrets come from the environment only.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Auth.FirebaseAPIKey = v.GetString("firebase_api_key")
	cfg.Auth.GoogleClientSecret = v.GetString("google_client_secret")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageBackend, c.Storage.Backend)
	}
	if c.Reading.IdleTimeout <= 0 {
		return fmt.Errorf("%w: reading.idle_timeout must be positive", ErrInvalidValue)
	}
	return nil
}

// RequireTelegram reports an error when the bot token is not set.
func (c *Config) RequireTelegram() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	return nil
}
