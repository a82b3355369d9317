package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func inEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("TELEGRAM_API_TOKEN", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "local" || cfg.Storage.Backend != BackendSQLite || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Quran.Timeout != 10*time.Second {
		t.Fatalf("quran timeout = %v", cfg.Quran.Timeout)
	}
	if cfg.Reading.IdleTimeout != 5*time.Minute || cfg.Auth.TokenTTL != 5*time.Minute {
		t.Fatalf("idle timeout = %v, token ttl = %v", cfg.Reading.IdleTimeout, cfg.Auth.TokenTTL)
	}
	if err := cfg.RequireTelegram(); !errors.Is(err, ErrMissingEnvironmentVariables) {
		t.Fatalf("RequireTelegram = %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := inEmptyDir(t)
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "env: production\nstorage:\n  backend: postgres\nquran:\n  timeout: 3s\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/tilawah")
	t.Setenv("TELEGRAM_API_TOKEN", "123:abc")
	t.Setenv("FIREBASE_API_KEY", "fb-key")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "production" || cfg.Storage.Backend != BackendPostgres || cfg.Quran.Timeout != 3*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DB.URL != "postgres://localhost/tilawah" || cfg.Auth.FirebaseAPIKey != "fb-key" {
		t.Fatalf("secrets not loaded: %+v", cfg)
	}
	if err := cfg.RequireTelegram(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRejectsBadStorage(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    error
	}{
		{"postgres without url", BackendPostgres, ErrMissingEnvironmentVariables},
		{"unknown backend", "redis", ErrUnknownStorageBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inEmptyDir(t)
			t.Setenv("STORAGE_BACKEND", tt.backend)
			t.Setenv("DATABASE_URL", "")

			if _, err := Load(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsNonPositiveIdleTimeout(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("READING_IDLE_TIMEOUT", "0s")

	if _, err := Load(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidValue)
	}
}
