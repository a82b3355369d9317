package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/auth"
	"github.com/aliskhannn/tilawah-daily-bot/internal/config"
	"github.com/aliskhannn/tilawah-daily-bot/internal/delivery/httpapi"
	"github.com/aliskhannn/tilawah-daily-bot/internal/infra/postgres"
	"github.com/aliskhannn/tilawah-daily-bot/internal/infra/sqlite"
	"github.com/aliskhannn/tilawah-daily-bot/internal/logger"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

// app holds the wired services shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	store  kv.Store
	writer *kv.AsyncWriter
	closer func()

	catalog       *quran.Catalog
	content       *quran.Client
	preferences   *service.PreferenceStore
	progress      *service.ProgressTracker
	streak        *service.StreakTracker
	bookmarks     *service.BookmarkStore
	sessions      *service.SessionManager
	dashboard     *service.Dashboard
	reading       *service.ReadingService
	subscriptions *service.Subscriptions
	auth          *service.AuthService
}

// loadConfig reads the configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// openStore opens the configured kv backend and applies its SQL schema.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (kv.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory storage, records are lost on exit")
		return kv.NewMemoryStore(), func() {}, nil

	case config.BackendPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Up(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("postgres storage ready")
		return postgres.NewKVStore(pool, postgres.NewTransactor(pool)), pool.Close, nil

	default:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite storage ready", zap.String("path", cfg.Storage.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	}
}

// newApp opens storage, runs the kv schema check and wires the services.
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	action, err := kv.NewMigrator(store, kv.VersionCurrent, kv.DefaultPolicy(cfg.Storage.Owner), log).Run(ctx)
	if err != nil {
		// Records keep working under the old marker; the check runs again next start.
		log.Error("kv schema migration failed", zap.Error(err))
	} else {
		log.Info("kv schema checked", zap.Stringer("action", action))
	}

	catalog := quran.NewCatalog()
	if cfg.Quran.CatalogPath != "" {
		if catalog, err = quran.LoadCatalog(cfg.Quran.CatalogPath); err != nil {
			closer()
			return nil, err
		}
	}

	safe := kv.NewSafeStore(store, log)
	writer := kv.NewAsyncWriter(safe, log)
	clock := service.SystemClock

	a := &app{
		cfg:     cfg,
		logger:  log,
		store:   store,
		writer:  writer,
		closer:  closer,
		catalog: catalog,
		content: quran.NewClient(cfg.Quran.BaseURL, cfg.Quran.Timeout),
	}

	a.preferences = service.NewPreferenceStore(safe, writer, catalog, clock, log)
	a.progress = service.NewProgressTracker(safe, writer, a.preferences, clock, log)
	a.streak = service.NewStreakTracker(safe, writer, a.preferences, clock, log)
	a.bookmarks = service.NewBookmarkStore(safe, writer, clock, log)
	a.sessions = service.NewSessionManager(a.progress, clock, nil, cfg.Reading.IdleTimeout, log)
	a.dashboard = service.NewDashboard(a.progress, a.streak, a.preferences)
	a.reading = service.NewReadingService(a.content, catalog, a.progress, a.streak, a.sessions, a.preferences, a.bookmarks, log)
	a.subscriptions = service.NewSubscriptions(a.preferences, clock, log)

	var google service.CodeExchanger
	if cfg.Auth.GoogleClientID != "" {
		google = auth.NewGoogleOAuth(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL)
	}
	provider := auth.NewFirebase(cfg.Auth.FirebaseBaseURL, cfg.Auth.FirebaseAPIKey, cfg.Auth.Timeout)
	a.auth = service.NewAuthService(provider, google, a.preferences, a.streak, a.sessions, cfg.Auth.TokenTTL, log)

	return a, nil
}

func (a *app) api() *httpapi.API {
	return httpapi.New(httpapi.Services{
		Auth:          a.auth,
		Reading:       a.reading,
		Sessions:      a.sessions,
		Dashboard:     a.dashboard,
		Progress:      a.progress,
		Streak:        a.streak,
		Preferences:   a.preferences,
		Bookmarks:     a.bookmarks,
		Subscriptions: a.subscriptions,
		Content:       a.content,
	}, a.logger)
}

// close ends running sessions with a final flush and drains pending writes
// before the backend is closed.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.sessions.StopAll(ctx)
	if err := a.writer.Close(ctx); err != nil {
		a.logger.Error("drain pending writes", zap.Error(err))
	}
	a.closer()
	_ = a.logger.Sync()
}
