package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/tilawah-daily-bot/internal/config"
	"github.com/aliskhannn/tilawah-daily-bot/internal/delivery/telegram"
	"github.com/aliskhannn/tilawah-daily-bot/internal/infra/postgres"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tilawah",
		Short:         "Daily Quran reading companion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newBotCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newMigrateCmd())
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newBotCmd() *cobra.Command {
	var withAPI bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and daily reminders",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.cfg.RequireTelegram(); err != nil {
				return err
			}

			bot, err := tgbotapi.NewBotAPI(a.cfg.TelegramAPIToken)
			if err != nil {
				return fmt.Errorf("telegram login: %w", err)
			}
			bot.Debug = a.cfg.Env != "production"
			a.logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

			if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands...)); err != nil {
				a.logger.Warn("failed to set bot commands", zap.Error(err))
			}

			handler := telegram.NewHandler(
				bot,
				a.logger,
				a.reading,
				a.dashboard,
				a.streak,
				a.preferences,
				a.bookmarks,
				a.catalog,
				storage.NewReminderStorage(nil),
			)

			scheduler := service.NewReminderScheduler(a.streak, a.dashboard, a.preferences, a.logger)
			scheduler.SetNotifier(handler)
			scheduler.Watch(telegram.ChatForUser)
			scheduler.Restore(ctx, telegram.ChatForUser)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				scheduler.Start(ctx)
				return nil
			})
			g.Go(func() error {
				return handler.Run(ctx)
			})
			if withAPI {
				g.Go(func() error {
					return a.api().Serve(ctx, a.cfg.HTTP.Addr, a.cfg.HTTP.ShutdownTimeout)
				})
			}

			err = g.Wait()
			bot.StopReceivingUpdates()
			a.logger.Info("bot stopped")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&withAPI, "api", false, "also serve the HTTP API")
	return cmd
}

func newAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			return a.api().Serve(ctx, a.cfg.HTTP.Addr, a.cfg.HTTP.ShutdownTimeout)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema and the kv record migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store, closer, err := openStore(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer closer()

			action, err := kv.NewMigrator(store, kv.VersionCurrent, kv.DefaultPolicy(cfg.Storage.Owner), log).Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kv schema %s: %s\n", kv.VersionCurrent, action)
			return nil
		},
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the SQL migration status (postgres only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Storage.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate status needs the %s backend, configured %q", config.BackendPostgres, cfg.Storage.Backend)
			}
			dsn, err := cfg.DB.DSN()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{})
			if err != nil {
				return err
			}
			defer pool.Close()

			return postgres.Status(ctx, pool)
		},
	})

	return migrate
}
