package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/Walehamdi1/QNA/internal/app"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/transport/web"
)

const shutdownTimeout = 10 * time.Second

type configFunc func() *config.Config

func newServeCmd(conf configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), conf())
		},
	}
}

// serve runs the HTTP server until a signal arrives / Lance le serveur HTTP jusqu'au signal d'arrêt
func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logStartupInfo(cfg)

	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()
	container.Start()

	handler := web.NewHandler(container)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      web.NewMux(handler, cfg, container),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(cfg *config.Config) {
	slog.Info("starting qna",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"database", cfg.Database.Type,
	)

	if cfg.RateLimiter.Enabled {
		slog.Info("rate limiter enabled",
			"rps", cfg.RateLimiter.RPS,
			"burst", cfg.RateLimiter.Burst,
			"auth_rps", cfg.RateLimiter.AuthRPS,
			"auth_burst", cfg.RateLimiter.AuthBurst,
		)
	} else {
		slog.Warn("rate limiter is disabled")
	}

	slog.Info("token durations",
		"access_token", cfg.Auth.AccessTokenDuration,
		"refresh_token", cfg.Auth.RefreshTokenDuration,
		"reset_code", cfg.PasswordReset.CodeTTL,
	)
}

func newMigrateCmd(conf configFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(conf(), func(m *migrate.Migrate) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, one step by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				return withMigrate(conf(), func(m *migrate.Migrate) error {
					if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(conf(), func(m *migrate.Migrate) error {
					return printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

// withMigrate opens the database and hands a migrate instance to fn / Ouvre la base et fournit une instance migrate
func withMigrate(cfg *config.Config, fn func(*migrate.Migrate) error) error {
	database, dbType, err := app.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := db.NewMigrate(database, dbType, cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		cmd.Println("no migration applied")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

func newSeedCmd(conf configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin, client and supplier accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *conf()
			cfg.Seed.Enabled = false

			container, err := app.NewContainer(&cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			created, err := container.UserSvc.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("%d account(s) created\n", created)
			return nil
		},
	}
}

func newBackupCmd(conf configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a SQLite snapshot to the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.NewContainer(conf())
			if err != nil {
				return err
			}
			defer container.Close()

			path, err := container.Backup(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}
