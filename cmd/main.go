package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strangerlink/backend/internal/app"
	"strangerlink/backend/internal/config"
	"strangerlink/backend/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var opts config.Options

var rootCmd = &cobra.Command{
	Use:          "strangerlink",
	Short:        "Anonymous one-to-one matchmaking and relay server",
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "path to a TOML config file")
	f.StringVar(&opts.EnvFile, "env-file", "", "path to a .env file (default .env)")
	f.StringVarP(&opts.Port, "port", "p", "", "HTTP port")
	f.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error")
	f.DurationVar(&opts.PresenceInterval, "presence-interval", 0, "online-count broadcast interval")
	f.StringVar(&opts.DatabaseDSN, "database-dsn", "", "PostgreSQL DSN for room diagnostics")
	f.StringVar(&opts.RedisAddr, "redis-addr", "", "Redis address for the presence counter")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	logging.Init(cfg.LogLevel)
	if logging.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr())
		errCh <- a.Run()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			slog.Error("server stopped", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
