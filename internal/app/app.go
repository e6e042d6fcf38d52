package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"strangerlink/backend/internal/api/handler"
	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/config"
	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/storage"
	"strangerlink/backend/internal/telegram"

	"github.com/gin-gonic/gin"
)

type App struct {
	httpServer *http.Server
	hub        *chathub.ManagerService
	storage    *storage.Service

	stopHub context.CancelFunc
	stopBot context.CancelFunc
	botDone chan struct{}
}

// New wires storage, the hub, the HTTP routes and, when a token is configured,
// the Telegram bot. The hub and bot start immediately; Run only serves HTTP.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	hub := chathub.NewManagerService(store,
		chathub.WithPresenceInterval(cfg.PresenceInterval),
		chathub.WithMetrics(m),
	)

	// The hub outlives the signal context: Shutdown stops it after HTTP has drained.
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	a := &App{
		hub:     hub,
		storage: store,
		stopHub: stopHub,
	}

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBotService(cfg.TelegramBotToken, hub)
		if err != nil {
			_ = a.Shutdown(ctx)
			return nil, err
		}
		botCtx, stopBot := context.WithCancel(context.Background())
		a.stopBot = stopBot
		a.botDone = make(chan struct{})
		go func() {
			defer close(a.botDone)
			bot.Run(botCtx)
		}()
	}

	h := handler.NewHandler(hub, m, handler.Options{
		JWTSecret:      cfg.JWTSecret,
		TicketTTL:      cfg.TicketTTL,
		ClientBuffer:   cfg.ClientBuffer,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	h.RegisterRoutes(router)

	a.httpServer = &http.Server{
		Addr:           cfg.Addr(),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return a, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run serves HTTP until Shutdown is called.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, then stops the bot and the hub (which
// closes every room and client), then closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if a.stopBot != nil {
		a.stopBot()
		select {
		case <-a.botDone:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("telegram shutdown: %w", ctx.Err()))
		}
	}

	a.stopHub()
	select {
	case <-a.hub.Done():
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("hub shutdown: %w", ctx.Err()))
	}

	if err := a.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}

	slog.Info("shutdown complete")
	return errors.Join(errs...)
}
