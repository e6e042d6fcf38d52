package handler

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/metrics"

	"github.com/gorilla/websocket"
)

// Options configures a Handler.
type Options struct {
	JWTSecret      string
	TicketTTL      time.Duration
	ClientBuffer   int
	AllowedOrigins []string
}

// Handler містить посилання на ChatHub
type Handler struct {
	Hub     *chathub.ManagerService
	Metrics *metrics.Metrics

	jwtSecret    []byte
	ticketTTL    time.Duration
	clientBuffer int
	upgrader     websocket.Upgrader
}

func NewHandler(hub *chathub.ManagerService, m *metrics.Metrics, opts Options) *Handler {
	secret := []byte(opts.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		slog.Warn("JWT_SECRET not set, tickets will not survive a restart")
	}
	ttl := opts.TicketTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	return &Handler{
		Hub:          hub,
		Metrics:      m,
		jwtSecret:    secret,
		ticketTTL:    ttl,
		clientBuffer: opts.ClientBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
}

// originChecker allows any origin when allowed is empty. Requests without an
// Origin header (non-browser clients) are always allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
