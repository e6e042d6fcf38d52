package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *Handler) {
	t.Helper()
	m := metrics.New()
	hub := chathub.NewManagerService(nil, chathub.WithPresenceInterval(time.Hour), chathub.WithMetrics(m))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	h := NewHandler(hub, m, opts)
	r := gin.New()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.Done()
	})
	return srv, h
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestTicket_RoundTrip(t *testing.T) {
	h := NewHandler(nil, nil, Options{JWTSecret: "s3cret", TicketTTL: time.Hour})

	token, err := h.generateJWT("anon-1")
	require.NoError(t, err)

	id, err := h.validateAndGetAnonID(token)
	require.NoError(t, err)
	assert.Equal(t, "anon-1", id)
}

func TestTicket_Rejections(t *testing.T) {
	h := NewHandler(nil, nil, Options{JWTSecret: "s3cret", TicketTTL: time.Hour})
	other := NewHandler(nil, nil, Options{JWTSecret: "different", TicketTTL: time.Hour})

	expired := NewHandler(nil, nil, Options{JWTSecret: "s3cret"})
	expired.ticketTTL = -time.Minute
	expiredToken, err := expired.generateJWT("anon-1")
	require.NoError(t, err)

	foreignToken, err := other.generateJWT("anon-1")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"anon_id": "anon-1",
		"iss":     ticketIssuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"anon_id": "anon-1",
		"iss":     "someone-else",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": ticketIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
		"alg none":     noneToken,
		"wrong issuer": wrongIssuer,
		"no anon id":   noID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.validateAndGetAnonID(token)
			assert.ErrorIs(t, err, errInvalidTicket)
		})
	}
}

func TestGetAnonID(t *testing.T) {
	srv, h := newTestServer(t, Options{})

	var body struct {
		Token  string `json:"token"`
		AnonID string `json:"anon_id"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/anonid", &body))
	require.NotEmpty(t, body.AnonID)

	id, err := h.validateAndGetAnonID(body.Token)
	require.NoError(t, err)
	assert.Equal(t, body.AnonID, id)
}

func TestServeWebSocket_TicketGivesStableID(t *testing.T) {
	srv, h := newTestServer(t, Options{})
	token, err := h.generateJWT("anon-42")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.Event{Type: models.EventJoin}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev models.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventJoined, ev.Type)
	assert.Equal(t, "anon-42", ev.UserID)
}

func TestServeWebSocket_BearerHeader(t *testing.T) {
	srv, h := newTestServer(t, Options{})
	token, err := h.generateJWT("anon-7")
	require.NoError(t, err)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.Event{Type: models.EventJoin}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev models.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "anon-7", ev.UserID)
}

func TestServeWebSocket_InvalidTicket(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=bogus"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWebSocket_OriginCheck(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigins: []string{"https://ok.example"}})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), http.Header{"Origin": []string{"https://ok.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestStatsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.WriteJSON(models.Event{Type: models.EventJoin}))
	require.NoError(t, conn.WriteJSON(models.Event{Type: models.EventFindMatch}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev models.Event
	require.NoError(t, conn.ReadJSON(&ev)) // joined
	require.NoError(t, conn.ReadJSON(&ev)) // waiting-for-match
	require.Equal(t, models.EventWaiting, ev.Type)

	var stats map[string]int
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/stats", &stats))
	assert.Equal(t, map[string]int{"online": 1, "waiting": 1, "rooms": 0}, stats)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `strangerlink_state{name="online"} 1`)
	assert.Contains(t, string(body), `strangerlink_events_total{event="sessions_joined"} 1`)

	var health map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "ok", health["status"])
}

func TestOriginChecker(t *testing.T) {
	anyOrigin := originChecker(nil)
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://x.example")
	assert.True(t, anyOrigin(r))

	strict := originChecker([]string{"https://a.example"})
	assert.False(t, strict(r))
	r.Header.Del("Origin")
	assert.True(t, strict(r), "non-browser clients send no Origin")
}
