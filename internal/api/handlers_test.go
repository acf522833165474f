package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/save"
)

const testSession = "3f1c9a2e-8b4d-4c6a-9e2f-1a2b3c4d5e6f"

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestServer wraps a day-1 game with no hot/cold pair and no random events.
func newTestServer(t *testing.T, hub *Hub) (*Server, *save.Store) {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	g, err := game.Restore(cat, game.NewGameState(cat), game.WithSeed(1), game.WithEventChance(0))
	require.NoError(t, err)

	store := save.NewStore(filepath.Join(t.TempDir(), "save.json"), nil)
	return NewServer(g, store, testSession, hub, quietLogger()), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGetStatus(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s.Routes(), http.MethodGet, "/api/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	st := decodeBody[game.Status](t, rec)
	assert.Equal(t, 100, st.Money)
	assert.Equal(t, "metro", st.Location)
	assert.Equal(t, 1, st.Day)
}

func TestBuyAndSell(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/buy", `{"commodity_id":"coffee","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[ActionResponse](t, rec)
	assert.Equal(t, "Bought 2 for $72", resp.Receipt.Message)
	assert.Equal(t, 28, resp.Status.Money)
	assert.Equal(t, 2, resp.Status.CargoUsed)

	rec = do(t, h, http.MethodPost, "/api/sell", `{"commodity_id":"coffee","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decodeBody[ActionResponse](t, rec)
	assert.Equal(t, 1, resp.Status.Trades)
	assert.Equal(t, 0, resp.Status.CargoUsed)
}

func TestRejectionsMapToStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"too expensive", http.MethodPost, "/api/buy", `{"commodity_id":"electronics","quantity":2}`, http.StatusPaymentRequired},
		{"zero quantity", http.MethodPost, "/api/buy", `{"commodity_id":"coffee","quantity":0}`, http.StatusBadRequest},
		{"nothing to sell", http.MethodPost, "/api/sell", `{"commodity_id":"coffee","quantity":1}`, http.StatusConflict},
		{"bad json", http.MethodPost, "/api/buy", `{"commodity_id":`, http.StatusBadRequest},
		{"unknown destination", http.MethodPost, "/api/travel", `{"destination_id":"atlantis"}`, http.StatusNotFound},
		{"unknown part", http.MethodPost, "/api/parts/buy", `{"id":"warp_drive"}`, http.StatusNotFound},
		{"vehicle too expensive", http.MethodPost, "/api/vehicles/buy", `{"id":"car"}`, http.StatusPaymentRequired},
		{"current vehicle", http.MethodPost, "/api/vehicles/buy", `{"id":"bicycle"}`, http.StatusConflict},
		{"equip unowned", http.MethodPost, "/api/parts/equip", `{"id":"fuel_saver"}`, http.StatusForbidden},
		{"unknown market", http.MethodGet, "/api/market/atlantis", "", http.StatusNotFound},
		{"bad scanner limit", http.MethodGet, "/api/scanner?limit=-1", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil)
			rec := do(t, s.Routes(), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())

			body := decodeBody[errorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestStateUnchangedAfterRejection(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()
	before := decodeBody[game.GameState](t, do(t, h, http.MethodGet, "/api/state", ""))

	do(t, h, http.MethodPost, "/api/buy", `{"commodity_id":"electronics","quantity":50}`)

	after := decodeBody[game.GameState](t, do(t, h, http.MethodGet, "/api/state", ""))
	assert.Equal(t, before, after)
}

func TestMarketEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()

	local := decodeBody[[]game.MarketPrice](t, do(t, h, http.MethodGet, "/api/market", ""))
	assert.Len(t, local, 5, "only the universal commodities before any region unlock")

	port := decodeBody[[]game.MarketPrice](t, do(t, h, http.MethodGet, "/api/market/port", ""))
	var coffee game.MarketPrice
	for _, p := range port {
		if p.CommodityID == "coffee" {
			coffee = p
		}
	}
	assert.Equal(t, 24, coffee.BuyPrice)
	assert.Equal(t, game.TrendCheap, coffee.Trend)
}

func TestTravel(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()

	quote := decodeBody[TravelQuoteResponse](t, do(t, h, http.MethodGet, "/api/travel/port", ""))
	assert.Equal(t, 38, quote.EnergyCost)
	assert.True(t, quote.CanAfford)

	rec := do(t, h, http.MethodPost, "/api/travel", `{"destination_id":"port"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[ActionResponse](t, rec)
	assert.Equal(t, "port", resp.Status.Location)
	assert.Equal(t, 62, resp.Status.Energy)
}

func TestRestAndEvents(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/rest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ActionResponse](t, rec)
	assert.Equal(t, "Day 2 begins", resp.Receipt.Message)
	assert.Equal(t, 2, resp.Status.Day)

	events := decodeBody[EventsResponse](t, do(t, h, http.MethodGet, "/api/events", ""))
	assert.Empty(t, events.Active)
}

func TestScannerLimit(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Routes()

	all := decodeBody[[]game.Opportunity](t, do(t, h, http.MethodGet, "/api/scanner?limit=0", ""))
	top := decodeBody[[]game.Opportunity](t, do(t, h, http.MethodGet, "/api/scanner?limit=3", ""))
	require.NotEmpty(t, all)
	assert.Len(t, top, min(3, len(all)))
	assert.Equal(t, all[:len(top)], top)

	def := decodeBody[[]game.Opportunity](t, do(t, h, http.MethodGet, "/api/scanner", ""))
	assert.Len(t, def, min(defaultScannerLimit, len(all)))
}

func TestSaveEndpoint(t *testing.T) {
	s, store := newTestServer(t, nil)
	h := s.Routes()

	do(t, h, http.MethodPost, "/api/buy", `{"commodity_id":"coffee","quantity":1}`)
	rec := do(t, h, http.MethodPost, "/api/save", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, testSession, snap.SessionID)
	assert.Equal(t, 64, snap.Money)
	assert.Equal(t, 1, snap.CargoQuantity("coffee"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s.Routes(), http.MethodOptions, "/api/buy", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWatchersReceiveTrades(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(quietLogger())
	go hub.Run(ctx)

	s, _ := newTestServer(t, hub)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/buy", "application/json", strings.NewReader(`{"commodity_id":"coffee","quantity":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string         `json:"type"`
		Sender  string         `json:"sender"`
		Payload ActionResponse `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "trade", msg.Type)
	assert.Equal(t, testSession, msg.Sender)
	assert.Equal(t, "Bought 1 for $36", msg.Payload.Receipt.Message)
}

func TestPublishWithoutWatchersNeverBlocks(t *testing.T) {
	hub := NewHub(quietLogger())
	for range broadcastQueue * 2 {
		hub.Publish("state", "s", map[string]int{"day": 1})
	}
}
