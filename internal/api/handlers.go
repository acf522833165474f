/*
Package api
File: handlers.go
Description:
    HTTP handlers for the headless server mode. They decode JSON requests,
    call into the game, and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid?)
    - Serialization (One request runs against the game at a time, under Server.mu)
    - Mapping game rejections to 4xx status codes
    - Publishing the new state to WebSocket watchers after every mutation
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/save"
)

const defaultScannerLimit = 10

// Request DTOs

type TradeRequest struct {
	CommodityID string `json:"commodity_id"`
	Quantity    int    `json:"quantity"`
}

type TravelRequest struct {
	DestinationID string `json:"destination_id"`
}

// IDRequest is shared by the vehicle, part, and region endpoints.
type IDRequest struct {
	ID string `json:"id"`
}

// Response DTOs

type ActionResponse struct {
	Receipt game.Receipt `json:"receipt"`
	Status  game.Status  `json:"status"`
}

type TravelQuoteResponse struct {
	DestinationID string `json:"destination_id"`
	EnergyCost    int    `json:"energy_cost"`
	CanAfford     bool   `json:"can_afford"`
}

type EventsResponse struct {
	Active []game.ActiveEvent   `json:"active"`
	Log    []game.EventLogEntry `json:"log"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wraps one game session for HTTP access.
type Server struct {
	mu        sync.Mutex
	game      *game.Game
	store     *save.Store
	sessionID string
	hub       *Hub
	log       logrus.FieldLogger
}

// NewServer builds a server around an existing session. store, hub and log may be nil.
func NewServer(g *game.Game, store *save.Store, sessionID string, hub *Hub, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Server{game: g, store: store, sessionID: sessionID, hub: hub, log: log}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Get("/status", s.handleGetStatus)
		r.Get("/market", s.handleGetLocalMarket)
		r.Get("/market/{locationID}", s.handleGetMarket)
		r.Get("/scanner", s.handleGetScanner)
		r.Get("/events", s.handleGetEvents)
		r.Get("/travel/{destinationID}", s.handleTravelQuote)

		r.Post("/buy", s.handleBuy)
		r.Post("/sell", s.handleSell)
		r.Post("/travel", s.handleTravel)
		r.Post("/rest", s.handleRest)
		r.Post("/vehicles/buy", s.handleIDAction(func(g *game.Game, id string) (game.Receipt, error) { return g.BuyVehicle(id) }))
		r.Post("/parts/buy", s.handleIDAction(func(g *game.Game, id string) (game.Receipt, error) { return g.BuyPart(id) }))
		r.Post("/parts/equip", s.handleIDAction(func(g *game.Game, id string) (game.Receipt, error) { return g.EquipPart(id) }))
		r.Post("/parts/unequip", s.handleIDAction(func(g *game.Game, id string) (game.Receipt, error) { return g.UnequipPart(id) }))
		r.Post("/regions/unlock", s.handleIDAction(func(g *game.Game, id string) (game.Receipt, error) { return g.UnlockRegion(id) }))
		r.Post("/save", s.handleSave)
	})

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeWs)
	}
	return r
}

// --- Reads ---

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.Status())
}

func (s *Server) handleGetLocalMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.LocalMarket())
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.game.Catalog().Location(locationID); !ok {
		writeError(w, http.StatusNotFound, "Location not found")
		return
	}
	writeJSON(w, http.StatusOK, s.game.MarketPrices(locationID))
}

// handleGetScanner accepts ?limit=N; 0 returns every route.
func (s *Server) handleGetScanner(w http.ResponseWriter, r *http.Request) {
	limit := defaultScannerLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.Scanner(limit))
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.game.State()
	writeJSON(w, http.StatusOK, EventsResponse{Active: st.ActiveEvents, Log: st.EventLog})
}

// handleTravelQuote is a pre-trip check: what would the trip cost right now?
func (s *Server) handleTravelQuote(w http.ResponseWriter, r *http.Request) {
	destinationID := chi.URLParam(r, "destinationID")

	s.mu.Lock()
	defer s.mu.Unlock()

	cost, ok := s.game.TravelCost(destinationID)
	if !ok {
		writeError(w, http.StatusNotFound, "Destination invalid")
		return
	}
	writeJSON(w, http.StatusOK, TravelQuoteResponse{
		DestinationID: destinationID,
		EnergyCost:    cost,
		CanAfford:     s.game.State().Energy >= cost,
	})
}

// --- Actions ---

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, "trade", func(g *game.Game) (game.Receipt, error) { return g.Buy(req.CommodityID, req.Quantity) })
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, "trade", func(g *game.Game) (game.Receipt, error) { return g.Sell(req.CommodityID, req.Quantity) })
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	var req TravelRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, "travel", func(g *game.Game) (game.Receipt, error) { return g.Travel(req.DestinationID) })
}

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	s.act(w, "day_advanced", func(g *game.Game) (game.Receipt, error) { return g.Rest() })
}

func (s *Server) handleIDAction(fn func(*game.Game, string) (game.Receipt, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IDRequest
		if !decode(w, r, &req) {
			return
		}
		s.act(w, "state", func(g *game.Game) (game.Receipt, error) { return fn(g, req.ID) })
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "Saving is disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(); err != nil {
		s.log.WithError(err).Error("save failed")
		writeError(w, http.StatusInternalServerError, "Save failed")
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Receipt: game.Receipt{Message: "Game saved"}, Status: s.game.Status()})
}

// act runs one mutation under the lock, answers the request, and publishes the result.
func (s *Server) act(w http.ResponseWriter, msgType string, fn func(*game.Game) (game.Receipt, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, err := fn(s.game)
	if err != nil {
		var rej *game.Rejection
		if errors.As(err, &rej) {
			writeError(w, statusFor(err), rej.Message)
			return
		}
		s.log.WithError(err).Error("action failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	resp := ActionResponse{Receipt: receipt, Status: s.game.Status()}
	writeJSON(w, http.StatusOK, resp)

	if s.hub != nil {
		s.hub.Publish(msgType, s.sessionID, resp)
	}
}

// statusFor maps a rejection kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrNotEnoughEnergy):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrRegionLocked), errors.Is(err, game.ErrRailRestricted),
		errors.Is(err, game.ErrTierTooLow), errors.Is(err, game.ErrNotOwned):
		return http.StatusForbidden
	case errors.Is(err, game.ErrNoCargoSpace), errors.Is(err, game.ErrSlotsFull),
		errors.Is(err, game.ErrAlreadyOwned), errors.Is(err, game.ErrNotEnoughCargo),
		errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidQuantity), errors.Is(err, game.ErrNoRoute):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// --- Plumbing ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": ww.Status(),
		}).Debug("http request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS, POST")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
