/*
Package api
File: server.go
Description:
    Lifecycle of the headless server: listening with graceful shutdown, the
    market pulse that keeps watchers' boards fresh, and saving on demand.
*/

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/save"
)

const shutdownTimeout = 5 * time.Second

// MarketPulse is the payload of a "market_pulse" message.
type MarketPulse struct {
	Status game.Status        `json:"status"`
	Market []game.MarketPrice `json:"market"`
	Events []game.ActiveEvent `json:"events"`
	Top    []game.Opportunity `json:"top_routes"`
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// RunPulse publishes a market_pulse every interval until ctx is cancelled.
func (s *Server) RunPulse(ctx context.Context, interval time.Duration) {
	if s.hub == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.hub.Publish("market_pulse", s.sessionID, s.Pulse())
		}
	}
}

// Pulse snapshots what a watcher's dashboard shows.
func (s *Server) Pulse() MarketPulse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MarketPulse{
		Status: s.game.Status(),
		Market: s.game.LocalMarket(),
		Events: s.game.State().ActiveEvents,
		Top:    s.game.Scanner(3),
	}
}

// Save writes the current session to the store.
func (s *Server) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Server) saveLocked() error {
	if s.store == nil {
		return errors.New("saving is disabled")
	}
	return s.store.Save(save.Snapshot{SessionID: s.sessionID, GameState: s.game.State()})
}
