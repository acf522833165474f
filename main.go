/*
Package main
File: main.go
Description: Entry point. Loads configuration and the catalog, resumes or starts
a session, then hands it to the terminal driver or, with --serve, to the
HTTP/WebSocket server.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/everforgeworks/tradewinds/internal/api"
	"github.com/everforgeworks/tradewinds/internal/config"
	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/logging"
	"github.com/everforgeworks/tradewinds/internal/save"
	"github.com/everforgeworks/tradewinds/internal/terminal"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tradewinds:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Flags and configuration
	fs := pflag.NewFlagSet("tradewinds", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	// 2. Logging. The terminal owns stdout; the server may log to stderr.
	var fallback io.Writer
	if cfg.Serve {
		fallback = os.Stderr
	}
	logger, closer, err := logging.New(cfg.Log, fallback)
	if err != nil {
		return err
	}
	defer closer.Close()

	// 3. Catalog
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	// 4. Session
	store := save.NewStore(cfg.SavePath, logger)
	newGame := func() *game.Game {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		logger.WithField("seed", seed).Info("seeding new game")
		return game.NewGame(cat, gameOptions(cfg, logger, seed)...)
	}
	g, sessionID := openSession(cat, store, cfg, logger, newGame)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Mode
	if cfg.Serve {
		return serve(ctx, cfg, logger, g, store, sessionID)
	}
	ui := terminal.New(g, sessionID, newGame, os.Stdin, os.Stdout,
		terminal.WithStore(store),
		terminal.WithLogger(logger),
		terminal.WithColor(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())),
	)
	return ui.Run(ctx)
}

func loadCatalog(path string) (*game.Catalog, error) {
	if path == "" {
		return game.DefaultCatalog()
	}
	return game.LoadCatalogFile(path)
}

func gameOptions(cfg *config.Config, logger logrus.FieldLogger, seed uint64) []game.Option {
	return []game.Option{
		game.WithSeed(seed),
		game.WithEventChance(cfg.EventChance),
		game.WithMaxDays(cfg.MaxDays),
		game.WithLogger(logger),
	}
}

// openSession resumes the saved game when there is a usable one, otherwise starts fresh.
func openSession(cat *game.Catalog, store *save.Store, cfg *config.Config, logger logrus.FieldLogger, newGame terminal.NewGameFunc) (*game.Game, string) {
	if !cfg.NewGame {
		if snap, ok := store.Load(); ok && !snap.GameOver {
			seed := cfg.Seed
			if seed == 0 {
				seed = rand.Uint64()
			}
			g, err := game.Restore(cat, snap.GameState, gameOptions(cfg, logger, seed)...)
			if err == nil {
				return g, snap.SessionID
			}
			logger.WithError(err).Warn("save does not match the catalog, starting a new game")
		}
	}

	sessionID := uuid.NewString()
	logger.WithField("session_id", sessionID).Info("new session")
	return newGame(), sessionID
}

// serve runs the headless server until ctx is cancelled. SIGHUP saves the session.
func serve(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, g *game.Game, store *save.Store, sessionID string) error {
	hub := api.NewHub(logger)
	go hub.Run(ctx)

	srv := api.NewServer(g, store, sessionID, hub, logger)
	go srv.RunPulse(ctx, cfg.Server.PulseInterval)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				logger.Info("SIGHUP: saving session")
				if err := srv.Save(); err != nil {
					logger.WithError(err).Error("save failed")
				}
			}
		}
	}()

	err := srv.ListenAndServe(ctx, cfg.Server.Addr)
	if saveErr := srv.Save(); saveErr != nil {
		logger.WithError(saveErr).Error("final save failed")
	}
	return err
}
