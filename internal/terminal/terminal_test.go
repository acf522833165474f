package terminal

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/save"
)

const testSession = "0b6c1f4e-2d7a-4e39-8f51-6a7c2b9d0e13"

type harness struct {
	ui    *UI
	out   *bytes.Buffer
	store *save.Store
}

// play runs a UI over a quiet day-1 game fed with the given input lines.
func play(t *testing.T, mutate func(*game.GameState), input ...string) harness {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	st := game.NewGameState(cat)
	if mutate != nil {
		mutate(&st)
	}
	g, err := game.Restore(cat, st, game.WithSeed(1), game.WithEventChance(0))
	require.NoError(t, err)

	h := harness{
		out:   &bytes.Buffer{},
		store: save.NewStore(filepath.Join(t.TempDir(), "save.json"), nil),
	}
	newGame := func() *game.Game { return game.NewGame(cat, game.WithSeed(3), game.WithEventChance(0)) }
	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	h.ui = New(g, testSession, newGame, in, h.out, WithStore(h.store))

	require.NoError(t, h.ui.Run(context.Background()))
	return h
}

func TestBuyThenQuitSaves(t *testing.T) {
	h := play(t, nil, "buy coffee 2", "quit")

	assert.Contains(t, h.out.String(), "Bought 2 for $72")
	assert.Contains(t, h.out.String(), "Goodbye!")

	snap, ok := h.store.Load()
	require.True(t, ok)
	assert.Equal(t, testSession, snap.SessionID)
	assert.Equal(t, 2, snap.CargoQuantity("coffee"))
	assert.Equal(t, 28, snap.Money)
}

func TestEndOfInputAutosaves(t *testing.T) {
	h := play(t, nil, "buy Coffee max")

	snap, ok := h.store.Load()
	require.True(t, ok)
	assert.Equal(t, 2, snap.CargoQuantity("coffee"), "names resolve case-insensitively")
}

func TestSellAll(t *testing.T) {
	h := play(t, func(st *game.GameState) {
		st.Cargo = []game.CargoItem{{CommodityID: "coffee", Quantity: 3, PurchasePrice: 20}}
	}, "sell coffee all")

	// Metro coffee sells for 31.
	assert.Contains(t, h.out.String(), "Sold for $93 (+$33)")
	snap, _ := h.store.Load()
	assert.Equal(t, 0, snap.CargoQuantity("coffee"))
}

func TestRejectionsAreShown(t *testing.T) {
	h := play(t, nil,
		"buy electronics 5",
		"sell coffee 1",
		"buy coffee lots",
		"buy silk 1",
		"travel atlantis",
		"dance",
	)
	out := h.out.String()
	assert.Contains(t, out, "Not enough money")
	assert.Contains(t, out, "Not enough to sell")
	assert.Contains(t, out, `"lots" is not a quantity`)
	assert.Contains(t, out, `"silk" is not traded here`)
	assert.Contains(t, out, `unknown destination "atlantis"`)
	assert.Contains(t, out, `Unknown command "dance"`)
}

func TestTravel(t *testing.T) {
	h := play(t, nil, "travel", "travel port", "stats")
	out := h.out.String()

	assert.Contains(t, out, "Routes from Metro City")
	assert.Contains(t, out, "Port Town")
	assert.Contains(t, out, "Traveled to Port Town")
	assert.Contains(t, out, "Energy: 62/100")
}

func TestViews(t *testing.T) {
	h := play(t, nil, "help", "market", "upgrade", "regions", "scan", "events", "stats")
	out := h.out.String()

	for _, want := range []string{
		"buy <commodity> <qty|max>",
		"Market at Metro City",
		"Vehicles",
		"Parts (0/3 slots used",
		"unlocked",
		"COMMODITY",
		"Markets are calm.",
		"Net worth:",
		"Cargo hold is empty.",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\033[", "no colors unless asked")
}

func TestRestShowsNewDay(t *testing.T) {
	h := play(t, func(st *game.GameState) { st.Energy = 3 }, "rest")
	out := h.out.String()

	assert.Contains(t, out, "Day 2 begins")
	assert.Contains(t, out, "Energy: 100/100")
}

func TestSeasonEndAndDecline(t *testing.T) {
	cat, _ := game.DefaultCatalog()
	h := play(t, func(st *game.GameState) { st.Day = cat.Balance.MaxDays }, "save", "rest", "n")
	out := h.out.String()

	assert.Contains(t, out, "GAME OVER")
	assert.Contains(t, out, "Struggling Peddler")
	assert.Contains(t, out, "Final score:")
	assert.Contains(t, out, "Play again? (y/n)")
	assert.Contains(t, out, "Thanks for playing!")
	assert.False(t, h.store.Exists(), "a finished season leaves no save behind")
}

func TestSeasonEndAndPlayAgain(t *testing.T) {
	cat, _ := game.DefaultCatalog()
	h := play(t, func(st *game.GameState) {
		st.Day = cat.Balance.MaxDays
		st.Money = 5000
	}, "rest", "y", "quit")

	assert.Contains(t, h.out.String(), "Aspiring Entrepreneur")
	assert.Equal(t, 1, h.ui.Game().Status().Day)
	assert.False(t, h.ui.Game().Status().GameOver)

	snap, ok := h.store.Load()
	require.True(t, ok, "the new session is saved on quit")
	assert.NotEqual(t, testSession, snap.SessionID)
	assert.Equal(t, 1, snap.Day)
}

func TestCancelSaves(t *testing.T) {
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	g := game.NewGame(cat, game.WithSeed(5))
	store := save.NewStore(filepath.Join(t.TempDir(), "save.json"), nil)

	pr, pw := io.Pipe()
	defer pw.Close()
	ui := New(g, testSession, nil, pr, io.Discard, WithStore(store))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ui.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored cancellation")
	}
	assert.True(t, store.Exists())
}

func TestColor(t *testing.T) {
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	var out bytes.Buffer
	ui := New(game.NewGame(cat), testSession, nil, strings.NewReader("market\n"), &out, WithColor(true))
	require.NoError(t, ui.Run(context.Background()))
	assert.Contains(t, out.String(), ansiReset)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", money(0))
	assert.Equal(t, "$1,234,567", money(1234567))
	assert.Equal(t, "-$50", money(-50))
	assert.Equal(t, "+$1,200", signedMoney(1200))
	assert.Equal(t, "-$8", signedMoney(-8))
}
