package save

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/tradewinds/internal/game"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "slot", "save.json"), nil)
}

func playedState(t *testing.T) game.GameState {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)

	g := game.NewGame(cat, game.WithSeed(8), game.WithEventChance(1))
	_, err = g.AdvanceDay()
	require.NoError(t, err)

	st := g.State()
	st.Money = 1234
	st.Cargo = []game.CargoItem{{CommodityID: "coffee", Quantity: 7, PurchasePrice: 31}}
	st.Saturation = game.Saturation{
		game.SaturationKey("metro", "coffee"): -2.1,
		game.SaturationKey("port", "fuel"):    13.377777,
	}
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	st := playedState(t)
	require.NotEmpty(t, st.Saturation)
	require.NotEmpty(t, st.ActiveEvents)

	require.NoError(t, s.Save(Snapshot{GameState: st}))
	assert.True(t, s.Exists())

	snap, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, CurrentVersion, snap.Version)
	assert.False(t, snap.SavedAt.IsZero())
	_, err := uuid.Parse(snap.SessionID)
	assert.NoError(t, err)

	assert.Equal(t, st, snap.GameState)

	// The restored state must be playable.
	cat, _ := game.DefaultCatalog()
	_, err = game.Restore(cat, snap.GameState)
	assert.NoError(t, err)
}

func TestSnapshotIsFlat(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(Snapshot{SessionID: "keep-me", GameState: playedState(t)}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	for _, field := range []string{`"money"`, `"market_saturation"`, `"active_events"`, `"weekly_status"`, `"session_id": "keep-me"`} {
		assert.Contains(t, string(raw), field)
	}
	assert.NotContains(t, string(raw), `"GameState"`)

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestLoadDegradesGracefully(t *testing.T) {
	s := newStore(t)

	_, ok := s.Load()
	assert.False(t, ok, "missing file")

	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))
	_, ok = s.Load()
	assert.False(t, ok, "corrupt file")

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"version": 99, "money": 5}`), 0o644))
	_, ok = s.Load()
	assert.False(t, ok, "future version")
}

func TestLoadRepairsSessionID(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"version": 1, "session_id": "", "money": 5}`), 0o644))

	snap, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, 5, snap.Money)
	_, err := uuid.Parse(snap.SessionID)
	assert.NoError(t, err)
	assert.NotNil(t, snap.Saturation)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	s.Delete() // nothing there, no panic

	require.NoError(t, s.Save(Snapshot{GameState: playedState(t)}))
	require.True(t, s.Exists())

	s.Delete()
	assert.False(t, s.Exists())
}
