/*
Package save
File: store.go
Description:
    Persists a session as one flat JSON snapshot.

    Writes go to a temporary file first and are renamed into place, so a crash
    mid-save never leaves a truncated file behind. Reads never fail loudly: any
    problem is logged and reported as "no save available".
*/

package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/everforgeworks/tradewinds/internal/game"
)

// CurrentVersion is bumped whenever the snapshot layout changes incompatibly.
const CurrentVersion = 1

// Snapshot is the on-disk record. GameState is embedded so its fields sit at the top level.
type Snapshot struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
	game.GameState
}

// Store reads and writes a single save slot.
type Store struct {
	path string
	log  logrus.FieldLogger
}

// NewStore returns a store for path. A nil logger discards output.
func NewStore(path string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{path: path, log: log}
}

// Path is the save file location.
func (s *Store) Path() string { return s.path }

// Save writes the snapshot atomically. A missing session ID is generated.
func (s *Store) Save(snap Snapshot) error {
	snap.Version = CurrentVersion
	if snap.SessionID == "" {
		snap.SessionID = uuid.NewString()
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create save dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.log.WithFields(logrus.Fields{"path": s.path, "session_id": snap.SessionID, "day": snap.Day}).Info("game saved")
	return nil
}

// Load returns the saved snapshot, or false when there is nothing usable.
func (s *Store) Load() (Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WithError(err).Warn("save unreadable")
		}
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Warn("save corrupt")
		return Snapshot{}, false
	}
	if snap.Version != CurrentVersion {
		s.log.WithField("version", snap.Version).Warn("save from an incompatible version")
		return Snapshot{}, false
	}
	if _, err := uuid.Parse(snap.SessionID); err != nil {
		snap.SessionID = uuid.NewString()
	}
	if snap.Saturation == nil {
		snap.Saturation = game.Saturation{}
	}

	s.log.WithFields(logrus.Fields{"path": s.path, "session_id": snap.SessionID, "day": snap.Day}).Info("game loaded")
	return snap, true
}

// Exists reports whether a save file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Delete removes the save. Failures are ignored.
func (s *Store) Delete() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.WithError(err).Debug("delete save failed")
	}
}
