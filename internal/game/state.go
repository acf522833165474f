/*
Package game
File: state.go
Description:
    Manages the runtime state of a single play session.

    GameState is the flat record that goes into the save snapshot: the player's
    wallet, position, vehicle, cargo and upgrades, plus the market memory
    (saturation ledger, active events, event log, weekly hot/cold).

    It also handles the new-game initialization logic.
*/

package game

import (
	"fmt"
	"maps"
	"slices"
)

// GameState is owned by exactly one Game. Nothing else writes to it.
type GameState struct {
	Money           int             `json:"money"`
	Day             int             `json:"day"`
	MaxDays         int             `json:"max_days"`
	Energy          int             `json:"energy"`
	MaxEnergy       int             `json:"max_energy"`
	Location        string          `json:"location"` // Location Key the player is at
	Vehicle         string          `json:"vehicle"`  // Vehicle Key currently driven
	Cargo           []CargoItem     `json:"cargo"`
	OwnedParts      []string        `json:"owned_parts"`
	EquippedParts   []string        `json:"equipped_parts"`
	TotalProfit     int             `json:"total_profit"`
	TradesCompleted int             `json:"trades_completed"`
	UnlockedRegions []string        `json:"unlocked_regions"`
	Saturation      Saturation      `json:"market_saturation"`
	ActiveEvents    []ActiveEvent   `json:"active_events"`
	EventLog        []EventLogEntry `json:"event_log"`
	WeeklyStatus    WeeklyStatus    `json:"weekly_status"`
	GameOver        bool            `json:"game_over"`
}

// NewGameState builds day 1 from the catalog's balance settings.
// The weekly status is left empty; NewGame fills it in.
func NewGameState(cat *Catalog) GameState {
	b := cat.Balance
	return GameState{
		Money:           b.StartingMoney,
		Day:             1,
		MaxDays:         b.MaxDays,
		Energy:          b.MaxEnergy,
		MaxEnergy:       b.MaxEnergy,
		Location:        b.StartingLocation,
		Vehicle:         b.StartingVehicle,
		Cargo:           []CargoItem{},
		OwnedParts:      []string{},
		EquippedParts:   []string{},
		UnlockedRegions: slices.Clone(b.StartingRegions),
		Saturation:      Saturation{},
		ActiveEvents:    []ActiveEvent{},
		EventLog:        []EventLogEntry{},
	}
}

// Clone returns a deep copy so callers can read or persist it without aliasing.
func (s GameState) Clone() GameState {
	out := s
	out.Cargo = slices.Clone(s.Cargo)
	out.OwnedParts = slices.Clone(s.OwnedParts)
	out.EquippedParts = slices.Clone(s.EquippedParts)
	out.UnlockedRegions = slices.Clone(s.UnlockedRegions)
	out.Saturation = maps.Clone(s.Saturation)
	out.ActiveEvents = slices.Clone(s.ActiveEvents)
	out.EventLog = slices.Clone(s.EventLog)
	if out.Saturation == nil {
		out.Saturation = Saturation{}
	}
	return out
}

// CargoQuantity returns how many units of a commodity are in the hold.
func (s GameState) CargoQuantity(commodityID string) int {
	for _, c := range s.Cargo {
		if c.CommodityID == commodityID {
			return c.Quantity
		}
	}
	return 0
}

// CargoUsed sums every stack in the hold.
func (s GameState) CargoUsed() int {
	total := 0
	for _, c := range s.Cargo {
		total += c.Quantity
	}
	return total
}

// validateState checks a restored snapshot against the catalog.
// Unknown references mean the save came from a different catalog.
func validateState(cat *Catalog, s GameState) error {
	if _, ok := cat.Location(s.Location); !ok {
		return fmt.Errorf("restore: unknown location %q", s.Location)
	}
	if _, ok := cat.Vehicle(s.Vehicle); !ok {
		return fmt.Errorf("restore: unknown vehicle %q", s.Vehicle)
	}
	if s.Day < 1 || s.MaxDays < 1 || s.MaxEnergy < 1 {
		return fmt.Errorf("restore: day %d of %d with max energy %d is not playable", s.Day, s.MaxDays, s.MaxEnergy)
	}
	for _, c := range s.Cargo {
		if _, ok := cat.Commodity(c.CommodityID); !ok {
			return fmt.Errorf("restore: unknown commodity %q in cargo", c.CommodityID)
		}
		if c.Quantity <= 0 {
			return fmt.Errorf("restore: cargo %q has quantity %d", c.CommodityID, c.Quantity)
		}
	}
	for _, id := range append(slices.Clone(s.OwnedParts), s.EquippedParts...) {
		if _, ok := cat.Part(id); !ok {
			return fmt.Errorf("restore: unknown part %q", id)
		}
	}
	for _, id := range s.EquippedParts {
		if !slices.Contains(s.OwnedParts, id) {
			return fmt.Errorf("restore: part %q is equipped but not owned", id)
		}
	}
	for _, id := range s.UnlockedRegions {
		if _, ok := cat.Region(id); !ok {
			return fmt.Errorf("restore: unknown region %q", id)
		}
	}
	if len(s.ActiveEvents) > maxActiveEvents {
		return fmt.Errorf("restore: %d active events exceeds the limit of %d", len(s.ActiveEvents), maxActiveEvents)
	}
	for _, a := range s.ActiveEvents {
		if _, ok := cat.Event(a.EventID); !ok {
			return fmt.Errorf("restore: unknown event %q", a.EventID)
		}
	}
	return nil
}
