/*
Package game
File: errors.go
Description:
    Rejected actions are ordinary values, never panics. Every rejection carries
    one of the sentinel kinds below (for errors.Is) and a message the player
    can read directly.
*/

package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoCargoSpace      = errors.New("not enough cargo space")
	ErrNotEnoughCargo    = errors.New("not enough cargo")
	ErrNotEnoughEnergy   = errors.New("not enough energy")
	ErrRegionLocked      = errors.New("region locked")
	ErrNoRoute           = errors.New("no route")
	ErrRailRestricted    = errors.New("off the rail network")
	ErrNotOwned          = errors.New("not owned")
	ErrTierTooLow        = errors.New("vehicle tier too low")
	ErrSlotsFull         = errors.New("part slots full")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrNotFound          = errors.New("not found")
	ErrGameOver          = errors.New("game over")
)

// Rejection is returned when an action is refused. No state was changed.
type Rejection struct {
	Kind    error  // One of the Err* sentinels
	Message string // Human readable reason
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return r.Kind }

func reject(kind error, format string, args ...any) error {
	return &Rejection{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Receipt describes a successful action.
type Receipt struct {
	Message string `json:"message"`
	Amount  int    `json:"amount,omitempty"` // Money moved by the action
	Profit  int    `json:"profit,omitempty"` // Realized profit, sells only
}
