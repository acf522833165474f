/*
Package game
File: saturation.go
Description:
    Tracks local supply/demand pressure created by the player's own trades.

    Selling floods a market (positive saturation, lower prices), buying drains it
    (negative saturation, higher prices). Pressure decays 15% per day and entries
    too small to matter are dropped, so the ledger never accumulates dead keys.
*/

package game

import "math"

const (
	saturationPriceFactor = 0.01 // 1% price swing per unit of saturation
	saturationDecayRate   = 0.15 // 15% decay per day
	maxSaturationEffect   = 0.5  // Cap at +/-50%
	saturationFloor       = 0.5  // Entries at or below this magnitude vanish on decay

	// Buying moves the market less than selling: markets crash faster than they drain.
	buySaturationPerUnit  = 0.3
	sellSaturationPerUnit = 1.0
)

// SaturationLevel is the display category of a saturation accumulator.
type SaturationLevel string

const (
	SaturationFlooded      SaturationLevel = "flooded"
	SaturationOversupplied SaturationLevel = "oversupplied"
	SaturationNormal       SaturationLevel = "normal"
	SaturationScarce       SaturationLevel = "scarce"
	SaturationShortage     SaturationLevel = "shortage"
)

// Saturation maps "locationID:commodityID" -> accumulated pressure.
// The flat string key is what goes into the save snapshot.
type Saturation map[string]float64

// SaturationKey builds the composite ledger key.
func SaturationKey(locationID, commodityID string) string {
	return locationID + ":" + commodityID
}

// Amount returns the raw accumulator (0 when absent).
func (s Saturation) Amount(locationID, commodityID string) float64 {
	return s[SaturationKey(locationID, commodityID)]
}

// Multiplier converts the accumulator into a price factor in [0.5, 1.5].
// Oversupply lowers the price, scarcity raises it.
func (s Saturation) Multiplier(locationID, commodityID string) float64 {
	effect := -s.Amount(locationID, commodityID) * saturationPriceFactor
	effect = math.Max(-maxSaturationEffect, math.Min(maxSaturationEffect, effect))
	return 1 + effect
}

// Add returns a new ledger with delta added to one entry. The receiver is not modified.
func (s Saturation) Add(locationID, commodityID string, delta float64) Saturation {
	out := make(Saturation, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[SaturationKey(locationID, commodityID)] += delta
	return out
}

// RecordPurchase is called when the player buys. Local supply drains toward scarcity.
func (s Saturation) RecordPurchase(locationID, commodityID string, qty int) Saturation {
	return s.Add(locationID, commodityID, -buySaturationPerUnit*float64(qty))
}

// RecordSale is called when the player sells. The local market floods.
func (s Saturation) RecordSale(locationID, commodityID string, qty int) Saturation {
	return s.Add(locationID, commodityID, sellSaturationPerUnit*float64(qty))
}

// Decay "cools down" every entry by one day and drops the insignificant ones.
func (s Saturation) Decay() Saturation {
	out := make(Saturation, len(s))
	for k, v := range s {
		decayed := v * (1 - saturationDecayRate)
		if math.Abs(decayed) > saturationFloor {
			out[k] = decayed
		}
	}
	return out
}

// Level categorizes an entry for display. It has no effect on price.
func (s Saturation) Level(locationID, commodityID string) SaturationLevel {
	amount := s.Amount(locationID, commodityID)
	switch {
	case amount > 30:
		return SaturationFlooded
	case amount > 10:
		return SaturationOversupplied
	case amount < -30:
		return SaturationShortage
	case amount < -10:
		return SaturationScarce
	default:
		return SaturationNormal
	}
}
