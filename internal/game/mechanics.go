/*
Package game
File: mechanics.go
Description:
    Contains the "physics" and upgrade rules of the road.
    This includes cargo capacity, travel energy, rail restrictions, vehicle
    and part purchases, and region unlocks.
    It serves as the rules engine for the physical aspects of the game.
*/

package game

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
)

const (
	maxPartSlots  = 3
	bulkThreshold = 20  // Units per sale before bulk_bonus kicks in
	resaleFactor  = 0.5 // Vehicles count at half their price in net worth
)

// vehicle returns the vehicle currently driven. State is validated on entry,
// so the lookup only fails on a programming error.
func (g *Game) vehicle() Vehicle {
	v, _ := g.cat.Vehicle(g.state.Vehicle)
	return v
}

// equipped returns the catalog entries of every equipped part.
func (g *Game) equipped() []VehiclePart {
	parts := make([]VehiclePart, 0, len(g.state.EquippedParts))
	for _, id := range g.state.EquippedParts {
		if p, ok := g.cat.Part(id); ok {
			parts = append(parts, p)
		}
	}
	return parts
}

// Capacity is the vehicle's hold plus every equipped capacity part.
func (g *Game) Capacity() int {
	total := g.vehicle().Capacity
	for _, p := range g.equipped() {
		if p.Effect.Type == EffectCapacity {
			total += int(p.Effect.Value)
		}
	}
	return total
}

// capacityFor applies the tanker's liquid bonus on top of Capacity.
func (g *Game) capacityFor(cm Commodity) int {
	capacity := g.Capacity()
	spec := g.vehicle().Specialty
	if cm.Liquid && spec != nil && spec.Type == SpecialtyLiquidBonus {
		capacity += int(math.Floor(float64(capacity) * float64(spec.Value) / 100))
	}
	return capacity
}

// HasSpecial reports whether an equipped part grants a special effect, and its value.
func (g *Game) HasSpecial(special string) (float64, bool) {
	for _, p := range g.equipped() {
		if p.Effect.Type == EffectSpecial && p.Effect.Special == special {
			return p.Effect.Value, true
		}
	}
	return 0, false
}

// efficiency is the product of all equipped efficiency parts (1.0 with none).
func (g *Game) efficiency() float64 {
	factor := 1.0
	for _, p := range g.equipped() {
		if p.Effect.Type == EffectEfficiency {
			factor *= p.Effect.Value
		}
	}
	return factor
}

// TravelCost returns the energy needed to reach a location from anywhere.
func (g *Game) TravelCost(destinationID string) (int, bool) {
	dest, ok := g.cat.Location(destinationID)
	if !ok {
		return 0, false
	}
	return roundPrice(float64(dest.TravelCost) * g.vehicle().EnergyMultiplier * g.efficiency()), true
}

// onRails reports whether the current vehicle may enter a location.
func onRails(v Vehicle, locationID string) bool {
	if v.Specialty == nil || v.Specialty.Type != SpecialtyRailOnly {
		return true
	}
	return slices.Contains(v.Specialty.RestrictedRoutes, locationID)
}

// Travel moves the player to a connected location. The day does not change.
func (g *Game) Travel(destinationID string) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("travel", reject(ErrGameOver, "The season is over"))
	}
	dest, ok := g.cat.Location(destinationID)
	if !ok {
		return Receipt{}, g.rejected("travel", reject(ErrNotFound, "Invalid destination"))
	}
	current, _ := g.cat.Location(g.state.Location)

	// 1. Route checks
	if !slices.Contains(current.Connections, destinationID) {
		return Receipt{}, g.rejected("travel", reject(ErrNoRoute, "No route to %s", dest.Name))
	}
	if !slices.Contains(g.state.UnlockedRegions, dest.Region) {
		region, _ := g.cat.Region(dest.Region)
		return Receipt{}, g.rejected("travel", reject(ErrRegionLocked, "%s is in %s, which is still locked", dest.Name, region.Name))
	}
	v := g.vehicle()
	if !onRails(v, destinationID) {
		return Receipt{}, g.rejected("travel", reject(ErrRailRestricted, "The %s cannot reach %s", v.Name, dest.Name))
	}

	// 2. Energy
	cost, _ := g.TravelCost(destinationID)
	if g.state.Energy < cost {
		return Receipt{}, g.rejected("travel", reject(ErrNotEnoughEnergy, "Need %d energy to travel (have %d)", cost, g.state.Energy))
	}

	g.state.Energy -= cost
	g.state.Location = destinationID
	g.log.WithFields(logrus.Fields{"to": destinationID, "energy_cost": cost}).Info("traveled")
	return Receipt{Message: "Traveled to " + dest.Name}, nil
}

// BuyVehicle replaces the current vehicle. Parts the new tier cannot carry are unequipped but kept.
func (g *Game) BuyVehicle(vehicleID string) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("buy_vehicle", reject(ErrGameOver, "The season is over"))
	}
	v, ok := g.cat.Vehicle(vehicleID)
	if !ok {
		return Receipt{}, g.rejected("buy_vehicle", reject(ErrNotFound, "Invalid vehicle"))
	}
	if vehicleID == g.state.Vehicle {
		return Receipt{}, g.rejected("buy_vehicle", reject(ErrAlreadyOwned, "Already own this vehicle"))
	}
	if v.Cost > g.state.Money {
		return Receipt{}, g.rejected("buy_vehicle", reject(ErrInsufficientFunds, "Not enough money"))
	}

	// 1. Work out which parts survive the swap
	var kept []string
	for _, id := range g.state.EquippedParts {
		if p, ok := g.cat.Part(id); ok && partTier(p) <= v.Tier {
			kept = append(kept, id)
		}
	}

	// 2. Cargo must fit the new hold
	capacity := v.Capacity
	for _, id := range kept {
		if p, _ := g.cat.Part(id); p.Effect.Type == EffectCapacity {
			capacity += int(p.Effect.Value)
		}
	}
	if g.state.CargoUsed() > capacity {
		return Receipt{}, g.rejected("buy_vehicle", reject(ErrNoCargoSpace, "Your cargo will not fit in the %s", v.Name))
	}

	g.state.Money -= v.Cost
	g.state.Vehicle = vehicleID
	g.state.EquippedParts = append([]string{}, kept...)
	g.log.WithFields(logrus.Fields{"vehicle": vehicleID, "cost": v.Cost}).Info("vehicle purchased")
	return Receipt{Message: fmt.Sprintf("Purchased %s!", v.Name), Amount: v.Cost}, nil
}

func partTier(p VehiclePart) int {
	return max(1, p.MinTier)
}

// BuyPart purchases an upgrade and installs it if a slot is free.
func (g *Game) BuyPart(partID string) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("buy_part", reject(ErrGameOver, "The season is over"))
	}
	p, ok := g.cat.Part(partID)
	if !ok {
		return Receipt{}, g.rejected("buy_part", reject(ErrNotFound, "Invalid part"))
	}
	if slices.Contains(g.state.OwnedParts, partID) {
		return Receipt{}, g.rejected("buy_part", reject(ErrAlreadyOwned, "You already own a %s", p.Name))
	}
	if partTier(p) > g.vehicle().Tier {
		return Receipt{}, g.rejected("buy_part", reject(ErrTierTooLow, "%s needs a tier %d vehicle", p.Name, partTier(p)))
	}
	if p.Cost > g.state.Money {
		return Receipt{}, g.rejected("buy_part", reject(ErrInsufficientFunds, "Not enough money"))
	}

	g.state.Money -= p.Cost
	g.state.OwnedParts = append(slices.Clone(g.state.OwnedParts), partID)
	msg := fmt.Sprintf("Purchased %s", p.Name)
	if len(g.state.EquippedParts) < maxPartSlots {
		g.state.EquippedParts = append(slices.Clone(g.state.EquippedParts), partID)
		msg += " and installed it"
	}
	g.log.WithFields(logrus.Fields{"part": partID, "cost": p.Cost}).Info("part purchased")
	return Receipt{Message: msg, Amount: p.Cost}, nil
}

// EquipPart installs an owned part.
func (g *Game) EquipPart(partID string) (Receipt, error) {
	p, ok := g.cat.Part(partID)
	if !ok {
		return Receipt{}, g.rejected("equip", reject(ErrNotFound, "Invalid part"))
	}
	if !slices.Contains(g.state.OwnedParts, partID) {
		return Receipt{}, g.rejected("equip", reject(ErrNotOwned, "You do not own a %s", p.Name))
	}
	if slices.Contains(g.state.EquippedParts, partID) {
		return Receipt{}, g.rejected("equip", reject(ErrAlreadyOwned, "%s is already installed", p.Name))
	}
	if partTier(p) > g.vehicle().Tier {
		return Receipt{}, g.rejected("equip", reject(ErrTierTooLow, "%s needs a tier %d vehicle", p.Name, partTier(p)))
	}
	if len(g.state.EquippedParts) >= maxPartSlots {
		return Receipt{}, g.rejected("equip", reject(ErrSlotsFull, "All %d part slots are in use", maxPartSlots))
	}
	g.state.EquippedParts = append(slices.Clone(g.state.EquippedParts), partID)
	return Receipt{Message: "Installed " + p.Name}, nil
}

// UnequipPart removes an installed part. It stays owned.
func (g *Game) UnequipPart(partID string) (Receipt, error) {
	i := slices.Index(g.state.EquippedParts, partID)
	if i < 0 {
		return Receipt{}, g.rejected("unequip", reject(ErrNotOwned, "That part is not installed"))
	}
	// Removing capacity must not strand cargo.
	if p, _ := g.cat.Part(partID); p.Effect.Type == EffectCapacity && g.state.CargoUsed() > g.Capacity()-int(p.Effect.Value) {
		return Receipt{}, g.rejected("unequip", reject(ErrNoCargoSpace, "Unload cargo before removing %s", p.Name))
	}
	g.state.EquippedParts = slices.Delete(slices.Clone(g.state.EquippedParts), i, i+1)
	p, _ := g.cat.Part(partID)
	return Receipt{Message: "Removed " + p.Name}, nil
}

// UnlockRegion pays the one-time fee to open a region.
func (g *Game) UnlockRegion(regionID string) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("unlock", reject(ErrGameOver, "The season is over"))
	}
	r, ok := g.cat.Region(regionID)
	if !ok {
		return Receipt{}, g.rejected("unlock", reject(ErrNotFound, "Invalid region"))
	}
	if slices.Contains(g.state.UnlockedRegions, regionID) {
		return Receipt{}, g.rejected("unlock", reject(ErrAlreadyOwned, "%s is already unlocked", r.Name))
	}
	if r.UnlockCost > g.state.Money {
		return Receipt{}, g.rejected("unlock", reject(ErrInsufficientFunds, "Not enough money"))
	}
	g.state.Money -= r.UnlockCost
	g.state.UnlockedRegions = append(slices.Clone(g.state.UnlockedRegions), regionID)
	g.log.WithFields(logrus.Fields{"region": regionID, "cost": r.UnlockCost}).Info("region unlocked")
	return Receipt{Message: fmt.Sprintf("Unlocked %s!", r.Name), Amount: r.UnlockCost}, nil
}
