/*
Package game
File: catalog.go
Description:
    Loads and validates the static universe (commodities, regions, locations,
    vehicles, parts and market events) from YAML.

    The Catalog is built once at startup and never mutated afterwards. Every
    entity is indexed by its ID for O(1) lookup; slices keep the file order so
    menus and market boards stay stable.
*/

package game

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the read-only reference data consulted by every other system.
type Catalog struct {
	Balance GameBalance

	regions     []Region
	commodities []Commodity
	locations   []Location
	vehicles    []Vehicle
	parts       []VehiclePart
	events      []MarketEvent

	regionIndex    map[string]int
	commodityIndex map[string]int
	locationIndex  map[string]int
	vehicleIndex   map[string]int
	partIndex      map[string]int
	eventIndex     map[string]int
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalogYAML)
}

// LoadCatalogFile reads a catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(f)
}

// LoadCatalog parses YAML into a validated Catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	// 1. Unmarshal into the Universe struct
	var uni Universe
	if err := yaml.Unmarshal(data, &uni); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	// 2. Build the indexes
	c := &Catalog{
		Balance:     uni.Balance,
		regions:     uni.Regions,
		commodities: uni.Commodities,
		locations:   uni.Locations,
		vehicles:    uni.Vehicles,
		parts:       uni.Parts,
		events:      uni.Events,
	}
	var err error
	if c.regionIndex, err = indexBy(uni.Regions, func(r Region) string { return r.ID }, "region"); err != nil {
		return nil, err
	}
	if c.commodityIndex, err = indexBy(uni.Commodities, func(x Commodity) string { return x.ID }, "commodity"); err != nil {
		return nil, err
	}
	if c.locationIndex, err = indexBy(uni.Locations, func(l Location) string { return l.ID }, "location"); err != nil {
		return nil, err
	}
	if c.vehicleIndex, err = indexBy(uni.Vehicles, func(v Vehicle) string { return v.ID }, "vehicle"); err != nil {
		return nil, err
	}
	if c.partIndex, err = indexBy(uni.Parts, func(p VehiclePart) string { return p.ID }, "part"); err != nil {
		return nil, err
	}
	if c.eventIndex, err = indexBy(uni.Events, func(e MarketEvent) string { return e.ID }, "event"); err != nil {
		return nil, err
	}

	// 3. Cross-reference checks
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func indexBy[T any](items []T, key func(T) string, kind string) (map[string]int, error) {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		k := key(item)
		if k == "" {
			return nil, fmt.Errorf("catalog: %s #%d has no id", kind, i)
		}
		if _, dup := idx[k]; dup {
			return nil, fmt.Errorf("catalog: duplicate %s id %q", kind, k)
		}
		idx[k] = i
	}
	return idx, nil
}

func (c *Catalog) validate() error {
	for _, cm := range c.commodities {
		if cm.MinPrice > cm.BasePrice || cm.BasePrice > cm.MaxPrice {
			return fmt.Errorf("catalog: commodity %q needs min <= base <= max", cm.ID)
		}
		if cm.Region != "" {
			if _, ok := c.regionIndex[cm.Region]; !ok {
				return fmt.Errorf("catalog: commodity %q references unknown region %q", cm.ID, cm.Region)
			}
		}
	}

	for _, l := range c.locations {
		if _, ok := c.regionIndex[l.Region]; !ok {
			return fmt.Errorf("catalog: location %q references unknown region %q", l.ID, l.Region)
		}
		for _, id := range append(slices.Clone(l.Produces), l.Needs...) {
			if _, ok := c.commodityIndex[id]; !ok {
				return fmt.Errorf("catalog: location %q trades unknown commodity %q", l.ID, id)
			}
		}
		for _, id := range l.Produces {
			if slices.Contains(l.Needs, id) {
				return fmt.Errorf("catalog: location %q both produces and needs %q", l.ID, id)
			}
		}
		for _, id := range l.Connections {
			if _, ok := c.locationIndex[id]; !ok {
				return fmt.Errorf("catalog: location %q connects to unknown location %q", l.ID, id)
			}
		}
	}

	for _, e := range c.events {
		if e.Weight <= 0 || e.DurationDays < 1 {
			return fmt.Errorf("catalog: event %q needs weight > 0 and duration >= 1", e.ID)
		}
		switch e.Scope {
		case ScopeGlobal:
		case ScopeRegion:
			if _, ok := c.regionIndex[e.AffectedRegion]; !ok {
				return fmt.Errorf("catalog: event %q targets unknown region %q", e.ID, e.AffectedRegion)
			}
		case ScopeLocation:
			if len(e.AffectedLocations) == 0 {
				return fmt.Errorf("catalog: location event %q has no candidate locations", e.ID)
			}
			for _, id := range e.AffectedLocations {
				if _, ok := c.locationIndex[id]; !ok {
					return fmt.Errorf("catalog: event %q targets unknown location %q", e.ID, id)
				}
			}
		default:
			return fmt.Errorf("catalog: event %q has unknown scope %q", e.ID, e.Scope)
		}
		for _, eff := range e.Effects {
			if _, ok := c.commodityIndex[eff.CommodityID]; !ok {
				return fmt.Errorf("catalog: event %q affects unknown commodity %q", e.ID, eff.CommodityID)
			}
		}
	}

	b := c.Balance
	if _, ok := c.locationIndex[b.StartingLocation]; !ok {
		return fmt.Errorf("catalog: unknown starting location %q", b.StartingLocation)
	}
	if _, ok := c.vehicleIndex[b.StartingVehicle]; !ok {
		return fmt.Errorf("catalog: unknown starting vehicle %q", b.StartingVehicle)
	}
	for _, id := range b.StartingRegions {
		if _, ok := c.regionIndex[id]; !ok {
			return fmt.Errorf("catalog: unknown starting region %q", id)
		}
	}
	if b.MaxDays < 1 || b.MaxEnergy < 1 {
		return fmt.Errorf("catalog: max_days and max_energy must be positive")
	}
	return nil
}

// Commodity looks up a commodity by ID.
func (c *Catalog) Commodity(id string) (Commodity, bool) {
	i, ok := c.commodityIndex[id]
	if !ok {
		return Commodity{}, false
	}
	return c.commodities[i], true
}

// Location looks up a location by ID.
func (c *Catalog) Location(id string) (Location, bool) {
	i, ok := c.locationIndex[id]
	if !ok {
		return Location{}, false
	}
	return c.locations[i], true
}

// Region looks up a region by ID.
func (c *Catalog) Region(id string) (Region, bool) {
	i, ok := c.regionIndex[id]
	if !ok {
		return Region{}, false
	}
	return c.regions[i], true
}

// Vehicle looks up a vehicle by ID.
func (c *Catalog) Vehicle(id string) (Vehicle, bool) {
	i, ok := c.vehicleIndex[id]
	if !ok {
		return Vehicle{}, false
	}
	return c.vehicles[i], true
}

// Part looks up a vehicle part by ID.
func (c *Catalog) Part(id string) (VehiclePart, bool) {
	i, ok := c.partIndex[id]
	if !ok {
		return VehiclePart{}, false
	}
	return c.parts[i], true
}

// Event looks up a market event definition by ID.
func (c *Catalog) Event(id string) (MarketEvent, bool) {
	i, ok := c.eventIndex[id]
	if !ok {
		return MarketEvent{}, false
	}
	return c.events[i], true
}

// Regions lists every region in catalog order. The slice is a copy.
func (c *Catalog) Regions() []Region { return slices.Clone(c.regions) }

// Commodities lists every commodity in catalog order.
func (c *Catalog) Commodities() []Commodity { return slices.Clone(c.commodities) }

// Locations lists every location in catalog order.
func (c *Catalog) Locations() []Location { return slices.Clone(c.locations) }

// Vehicles lists every vehicle in catalog order.
func (c *Catalog) Vehicles() []Vehicle { return slices.Clone(c.vehicles) }

// Parts lists every vehicle part in catalog order.
func (c *Catalog) Parts() []VehiclePart { return slices.Clone(c.parts) }

// Events lists every event definition in catalog order.
func (c *Catalog) Events() []MarketEvent { return slices.Clone(c.events) }

// UniversalCommodityIDs returns the IDs of commodities without a region
// restriction, in catalog order. These are the hot/cold candidates.
func (c *Catalog) UniversalCommodityIDs() []string {
	var ids []string
	for _, cm := range c.commodities {
		if cm.Region == "" {
			ids = append(ids, cm.ID)
		}
	}
	return ids
}

// CommoditiesForRegions returns universal commodities plus regional ones
// whose region is unlocked.
func (c *Catalog) CommoditiesForRegions(unlocked []string) []Commodity {
	var out []Commodity
	for _, cm := range c.commodities {
		if cm.Region == "" || slices.Contains(unlocked, cm.Region) {
			out = append(out, cm)
		}
	}
	return out
}

// LocationsInRegion returns every location belonging to a region.
func (c *Catalog) LocationsInRegion(regionID string) []Location {
	var out []Location
	for _, l := range c.locations {
		if l.Region == regionID {
			out = append(out, l)
		}
	}
	return out
}
