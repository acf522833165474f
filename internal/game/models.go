/*
Package game
File: models.go
Description:
    Defines the data structures used throughout the Tradewinds economy.
    This file is the "schema" for the application: catalog entries map directly to
    'catalog.yaml', runtime records map to the JSON save snapshot and API responses.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// GameBalance stores the starting conditions loaded from 'catalog.yaml'.
type GameBalance struct {
	StartingMoney    int      `yaml:"starting_money" json:"starting_money"`       // Cash given to a new game
	MaxDays          int      `yaml:"max_days" json:"max_days"`                   // Last playable day
	MaxEnergy        int      `yaml:"max_energy" json:"max_energy"`               // Energy restored every morning
	StartingLocation string   `yaml:"starting_location" json:"starting_location"` // Location Key the player wakes up in
	StartingVehicle  string   `yaml:"starting_vehicle" json:"starting_vehicle"`   // Vehicle Key the player owns on day 1
	StartingRegions  []string `yaml:"starting_regions" json:"starting_regions"`   // Regions unlocked for free
}

// Region groups locations and gates them behind a one-time unlock cost.
type Region struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	UnlockCost int    `yaml:"unlock_cost" json:"unlock_cost"`
}

// Commodity represents a tradeable good.
type Commodity struct {
	ID         string `yaml:"id" json:"id"`                             // Unique ID (e.g., "coffee")
	Name       string `yaml:"name" json:"name"`                         // Display Name
	BasePrice  int    `yaml:"base_price" json:"base_price"`             // Baseline price before market multipliers
	MinPrice   int    `yaml:"min_price" json:"min_price"`               // Floor after every multiplier
	MaxPrice   int    `yaml:"max_price" json:"max_price"`               // Ceiling after every multiplier
	Unit       string `yaml:"unit" json:"unit"`                         // Unit label ("bags", "crates")
	Region     string `yaml:"region,omitempty" json:"region,omitempty"` // Empty = traded everywhere
	Liquid     bool   `yaml:"liquid,omitempty" json:"liquid,omitempty"`
	Perishable bool   `yaml:"perishable,omitempty" json:"perishable,omitempty"`
}

// Location represents a static market node on the map.
type Location struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Region      string   `yaml:"region" json:"region"`
	Produces    []string `yaml:"produces" json:"produces"`       // Commodity IDs that are cheap here
	Needs       []string `yaml:"needs" json:"needs"`             // Commodity IDs that are expensive here
	Connections []string `yaml:"connections" json:"connections"` // Directly reachable Location IDs
	TravelCost  int      `yaml:"travel_cost" json:"travel_cost"` // Base energy to travel here
}

// Vehicle specialty types.
const (
	SpecialtySpeed       = "speed"
	SpecialtyRailOnly    = "rail_only"
	SpecialtyLiquidBonus = "liquid_bonus"
)

// VehicleSpecialty is an optional quirk of a vehicle.
type VehicleSpecialty struct {
	Type             string   `yaml:"type" json:"type"`
	Value            int      `yaml:"value,omitempty" json:"value,omitempty"`                         // e.g. 25 for +25% liquid capacity
	RestrictedRoutes []string `yaml:"restricted_routes,omitempty" json:"restricted_routes,omitempty"` // Rail network for rail_only
}

// Vehicle determines cargo capacity, travel efficiency and the part tier.
type Vehicle struct {
	ID               string            `yaml:"id" json:"id"`
	Name             string            `yaml:"name" json:"name"`
	Description      string            `yaml:"description" json:"description"`
	Capacity         int               `yaml:"capacity" json:"capacity"`
	Cost             int               `yaml:"cost" json:"cost"`
	EnergyMultiplier float64           `yaml:"energy_multiplier" json:"energy_multiplier"` // Lower = more efficient
	Tier             int               `yaml:"tier" json:"tier"`
	Specialty        *VehicleSpecialty `yaml:"specialty,omitempty" json:"specialty,omitempty"`
}

// Part effect types and special effects.
const (
	EffectCapacity   = "capacity"
	EffectEfficiency = "efficiency"
	EffectSpecial    = "special"

	SpecialRefrigeration = "refrigeration"
	SpecialSecureLock    = "secure_lock"
	SpecialGPS           = "gps"
	SpecialBulkBonus     = "bulk_bonus"
)

// PartEffect describes what an equipped part does.
type PartEffect struct {
	Type    string  `yaml:"type" json:"type"`                           // capacity, efficiency or special
	Value   float64 `yaml:"value" json:"value"`                         // +capacity, travel multiplier or percent bonus
	Special string  `yaml:"special,omitempty" json:"special,omitempty"` // Only for special parts
}

// VehiclePart is an installable upgrade, analogous to a ship module.
type VehiclePart struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Cost        int        `yaml:"cost" json:"cost"`
	Category    string     `yaml:"category" json:"category"`
	Effect      PartEffect `yaml:"effect" json:"effect"`
	MinTier     int        `yaml:"min_tier,omitempty" json:"min_tier,omitempty"` // 0 is treated as tier 1
}

// EventScope is the geographic breadth of a market event.
type EventScope string

const (
	ScopeGlobal   EventScope = "global"
	ScopeRegion   EventScope = "region"
	ScopeLocation EventScope = "location"
)

// CommodityEffect is a single price multiplier applied by an event.
type CommodityEffect struct {
	CommodityID     string  `yaml:"commodity_id" json:"commodity_id"`
	PriceMultiplier float64 `yaml:"price_multiplier" json:"price_multiplier"`
}

// MarketEvent is the immutable catalog definition of an event.
type MarketEvent struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name"`
	Description       string            `yaml:"description" json:"description"`
	Scope             EventScope        `yaml:"scope" json:"scope"`
	AffectedLocations []string          `yaml:"affected_locations,omitempty" json:"affected_locations,omitempty"` // Candidates for location scope
	AffectedRegion    string            `yaml:"affected_region,omitempty" json:"affected_region,omitempty"`       // Target for region scope
	Effects           []CommodityEffect `yaml:"effects" json:"effects"`
	DurationDays      int               `yaml:"duration_days" json:"duration_days"`
	Weight            float64           `yaml:"weight" json:"weight"` // Higher = more likely
}

// ActiveEvent is a runtime instance of a MarketEvent.
// The concrete target is resolved once, when the event starts.
type ActiveEvent struct {
	EventID            string `json:"event_id"`
	StartDay           int    `json:"start_day"`
	EndDay             int    `json:"end_day"` // Inclusive
	AffectedLocationID string `json:"affected_location_id,omitempty"`
	AffectedRegionID   string `json:"affected_region_id,omitempty"`
}

// WeeklyStatus holds the hot and cold commodity of the current week.
// Empty IDs mean nothing is boosted or suppressed.
type WeeklyStatus struct {
	Week          int    `json:"week"`
	HotCommodity  string `json:"hot_commodity,omitempty"`
	ColdCommodity string `json:"cold_commodity,omitempty"`
}

// EventLogEntry is a display-only history line.
type EventLogEntry struct {
	Day         int    `json:"day"`
	EventName   string `json:"event_name"`
	Description string `json:"description"`
	IsStart     bool   `json:"is_start"`
}

// CargoItem is a stack of one commodity in the player's hold.
type CargoItem struct {
	CommodityID   string `json:"commodity_id"`
	Quantity      int    `json:"quantity"`
	PurchasePrice int    `json:"purchase_price"` // Weighted average paid per unit
}

// Trend is a location-relative price label.
type Trend string

const (
	TrendCheap     Trend = "cheap"
	TrendExpensive Trend = "expensive"
	TrendNormal    Trend = "normal"
)

// MarketPrice is the display record for one commodity at one location.
type MarketPrice struct {
	CommodityID     string          `json:"commodity_id"`
	Name            string          `json:"name"`
	BuyPrice        int             `json:"buy_price"`
	SellPrice       int             `json:"sell_price"`
	Trend           Trend           `json:"trend"`
	Unit            string          `json:"unit"`
	IsHot           bool            `json:"is_hot"`
	IsCold          bool            `json:"is_cold"`
	EventAffected   bool            `json:"event_affected"`
	SaturationLevel SaturationLevel `json:"saturation_level"`
}

// Universe is the root configuration struct, mapping to the entire 'catalog.yaml' file.
type Universe struct {
	Balance     GameBalance   `yaml:"game_balance"`
	Regions     []Region      `yaml:"regions"`
	Commodities []Commodity   `yaml:"commodities"`
	Locations   []Location    `yaml:"locations"`
	Vehicles    []Vehicle     `yaml:"vehicles"`
	Parts       []VehiclePart `yaml:"vehicle_parts"`
	Events      []MarketEvent `yaml:"market_events"`
}
