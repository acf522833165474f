/*
Package game
File: pricing.go
Description:
    Computes what a commodity costs at a location on a given day.

    Price = base
          x location specialization (0.6 produced / 1.5 needed)
          x weekly hot/cold factor
          x product of active event multipliers
          x saturation factor
          x (1 + deterministic daily variance in [-10%, +10%])
    clamped to [min, max] and rounded.

    The variance is seeded by (day, location, commodity), so the same state
    always quotes the same price.
*/

package game

import (
	"math"
	"slices"
	"strconv"
)

const (
	producedDiscount = 0.6
	neededPremium    = 1.5
	varianceSpread   = 0.2  // Total width of the daily variance band
	sellSpread       = 0.85 // Sell price = 85% of buy price
)

// MarketContext is everything the calculator reads besides the catalog.
type MarketContext struct {
	Day             int
	ActiveEvents    []ActiveEvent
	Saturation      Saturation
	WeeklyStatus    WeeklyStatus
	UnlockedRegions []string
}

// roundPrice rounds half up, matching how prices have always been displayed.
func roundPrice(x float64) int {
	return int(math.Floor(x + 0.5))
}

// varianceHash is a 32-bit rolling hash (h = h*31 + c) wrapped to int32, then made non-negative.
func varianceHash(s string) int64 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// DailyVariance returns the reproducible price wobble for a day/location/commodity triple.
func DailyVariance(day int, locationID, commodityID string) float64 {
	seed := strconv.Itoa(day) + "-" + locationID + "-" + commodityID
	h := varianceHash(seed)
	return (float64(h%1000)/1000 - 0.5) * varianceSpread
}

// specialization returns the location factor for a commodity.
func specialization(cm Commodity, loc Location) float64 {
	switch {
	case slices.Contains(loc.Produces, cm.ID):
		return producedDiscount
	case slices.Contains(loc.Needs, cm.ID):
		return neededPremium
	}
	return 1.0
}

// TrendAt labels a commodity relative to a location.
func TrendAt(cm Commodity, loc Location) Trend {
	switch {
	case slices.Contains(loc.Produces, cm.ID):
		return TrendCheap
	case slices.Contains(loc.Needs, cm.ID):
		return TrendExpensive
	}
	return TrendNormal
}

// ComputePrice returns the buy price and whether any active event touched it.
func ComputePrice(cat *Catalog, cm Commodity, loc Location, ctx MarketContext) (int, bool) {
	price := float64(cm.BasePrice)

	// 1. Cheap where produced, expensive where needed
	price *= specialization(cm, loc)

	// 2. Weekly hot/cold
	price *= HotColdMultiplier(cm.ID, ctx.WeeklyStatus)

	// 3. Active events
	eventMult, affected := EventMultiplier(cat, cm.ID, loc, ctx.ActiveEvents)
	price *= eventMult

	// 4. Saturation from the player's own trades
	price *= ctx.Saturation.Multiplier(loc.ID, cm.ID)

	// 5. Daily variance
	price *= 1 + DailyVariance(ctx.Day, loc.ID, cm.ID)

	price = math.Max(float64(cm.MinPrice), math.Min(float64(cm.MaxPrice), price))
	return roundPrice(price), affected
}

// SellPriceFor applies the fixed buy/sell spread. It is not clamped again.
func SellPriceFor(buyPrice int) int {
	return roundPrice(float64(buyPrice) * sellSpread)
}

// MarketPrices quotes every commodity available in the unlocked regions at a location.
// Unknown locations yield an empty board.
func MarketPrices(cat *Catalog, locationID string, ctx MarketContext) []MarketPrice {
	loc, ok := cat.Location(locationID)
	if !ok {
		return nil
	}

	available := cat.CommoditiesForRegions(ctx.UnlockedRegions)
	prices := make([]MarketPrice, 0, len(available))
	for _, cm := range available {
		buy, affected := ComputePrice(cat, cm, loc, ctx)
		prices = append(prices, MarketPrice{
			CommodityID:     cm.ID,
			Name:            cm.Name,
			BuyPrice:        buy,
			SellPrice:       SellPriceFor(buy),
			Trend:           TrendAt(cm, loc),
			Unit:            cm.Unit,
			IsHot:           cm.ID == ctx.WeeklyStatus.HotCommodity,
			IsCold:          cm.ID == ctx.WeeklyStatus.ColdCommodity,
			EventAffected:   affected,
			SaturationLevel: ctx.Saturation.Level(loc.ID, cm.ID),
		})
	}
	return prices
}

// QuoteAt returns the board entry for one commodity. It is false when the
// location is unknown or the commodity is not traded in the unlocked regions.
func QuoteAt(cat *Catalog, commodityID, locationID string, ctx MarketContext) (MarketPrice, bool) {
	for _, p := range MarketPrices(cat, locationID, ctx) {
		if p.CommodityID == commodityID {
			return p, true
		}
	}
	return MarketPrice{}, false
}
