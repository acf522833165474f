/*
Package game
File: scanner.go
Description:
    Read-only views over the market: the trade route scanner, net worth and
    the status summary shown in the header.
*/

package game

import (
	"cmp"
	"slices"
)

// Opportunity is one buy-here-sell-there route.
type Opportunity struct {
	CommodityID string  `json:"commodity_id"`
	Commodity   string  `json:"commodity"`
	From        string  `json:"from"` // Location Key to buy at
	To          string  `json:"to"`   // Location Key to sell at
	BuyPrice    int     `json:"buy_price"`
	SellPrice   int     `json:"sell_price"`
	Profit      int     `json:"profit"` // Per unit
	MarginPct   float64 `json:"margin_pct"`
}

// Scanner compares every pair of unlocked locations and returns the most
// profitable routes by margin. limit <= 0 returns everything.
func (g *Game) Scanner(limit int) []Opportunity {
	ctx := g.MarketContext()

	// 1. Quote every reachable board once
	var locs []Location
	boards := make(map[string]map[string]MarketPrice)
	for _, l := range g.cat.Locations() {
		if !slices.Contains(g.state.UnlockedRegions, l.Region) {
			continue
		}
		locs = append(locs, l)
		board := make(map[string]MarketPrice)
		for _, p := range MarketPrices(g.cat, l.ID, ctx) {
			board[p.CommodityID] = p
		}
		boards[l.ID] = board
	}

	// 2. Every ordered pair
	var out []Opportunity
	for _, from := range locs {
		for _, to := range locs {
			if from.ID == to.ID {
				continue
			}
			for id, buy := range boards[from.ID] {
				sell, ok := boards[to.ID][id]
				if !ok {
					continue
				}
				profit := sell.SellPrice - buy.BuyPrice
				if profit <= 0 {
					continue
				}
				out = append(out, Opportunity{
					CommodityID: id,
					Commodity:   buy.Name,
					From:        from.ID,
					To:          to.ID,
					BuyPrice:    buy.BuyPrice,
					SellPrice:   sell.SellPrice,
					Profit:      profit,
					MarginPct:   float64(profit) / float64(buy.BuyPrice) * 100,
				})
			}
		}
	}

	// 3. Best margin first; ties broken for a stable listing
	slices.SortFunc(out, func(a, b Opportunity) int {
		return cmp.Or(
			cmp.Compare(b.MarginPct, a.MarginPct),
			cmp.Compare(a.CommodityID, b.CommodityID),
			cmp.Compare(a.From, b.From),
			cmp.Compare(a.To, b.To),
		)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NetWorth is cash plus cargo at today's local sell price plus half the vehicle's cost.
func (g *Game) NetWorth() int {
	worth := g.state.Money
	board := make(map[string]int)
	for _, p := range g.LocalMarket() {
		board[p.CommodityID] = p.SellPrice
	}
	for _, c := range g.state.Cargo {
		price, ok := board[c.CommodityID]
		if !ok {
			price = c.PurchasePrice
		}
		worth += price * c.Quantity
	}
	worth += int(float64(g.vehicle().Cost) * resaleFactor)
	return worth
}

// Status is the header summary.
type Status struct {
	Day          int          `json:"day"`
	MaxDays      int          `json:"max_days"`
	Money        int          `json:"money"`
	Energy       int          `json:"energy"`
	MaxEnergy    int          `json:"max_energy"`
	CargoUsed    int          `json:"cargo_used"`
	Capacity     int          `json:"capacity"`
	Location     string       `json:"location"`
	Vehicle      string       `json:"vehicle"`
	NetWorth     int          `json:"net_worth"`
	TotalProfit  int          `json:"total_profit"`
	Trades       int          `json:"trades_completed"`
	WeeklyStatus WeeklyStatus `json:"weekly_status"`
	GameOver     bool         `json:"game_over"`
}

// Status summarizes the session.
func (g *Game) Status() Status {
	return Status{
		Day:          g.state.Day,
		MaxDays:      g.state.MaxDays,
		Money:        g.state.Money,
		Energy:       g.state.Energy,
		MaxEnergy:    g.state.MaxEnergy,
		CargoUsed:    g.state.CargoUsed(),
		Capacity:     g.Capacity(),
		Location:     g.state.Location,
		Vehicle:      g.state.Vehicle,
		NetWorth:     g.NetWorth(),
		TotalProfit:  g.state.TotalProfit,
		Trades:       g.state.TradesCompleted,
		WeeklyStatus: g.state.WeeklyStatus,
		GameOver:     g.state.GameOver,
	}
}

// rankTiers are checked from the top; the first threshold met names the player.
var rankTiers = []struct {
	minScore int
	title    string
}{
	{50000, "Trade Baron"},
	{20000, "Wealthy Merchant"},
	{10000, "Successful Trader"},
	{5000, "Aspiring Entrepreneur"},
	{1000, "Small Business Owner"},
}

// Rank is the end-of-season title for a final net worth.
func Rank(score int) string {
	for _, t := range rankTiers {
		if score >= t.minScore {
			return t.title
		}
	}
	return "Struggling Peddler"
}
