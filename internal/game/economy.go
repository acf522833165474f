/*
Package game
File: economy.go
Description:
    The economy orchestrator. A Game owns one GameState and is the only thing
    allowed to change it. This includes:
    1. Advancing the day (saturation decay, event expiry, weekly rotation,
       event rolls, energy reset).
    2. Buying and selling, which feed the saturation ledger.
    3. Quoting the market board for the current state.

    Every action either completes or returns a *Rejection with nothing changed.
*/

package game

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/sirupsen/logrus"
)

const tradeEnergyCost = 5 // Flat energy per buy/sell regardless of quantity

// Game is the single logical actor of a session. It is not safe for
// concurrent use; callers that share it must serialize access.
type Game struct {
	cat         *Catalog
	state       GameState
	rng         *rand.Rand
	log         logrus.FieldLogger
	eventChance float64
	maxDays     int // Override for new games, 0 = catalog value
}

// Option configures a Game at construction.
type Option func(*Game)

// WithSeed makes every random draw reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Game) { g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithRand injects a ready-made source.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithEventChance sets the daily probability of rolling a new event.
func WithEventChance(p float64) Option {
	return func(g *Game) { g.eventChance = p }
}

// WithMaxDays overrides the season length of a new game.
func WithMaxDays(n int) Option {
	return func(g *Game) { g.maxDays = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Game) { g.log = l }
}

func newGame(cat *Catalog, opts []Option) *Game {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	g := &Game{
		cat:         cat,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:         discard,
		eventChance: DefaultEventChance,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGame starts a fresh session on day 1 and rolls the week 0 hot/cold pair.
func NewGame(cat *Catalog, opts ...Option) *Game {
	g := newGame(cat, opts)
	g.state = NewGameState(cat)
	if g.maxDays > 0 {
		g.state.MaxDays = g.maxDays
	}
	g.state.WeeklyStatus = GenerateWeeklyStatus(g.rng, cat.UniversalCommodityIDs(), WeekOf(g.state.Day), "", "")

	g.log.WithFields(logrus.Fields{
		"max_days": g.state.MaxDays,
		"hot":      g.state.WeeklyStatus.HotCommodity,
		"cold":     g.state.WeeklyStatus.ColdCommodity,
	}).Info("new game started")
	return g
}

// Restore resumes a saved session. The snapshot is validated against the catalog.
func Restore(cat *Catalog, st GameState, opts ...Option) (*Game, error) {
	if err := validateState(cat, st); err != nil {
		return nil, err
	}
	g := newGame(cat, opts)
	g.state = st.Clone()
	g.log.WithFields(logrus.Fields{"day": st.Day, "money": st.Money}).Info("game restored")
	return g, nil
}

// Catalog exposes the read-only reference data.
func (g *Game) Catalog() *Catalog { return g.cat }

// State returns a deep copy of the current state.
func (g *Game) State() GameState { return g.state.Clone() }

// MarketContext snapshots what the price calculator needs.
func (g *Game) MarketContext() MarketContext {
	return MarketContext{
		Day:             g.state.Day,
		ActiveEvents:    g.state.ActiveEvents,
		Saturation:      g.state.Saturation,
		WeeklyStatus:    g.state.WeeklyStatus,
		UnlockedRegions: g.state.UnlockedRegions,
	}
}

// MarketPrices quotes the board at any location for today.
func (g *Game) MarketPrices(locationID string) []MarketPrice {
	return MarketPrices(g.cat, locationID, g.MarketContext())
}

// LocalMarket quotes the board where the player stands.
func (g *Game) LocalMarket() []MarketPrice {
	return g.MarketPrices(g.state.Location)
}

// AdvanceDay moves the calendar forward by one day.
// Past the last day it only flips the game-over flag.
func (g *Game) AdvanceDay() (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, reject(ErrGameOver, "The season is over")
	}

	newDay := g.state.Day + 1
	if newDay > g.state.MaxDays {
		g.state.GameOver = true
		g.log.WithFields(logrus.Fields{"day": g.state.Day, "money": g.state.Money}).Info("season finished")
		return Receipt{Message: "The season is over"}, nil
	}

	// 1. Markets cool down
	saturation := g.state.Saturation.Decay()

	// 2. Expire finished events
	active, logEntries := ExpireEvents(g.cat, g.state.ActiveEvents, newDay)
	for _, e := range logEntries {
		g.log.WithFields(logrus.Fields{"day": newDay, "event": e.EventName}).Info("event ended")
	}

	// 3. New week, new hot/cold pair
	weekly := g.state.WeeklyStatus
	if week := WeekOf(newDay); week > weekly.Week {
		weekly = GenerateWeeklyStatus(g.rng, g.cat.UniversalCommodityIDs(), week, weekly.HotCommodity, weekly.ColdCommodity)
		g.log.WithFields(logrus.Fields{"week": week, "hot": weekly.HotCommodity, "cold": weekly.ColdCommodity}).Info("weekly rotation")
	}

	// 4. Maybe start something new
	if g.rng.Float64() < g.eventChance {
		if ev, ok := RollNewEvent(g.rng, g.cat, active, newDay, g.state.UnlockedRegions); ok {
			active = append(active, ev)
			started := startedEntry(g.cat, ev)
			logEntries = append(logEntries, started)
			g.log.WithFields(logrus.Fields{
				"day":      newDay,
				"event":    ev.EventID,
				"location": ev.AffectedLocationID,
				"region":   ev.AffectedRegionID,
				"end_day":  ev.EndDay,
			}).Info("event started")
		}
	}

	// 5. Commit
	g.state.Saturation = saturation
	g.state.ActiveEvents = active
	g.state.WeeklyStatus = weekly
	if len(logEntries) > 0 {
		g.state.EventLog = PrependEventLog(g.state.EventLog, logEntries)
	}
	g.state.Energy = g.state.MaxEnergy
	g.state.Day = newDay

	g.log.WithFields(logrus.Fields{"day": newDay, "events_active": len(active)}).Debug("day advanced")
	return Receipt{Message: fmt.Sprintf("Day %d begins", newDay)}, nil
}

// Rest refills energy and sleeps until tomorrow.
func (g *Game) Rest() (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, reject(ErrGameOver, "The season is over")
	}
	g.state.Energy = g.state.MaxEnergy
	return g.AdvanceDay()
}

// Buy purchases qty units of a commodity at the current location.
func (g *Game) Buy(commodityID string, qty int) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("buy", reject(ErrGameOver, "The season is over"))
	}
	if qty <= 0 {
		return Receipt{}, g.rejected("buy", reject(ErrInvalidQuantity, "Invalid quantity"))
	}
	quote, ok := QuoteAt(g.cat, commodityID, g.state.Location, g.MarketContext())
	if !ok {
		return Receipt{}, g.rejected("buy", reject(ErrNotFound, "%q is not traded here", commodityID))
	}
	cm, _ := g.cat.Commodity(commodityID)

	// 1. Validate. Both limits are compared without multiplying qty, so huge
	// quantities cannot overflow past them.
	if qty > g.capacityFor(cm)-g.state.CargoUsed() {
		return Receipt{}, g.rejected("buy", reject(ErrNoCargoSpace, "Not enough cargo space"))
	}
	if quote.BuyPrice > 0 && qty > g.state.Money/quote.BuyPrice {
		return Receipt{}, g.rejected("buy", reject(ErrInsufficientFunds, "Not enough money"))
	}
	totalCost := quote.BuyPrice * qty

	// 2. Load the cargo, merging into an existing stack at the weighted average price
	cargo := slices.Clone(g.state.Cargo)
	if i := slices.IndexFunc(cargo, func(c CargoItem) bool { return c.CommodityID == commodityID }); i >= 0 {
		existing := cargo[i]
		total := existing.Quantity + qty
		avg := float64(existing.PurchasePrice*existing.Quantity+quote.BuyPrice*qty) / float64(total)
		cargo[i] = CargoItem{CommodityID: commodityID, Quantity: total, PurchasePrice: roundPrice(avg)}
	} else {
		cargo = append(cargo, CargoItem{CommodityID: commodityID, Quantity: qty, PurchasePrice: quote.BuyPrice})
	}

	// 3. Commit
	g.state.Money -= totalCost
	g.state.Cargo = cargo
	g.state.Saturation = g.state.Saturation.RecordPurchase(g.state.Location, commodityID, qty)
	g.state.Energy = max(0, g.state.Energy-tradeEnergyCost)

	g.log.WithFields(logrus.Fields{
		"commodity": commodityID,
		"qty":       qty,
		"price":     quote.BuyPrice,
		"location":  g.state.Location,
	}).Info("bought")
	return Receipt{Message: fmt.Sprintf("Bought %d for $%d", qty, totalCost), Amount: totalCost}, nil
}

// MaxBuy is the largest quantity Buy would accept right now, limited by
// money and hold space.
func (g *Game) MaxBuy(commodityID string) int {
	quote, ok := QuoteAt(g.cat, commodityID, g.state.Location, g.MarketContext())
	if !ok || quote.BuyPrice <= 0 {
		return 0
	}
	cm, _ := g.cat.Commodity(commodityID)
	return max(0, min(g.state.Money/quote.BuyPrice, g.capacityFor(cm)-g.state.CargoUsed()))
}

// Sell unloads qty units of a commodity at the current location.
func (g *Game) Sell(commodityID string, qty int) (Receipt, error) {
	if g.state.GameOver {
		return Receipt{}, g.rejected("sell", reject(ErrGameOver, "The season is over"))
	}
	if qty <= 0 {
		return Receipt{}, g.rejected("sell", reject(ErrInvalidQuantity, "Invalid quantity"))
	}
	i := slices.IndexFunc(g.state.Cargo, func(c CargoItem) bool { return c.CommodityID == commodityID })
	if i < 0 || g.state.Cargo[i].Quantity < qty {
		return Receipt{}, g.rejected("sell", reject(ErrNotEnoughCargo, "Not enough to sell"))
	}
	quote, ok := QuoteAt(g.cat, commodityID, g.state.Location, g.MarketContext())
	if !ok {
		return Receipt{}, g.rejected("sell", reject(ErrNotFound, "%q is not traded here", commodityID))
	}
	cm, _ := g.cat.Commodity(commodityID)
	held := g.state.Cargo[i]

	// 1. Price, including part bonuses
	price := quote.SellPrice
	if v, ok := g.HasSpecial(SpecialRefrigeration); ok && cm.Perishable {
		price = roundPrice(float64(price) * (1 + v/100))
	}
	if v, ok := g.HasSpecial(SpecialBulkBonus); ok && qty >= bulkThreshold {
		price = roundPrice(float64(price) * (1 + v/100))
	}
	revenue := price * qty
	profit := revenue - held.PurchasePrice*qty

	// 2. Unload; an emptied stack disappears
	cargo := slices.Clone(g.state.Cargo)
	if held.Quantity == qty {
		cargo = slices.Delete(cargo, i, i+1)
	} else {
		cargo[i].Quantity -= qty
	}

	// 3. Commit
	g.state.Money += revenue
	g.state.Cargo = cargo
	g.state.Saturation = g.state.Saturation.RecordSale(g.state.Location, commodityID, qty)
	g.state.Energy = max(0, g.state.Energy-tradeEnergyCost)
	g.state.TotalProfit += profit
	g.state.TradesCompleted++

	g.log.WithFields(logrus.Fields{
		"commodity": commodityID,
		"qty":       qty,
		"price":     price,
		"profit":    profit,
		"location":  g.state.Location,
	}).Info("sold")

	sign := "+"
	if profit < 0 {
		sign = "-"
	}
	return Receipt{
		Message: fmt.Sprintf("Sold for $%d (%s$%d)", revenue, sign, abs(profit)),
		Amount:  revenue,
		Profit:  profit,
	}, nil
}

// rejected logs a refused action and passes the error through.
func (g *Game) rejected(action string, err error) error {
	g.log.WithFields(logrus.Fields{"action": action, "reason": err.Error()}).Debug("action rejected")
	return err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
