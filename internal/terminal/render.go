/*
Package terminal
File: render.go
Description:
    Plain-text views of the game: header, market board, route list, garage,
    scanner, event feed, stats and the end-of-season summary. Colors are
    ANSI escapes and only used when the UI was built with color on.
*/

package terminal

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/everforgeworks/tradewinds/internal/game"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
	ansiDim    = "\033[2m"
)

const eventFeedLength = 10

// money formats dollars with thousands separators: $1,234 or -$50.
func money(n int) string {
	if n < 0 {
		return "-$" + humanize.Comma(int64(-n))
	}
	return "$" + humanize.Comma(int64(n))
}

// signedMoney always shows the sign: +$120 or -$8.
func signedMoney(n int) string {
	if n >= 0 {
		return "+" + money(n)
	}
	return money(n)
}

func (u *UI) paint(color, s string) string {
	if !u.color {
		return s
	}
	return color + s + ansiReset
}

func (u *UI) table() *tabwriter.Writer {
	return tabwriter.NewWriter(u.out, 0, 0, 2, ' ', 0)
}

func (u *UI) header() {
	st := u.game.Status()
	cat := u.game.Catalog()
	loc, _ := cat.Location(st.Location)
	v, _ := cat.Vehicle(st.Vehicle)

	energyColor := ansiGreen
	switch {
	case st.Energy <= 20:
		energyColor = ansiRed
	case st.Energy <= 50:
		energyColor = ansiYellow
	}

	u.println(strings.Repeat("-", 60))
	u.printf("%s   Day %s/%d   Energy: %s\n",
		u.paint(ansiYellow, money(st.Money)),
		u.paint(ansiCyan, fmt.Sprint(st.Day)), st.MaxDays,
		u.paint(energyColor, fmt.Sprintf("%d/%d", st.Energy, st.MaxEnergy)))
	u.printf("%s   Cargo: %d/%d   %s\n",
		u.paint(ansiBlue, loc.Name), st.CargoUsed, st.Capacity, u.paint(ansiDim, v.Name))
	if hot, cold := st.WeeklyStatus.HotCommodity, st.WeeklyStatus.ColdCommodity; hot != "" || cold != "" {
		u.printf("This week: %s is hot, %s is cold\n", u.commodityName(hot), u.commodityName(cold))
	}
	u.println(strings.Repeat("-", 60))
}

func (u *UI) commodityName(id string) string {
	if cm, ok := u.game.Catalog().Commodity(id); ok {
		return cm.Name
	}
	return id
}

func (u *UI) showMarket() {
	st := u.game.State()
	loc, _ := u.game.Catalog().Location(st.Location)
	u.printf("Market at %s\n", loc.Name)

	w := u.table()
	fmt.Fprintln(w, "ID\tCOMMODITY\tBUY\tSELL\tHELD\tTREND\tNOTES")
	for _, p := range u.game.LocalMarket() {
		var notes []string
		if p.IsHot {
			notes = append(notes, u.paint(ansiRed, "HOT"))
		}
		if p.IsCold {
			notes = append(notes, u.paint(ansiBlue, "COLD"))
		}
		if p.EventAffected {
			notes = append(notes, u.paint(ansiYellow, "EVENT"))
		}
		if p.SaturationLevel != game.SaturationNormal {
			notes = append(notes, string(p.SaturationLevel))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.CommodityID, p.Name, money(p.BuyPrice), money(p.SellPrice),
			st.CargoQuantity(p.CommodityID), p.Trend, strings.Join(notes, " "))
	}
	w.Flush()
}

func (u *UI) showRoutes() {
	st := u.game.State()
	cat := u.game.Catalog()
	here, _ := cat.Location(st.Location)

	u.printf("Routes from %s (energy %d/%d)\n", here.Name, st.Energy, st.MaxEnergy)
	w := u.table()
	fmt.Fprintln(w, "ID\tDESTINATION\tENERGY\tNOTES")
	for _, id := range here.Connections {
		dest, ok := cat.Location(id)
		if !ok {
			continue
		}
		cost, _ := u.game.TravelCost(id)
		note := dest.Description
		if !slices.Contains(st.UnlockedRegions, dest.Region) {
			region, _ := cat.Region(dest.Region)
			note = u.paint(ansiDim, fmt.Sprintf("locked (%s, %s)", region.Name, money(region.UnlockCost)))
		} else if cost > st.Energy {
			note = u.paint(ansiRed, "not enough energy")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", dest.ID, dest.Name, cost, note)
	}
	w.Flush()
}

func (u *UI) showGarage() {
	st := u.game.State()
	cat := u.game.Catalog()
	current, _ := cat.Vehicle(st.Vehicle)

	u.println("Vehicles")
	w := u.table()
	fmt.Fprintln(w, "ID\tNAME\tTIER\tCAPACITY\tENERGY x\tCOST\t")
	for _, v := range cat.Vehicles() {
		mark := ""
		if v.ID == st.Vehicle {
			mark = u.paint(ansiGreen, "current")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%s\t%s\n", v.ID, v.Name, v.Tier, v.Capacity, v.EnergyMultiplier, money(v.Cost), mark)
	}
	w.Flush()

	u.printf("\nParts (%d/3 slots used, %s is tier %d)\n", len(st.EquippedParts), current.Name, current.Tier)
	w = u.table()
	fmt.Fprintln(w, "ID\tNAME\tTIER\tCOST\tEFFECT\t")
	for _, p := range cat.Parts() {
		mark := ""
		switch {
		case slices.Contains(st.EquippedParts, p.ID):
			mark = u.paint(ansiGreen, "installed")
		case slices.Contains(st.OwnedParts, p.ID):
			mark = "owned"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", p.ID, p.Name, max(1, p.MinTier), money(p.Cost), p.Description, mark)
	}
	w.Flush()
}

func (u *UI) showRegions() {
	st := u.game.State()
	cat := u.game.Catalog()

	w := u.table()
	fmt.Fprintln(w, "ID\tREGION\tCOST\tLOCATIONS\t")
	for _, r := range cat.Regions() {
		var names []string
		for _, l := range cat.LocationsInRegion(r.ID) {
			names = append(names, l.Name)
		}
		mark := u.paint(ansiDim, "locked")
		if slices.Contains(st.UnlockedRegions, r.ID) {
			mark = u.paint(ansiGreen, "unlocked")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, money(r.UnlockCost), strings.Join(names, ", "), mark)
	}
	w.Flush()
}

func (u *UI) showScanner() {
	routes := u.game.Scanner(scannerRows)
	if len(routes) == 0 {
		u.println("No profitable routes today.")
		return
	}
	cat := u.game.Catalog()
	w := u.table()
	fmt.Fprintln(w, "COMMODITY\tFROM\tTO\tBUY\tSELL\tPROFIT\tMARGIN")
	for _, o := range routes {
		from, _ := cat.Location(o.From)
		to, _ := cat.Location(o.To)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.0f%%\n",
			o.Commodity, from.Name, to.Name, money(o.BuyPrice), money(o.SellPrice),
			u.paint(ansiGreen, signedMoney(o.Profit)), o.MarginPct)
	}
	w.Flush()
}

func (u *UI) showEvents() {
	st := u.game.State()
	cat := u.game.Catalog()

	if len(st.ActiveEvents) == 0 {
		u.println("Markets are calm.")
	}
	for _, a := range st.ActiveEvents {
		def, _ := cat.Event(a.EventID)
		where := "everywhere"
		switch {
		case a.AffectedLocationID != "":
			l, _ := cat.Location(a.AffectedLocationID)
			where = l.Name
		case a.AffectedRegionID != "":
			r, _ := cat.Region(a.AffectedRegionID)
			where = r.Name
		}
		u.printf("%s %s (%s, until day %d): %s\n", u.paint(ansiYellow, "!"), def.Name, where, a.EndDay, def.Description)
	}

	if len(st.EventLog) > 0 {
		u.println("\nRecent news")
		for _, e := range st.EventLog[:min(eventFeedLength, len(st.EventLog))] {
			verb := "ended"
			if e.IsStart {
				verb = "started"
			}
			u.printf("  Day %d: %s %s\n", e.Day, e.EventName, verb)
		}
	}
}

// showNews prints log entries from the current day, right after a day change.
func (u *UI) showNews() {
	st := u.game.State()
	for _, e := range st.EventLog {
		if e.Day != st.Day {
			break
		}
		if e.IsStart {
			u.printf("%s %s: %s\n", u.paint(ansiYellow, "NEWS"), e.EventName, e.Description)
		} else {
			u.printf("%s %s has ended. %s\n", u.paint(ansiDim, "NEWS"), e.EventName, e.Description)
		}
	}
}

func (u *UI) showStats() {
	st := u.game.State()
	status := u.game.Status()
	cat := u.game.Catalog()

	w := u.table()
	fmt.Fprintf(w, "Net worth:\t%s\n", money(status.NetWorth))
	fmt.Fprintf(w, "Cash:\t%s\n", money(st.Money))
	fmt.Fprintf(w, "Total profit:\t%s\n", signedMoney(st.TotalProfit))
	fmt.Fprintf(w, "Trades made:\t%d\n", st.TradesCompleted)
	fmt.Fprintf(w, "Days left:\t%d\n", st.MaxDays-st.Day)
	w.Flush()

	if len(st.Cargo) == 0 {
		u.println("\nCargo hold is empty.")
		return
	}
	u.println("\nCargo")
	w = u.table()
	fmt.Fprintln(w, "COMMODITY\tQTY\tPAID\tSELLS HERE\t")
	board := u.game.LocalMarket()
	for _, c := range st.Cargo {
		cm, _ := cat.Commodity(c.CommodityID)
		sells := "-"
		for _, p := range board {
			if p.CommodityID == c.CommodityID {
				sells = money(p.SellPrice)
			}
		}
		fmt.Fprintf(w, "%s\t%d %s\t%s\t%s\t\n", cm.Name, c.Quantity, cm.Unit, money(c.PurchasePrice), sells)
	}
	w.Flush()
}

func (u *UI) showGameOver() {
	st := u.game.State()
	status := u.game.Status()
	cat := u.game.Catalog()
	v, _ := cat.Vehicle(st.Vehicle)
	vehicleValue := v.Cost / 2
	cargoValue := status.NetWorth - st.Money - vehicleValue

	u.println(strings.Repeat("=", 40))
	u.println("               GAME OVER")
	u.println(strings.Repeat("=", 40))
	u.printf("After %d days of trading you are a %s.\n\n", st.MaxDays, u.paint(ansiYellow, game.Rank(status.NetWorth)))

	w := u.table()
	fmt.Fprintf(w, "Cash:\t%s\n", money(st.Money))
	fmt.Fprintf(w, "Cargo value:\t%s\n", money(cargoValue))
	fmt.Fprintf(w, "Vehicle value:\t%s\n", money(vehicleValue))
	fmt.Fprintf(w, "Final score:\t%s\n", money(status.NetWorth))
	fmt.Fprintf(w, "Total profit:\t%s\n", signedMoney(st.TotalProfit))
	fmt.Fprintf(w, "Trades made:\t%d\n", st.TradesCompleted)
	fmt.Fprintf(w, "Final vehicle:\t%s\n", v.Name)
	w.Flush()
}
