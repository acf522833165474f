/*
Package terminal
File: terminal.go
Description:
    The line-oriented terminal driver. It reads one command per line, calls
    into the game and prints the outcome. It owns the session lifecycle the
    player sees: Save & Quit, autosave on exit, and the end-of-season screen
    with the option to start over.
*/

package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/everforgeworks/tradewinds/internal/game"
	"github.com/everforgeworks/tradewinds/internal/save"
)

const scannerRows = 10

// NewGameFunc starts a fresh session when the player chooses to play again.
type NewGameFunc func() *game.Game

// UI is one interactive session bound to an input and an output stream.
type UI struct {
	game      *game.Game
	sessionID string
	newGame   NewGameFunc
	store     *save.Store // nil disables saving
	in        *bufio.Scanner
	out       io.Writer
	color     bool
	log       logrus.FieldLogger

	awaitingRestart bool
	commands        map[string]command
}

type command struct {
	usage string
	help  string
	run   func(u *UI, args []string) error
}

// Option configures a UI.
type Option func(*UI)

// WithColor turns ANSI colors on or off.
func WithColor(on bool) Option { return func(u *UI) { u.color = on } }

// WithStore enables saving to store.
func WithStore(s *save.Store) Option { return func(u *UI) { u.store = s } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option { return func(u *UI) { u.log = l } }

// New builds a UI around an existing session.
func New(g *game.Game, sessionID string, newGame NewGameFunc, in io.Reader, out io.Writer, opts ...Option) *UI {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	u := &UI{
		game:      g,
		sessionID: sessionID,
		newGame:   newGame,
		in:        bufio.NewScanner(in),
		out:       out,
		log:       discard,
		commands:  commandTable(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Game exposes the session currently being played.
func (u *UI) Game() *game.Game { return u.game }

// Run processes commands until the player quits, input ends, or ctx is
// cancelled. Unless the season is over, the session is saved on the way out.
func (u *UI) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for u.in.Scan() {
			select {
			case lines <- u.in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	u.println("TRADEWINDS - Buy low, sell high, repeat.")
	u.printf("You have %d days to make as much money as possible. Type 'help' for commands.\n", u.game.Status().MaxDays)
	u.header()

	for {
		u.prompt()
		select {
		case <-ctx.Done():
			u.println()
			u.persist()
			return nil
		case line, ok := <-lines:
			if !ok {
				u.persist()
				if err := u.in.Err(); err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}
			if stop := u.handle(line); stop {
				return nil
			}
		}
	}
}

// handle runs one input line. It reports whether the session should end.
func (u *UI) handle(line string) bool {
	fields := strings.Fields(strings.ToLower(line))

	if u.awaitingRestart {
		if len(fields) > 0 && (fields[0] == "y" || fields[0] == "yes") {
			u.restart()
			return false
		}
		u.println("Thanks for playing!")
		return true
	}

	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]
	if name == "quit" || name == "exit" || name == "q" {
		u.persist()
		u.println("Goodbye!")
		return true
	}

	cmd, ok := u.commands[resolveAlias(name)]
	if !ok {
		u.printf("Unknown command %q. Type 'help' for the list.\n", name)
		return false
	}
	if err := cmd.run(u, args); err != nil {
		u.fail(err)
	}

	if u.game.Status().GameOver {
		return u.endSeason()
	}
	return false
}

func (u *UI) fail(err error) {
	var rej *game.Rejection
	if errors.As(err, &rej) {
		u.println(u.paint(ansiRed, rej.Message))
		return
	}
	u.println(u.paint(ansiRed, err.Error()))
}

func (u *UI) ok(r game.Receipt) {
	u.println(u.paint(ansiGreen, r.Message))
}

// endSeason shows the final score and asks about a rematch. It reports
// whether the session should end right away.
func (u *UI) endSeason() bool {
	u.showGameOver()
	if u.store != nil {
		u.store.Delete()
	}
	u.log.WithFields(logrus.Fields{
		"session_id": u.sessionID,
		"net_worth":  u.game.NetWorth(),
	}).Info("season finished")

	if u.newGame == nil {
		return true
	}
	u.awaitingRestart = true
	u.print("\nPlay again? (y/n) ")
	return false
}

func (u *UI) restart() {
	u.awaitingRestart = false
	u.game = u.newGame()
	u.sessionID = uuid.NewString()
	u.log.WithField("session_id", u.sessionID).Info("new session")
	u.header()
}

// persist saves the session unless saving is off or the season is over.
func (u *UI) persist() {
	if u.store == nil || u.game.Status().GameOver {
		return
	}
	if err := u.store.Save(save.Snapshot{SessionID: u.sessionID, GameState: u.game.State()}); err != nil {
		u.log.WithError(err).Error("autosave failed")
		u.println(u.paint(ansiRed, "Could not save the game: "+err.Error()))
	}
}

func (u *UI) prompt() {
	if u.awaitingRestart {
		return
	}
	u.print("> ")
}

func (u *UI) print(s string) { fmt.Fprint(u.out, s) }

func (u *UI) println(a ...any) { fmt.Fprintln(u.out, a...) }

func (u *UI) printf(format string, a ...any) { fmt.Fprintf(u.out, format, a...) }

// --- Commands ---

var aliases = map[string]string{
	"m":       "market",
	"b":       "buy",
	"s":       "sell",
	"t":       "travel",
	"go":      "travel",
	"r":       "rest",
	"sleep":   "rest",
	"u":       "upgrade",
	"garage":  "upgrade",
	"scanner": "scan",
	"news":    "events",
	"status":  "stats",
	"?":       "help",
}

func resolveAlias(name string) string {
	if full, ok := aliases[name]; ok {
		return full
	}
	return name
}

func commandTable() map[string]command {
	return map[string]command{
		"help":    {"help", "show this list", (*UI).cmdHelp},
		"market":  {"market", "show today's prices here", (*UI).cmdMarket},
		"buy":     {"buy <commodity> <qty|max>", "buy goods here", (*UI).cmdBuy},
		"sell":    {"sell <commodity> <qty|all>", "sell goods here", (*UI).cmdSell},
		"travel":  {"travel [destination]", "list routes, or travel to one", (*UI).cmdTravel},
		"rest":    {"rest", "sleep until tomorrow, energy restored", (*UI).cmdRest},
		"upgrade": {"upgrade", "list vehicles and parts", (*UI).cmdUpgrade},
		"vehicle": {"vehicle <id>", "buy a vehicle", (*UI).cmdVehicle},
		"part":    {"part <id>", "buy a part (installed if a slot is free)", (*UI).cmdPart},
		"equip":   {"equip <id>", "install an owned part", (*UI).cmdEquip},
		"unequip": {"unequip <id>", "remove an installed part", (*UI).cmdUnequip},
		"regions": {"regions", "list regions", (*UI).cmdRegions},
		"unlock":  {"unlock <region>", "pay to open a region", (*UI).cmdUnlock},
		"scan":    {"scan", "best trade routes right now", (*UI).cmdScan},
		"events":  {"events", "active market events and news", (*UI).cmdEvents},
		"stats":   {"stats", "net worth, profit and cargo", (*UI).cmdStats},
		"save":    {"save", "save the game", (*UI).cmdSave},
	}
}

func (u *UI) cmdHelp(_ []string) error {
	names := make([]string, 0, len(u.commands))
	for name := range u.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	w := u.table()
	for _, name := range names {
		c := u.commands[name]
		fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.help)
	}
	fmt.Fprintf(w, "  quit\tsave and quit\n")
	return w.Flush()
}

func (u *UI) cmdMarket(_ []string) error {
	u.showMarket()
	return nil
}

func (u *UI) cmdBuy(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: buy <commodity> <qty|max>")
	}
	id, err := u.resolveCommodity(args[0])
	if err != nil {
		return err
	}
	qty := 0
	if args[1] == "max" {
		qty = u.game.MaxBuy(id)
	} else if qty, err = strconv.Atoi(args[1]); err != nil {
		return fmt.Errorf("%q is not a quantity", args[1])
	}
	r, err := u.game.Buy(id, qty)
	if err != nil {
		return err
	}
	u.ok(r)
	return nil
}

func (u *UI) cmdSell(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: sell <commodity> <qty|all>")
	}
	id, err := u.resolveCommodity(args[0])
	if err != nil {
		return err
	}
	qty := 0
	if args[1] == "all" {
		qty = u.game.State().CargoQuantity(id)
	} else if qty, err = strconv.Atoi(args[1]); err != nil {
		return fmt.Errorf("%q is not a quantity", args[1])
	}
	r, err := u.game.Sell(id, qty)
	if err != nil {
		return err
	}
	u.ok(r)
	return nil
}

func (u *UI) cmdTravel(args []string) error {
	if len(args) == 0 {
		u.showRoutes()
		return nil
	}
	id, err := u.resolveLocation(strings.Join(args, " "))
	if err != nil {
		return err
	}
	r, err := u.game.Travel(id)
	if err != nil {
		return err
	}
	u.ok(r)
	u.header()
	return nil
}

func (u *UI) cmdRest(_ []string) error {
	r, err := u.game.Rest()
	if err != nil {
		return err
	}
	if u.game.Status().GameOver {
		return nil
	}
	u.ok(r)
	u.println("You rest until tomorrow. Energy restored!")
	u.showNews()
	u.header()
	return nil
}

func (u *UI) cmdUpgrade(_ []string) error {
	u.showGarage()
	return nil
}

func (u *UI) cmdVehicle(args []string) error {
	return u.withID(args, "vehicle <id>", u.game.BuyVehicle)
}

func (u *UI) cmdPart(args []string) error {
	return u.withID(args, "part <id>", u.game.BuyPart)
}

func (u *UI) cmdEquip(args []string) error {
	return u.withID(args, "equip <id>", u.game.EquipPart)
}

func (u *UI) cmdUnequip(args []string) error {
	return u.withID(args, "unequip <id>", u.game.UnequipPart)
}

func (u *UI) cmdRegions(_ []string) error {
	u.showRegions()
	return nil
}

func (u *UI) cmdUnlock(args []string) error {
	return u.withID(args, "unlock <region>", u.game.UnlockRegion)
}

func (u *UI) cmdScan(_ []string) error {
	u.showScanner()
	return nil
}

func (u *UI) cmdEvents(_ []string) error {
	u.showEvents()
	return nil
}

func (u *UI) cmdStats(_ []string) error {
	u.showStats()
	return nil
}

func (u *UI) cmdSave(_ []string) error {
	if u.store == nil {
		return errors.New("saving is disabled")
	}
	if err := u.store.Save(save.Snapshot{SessionID: u.sessionID, GameState: u.game.State()}); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	u.println(u.paint(ansiGreen, "Game saved."))
	return nil
}

func (u *UI) withID(args []string, usage string, action func(string) (game.Receipt, error)) error {
	if len(args) != 1 {
		return errors.New("usage: " + usage)
	}
	r, err := action(args[0])
	if err != nil {
		return err
	}
	u.ok(r)
	return nil
}

// resolveCommodity accepts an ID or a case-insensitive name from today's board.
func (u *UI) resolveCommodity(arg string) (string, error) {
	for _, p := range u.game.LocalMarket() {
		if p.CommodityID == arg || strings.EqualFold(p.Name, arg) {
			return p.CommodityID, nil
		}
	}
	return "", fmt.Errorf("%q is not traded here", arg)
}

// resolveLocation accepts an ID or a case-insensitive name.
func (u *UI) resolveLocation(arg string) (string, error) {
	for _, l := range u.game.Catalog().Locations() {
		if l.ID == arg || strings.EqualFold(l.Name, arg) {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("unknown destination %q", arg)
}
