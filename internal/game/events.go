/*
Package game
File: events.go
Description:
    Temporary market events. Handles:
    1. Weighted random selection of a new event (at most 3 active at once).
    2. Resolving the event's concrete target (region or location) at activation.
    3. Expiring events once their last day has passed.
    4. Folding every applicable event into a single price multiplier.
*/

package game

import (
	"math/rand/v2"
	"slices"
)

const (
	maxActiveEvents = 3
	eventLogSize    = 15

	// DefaultEventChance is the daily probability of attempting a new event roll.
	DefaultEventChance = 0.25
)

// RollNewEvent picks a new event to start on day. It returns false when the
// active list is full or every event is already running.
func RollNewEvent(rng *rand.Rand, cat *Catalog, active []ActiveEvent, day int, unlockedRegions []string) (ActiveEvent, bool) {
	if len(active) >= maxActiveEvents {
		return ActiveEvent{}, false
	}

	// 1. Candidate pool: events not already represented
	var pool []MarketEvent
	totalWeight := 0.0
	for _, ev := range cat.events {
		if slices.ContainsFunc(active, func(a ActiveEvent) bool { return a.EventID == ev.ID }) {
			continue
		}
		pool = append(pool, ev)
		totalWeight += ev.Weight
	}
	if len(pool) == 0 {
		return ActiveEvent{}, false
	}

	// 2. Weighted draw
	chosen := pool[0]
	remaining := rng.Float64() * totalWeight
	for _, ev := range pool {
		remaining -= ev.Weight
		if remaining <= 0 {
			chosen = ev
			break
		}
	}

	// 3. Resolve the target
	inst := ActiveEvent{
		EventID:  chosen.ID,
		StartDay: day,
		EndDay:   day + chosen.DurationDays - 1,
	}
	switch chosen.Scope {
	case ScopeRegion:
		inst.AffectedRegionID = chosen.AffectedRegion
	case ScopeLocation:
		inst.AffectedLocationID = pickEventLocation(rng, cat, chosen.AffectedLocations, unlockedRegions)
	}
	return inst, true
}

// pickEventLocation prefers candidates in unlocked regions. When none are
// unlocked it falls back to the full candidate list, so an event may land
// somewhere the player cannot reach yet.
func pickEventLocation(rng *rand.Rand, cat *Catalog, candidates, unlockedRegions []string) string {
	if len(candidates) == 0 {
		return ""
	}
	var reachable []string
	for _, id := range candidates {
		if loc, ok := cat.Location(id); ok && slices.Contains(unlockedRegions, loc.Region) {
			reachable = append(reachable, id)
		}
	}
	if len(reachable) > 0 {
		return reachable[rng.IntN(len(reachable))]
	}
	return candidates[rng.IntN(len(candidates))]
}

// ExpireEvents drops every event whose last day is before day and returns
// the survivors plus one "ended" log entry per expired event.
func ExpireEvents(cat *Catalog, active []ActiveEvent, day int) ([]ActiveEvent, []EventLogEntry) {
	remaining := make([]ActiveEvent, 0, len(active))
	var ended []EventLogEntry
	for _, a := range active {
		if a.EndDay >= day {
			remaining = append(remaining, a)
			continue
		}
		name := a.EventID
		if def, ok := cat.Event(a.EventID); ok {
			name = def.Name
		}
		ended = append(ended, EventLogEntry{
			Day:         day,
			EventName:   name,
			Description: "Markets are returning to normal",
			IsStart:     false,
		})
	}
	return remaining, ended
}

// startedEntry builds the log line for an event that just began.
func startedEntry(cat *Catalog, a ActiveEvent) EventLogEntry {
	entry := EventLogEntry{Day: a.StartDay, EventName: a.EventID, IsStart: true}
	if def, ok := cat.Event(a.EventID); ok {
		entry.EventName = def.Name
		entry.Description = def.Description
	}
	if loc, ok := cat.Location(a.AffectedLocationID); ok {
		entry.Description += " (" + loc.Name + ")"
	}
	return entry
}

// PrependEventLog puts the newest entries in front and caps the history.
func PrependEventLog(log, entries []EventLogEntry) []EventLogEntry {
	out := make([]EventLogEntry, 0, len(entries)+len(log))
	out = append(out, entries...)
	out = append(out, log...)
	if len(out) > eventLogSize {
		out = out[:eventLogSize]
	}
	return out
}

// eventApplies reports whether an active event covers a location.
func eventApplies(def MarketEvent, a ActiveEvent, loc Location) bool {
	switch def.Scope {
	case ScopeGlobal:
		return true
	case ScopeRegion:
		return a.AffectedRegionID == loc.Region
	case ScopeLocation:
		return a.AffectedLocationID == loc.ID
	}
	return false
}

// EventMultiplier multiplies together every applicable event effect on a
// commodity at a location. affected is true if at least one effect matched.
func EventMultiplier(cat *Catalog, commodityID string, loc Location, active []ActiveEvent) (multiplier float64, affected bool) {
	multiplier = 1.0
	for _, a := range active {
		def, ok := cat.Event(a.EventID)
		if !ok || !eventApplies(def, a, loc) {
			continue
		}
		for _, eff := range def.Effects {
			if eff.CommodityID == commodityID {
				multiplier *= eff.PriceMultiplier
				affected = true
			}
		}
	}
	return multiplier, affected
}
