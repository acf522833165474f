/*
Package game
File: hotcold.go
Description:
    Weekly demand rotation. Every 7 days one universal commodity becomes "hot"
    (+35% everywhere) and another becomes "cold" (-30% everywhere). The previous
    week's picks sit out a round whenever enough alternatives remain.
*/

package game

import (
	"math/rand/v2"
	"slices"
)

const (
	hotMultiplier  = 1.35
	coldMultiplier = 0.70
	daysPerWeek    = 7
)

// WeekOf returns the week number a day belongs to.
func WeekOf(day int) int {
	return day / daysPerWeek
}

// GenerateWeeklyStatus picks the hot and cold commodity for a week from the eligible set.
func GenerateWeeklyStatus(rng *rand.Rand, eligible []string, week int, previousHot, previousCold string) WeeklyStatus {
	available := make([]string, 0, len(eligible))
	for _, id := range eligible {
		if id != previousHot && id != previousCold {
			available = append(available, id)
		}
	}
	// Too few fresh candidates: allow repeats rather than leaving a slot empty.
	if len(available) < 2 {
		available = slices.Clone(eligible)
	}

	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	status := WeeklyStatus{Week: week}
	if len(available) > 0 {
		status.HotCommodity = available[0]
	}
	if len(available) > 1 {
		status.ColdCommodity = available[1]
	}
	return status
}

// HotColdMultiplier returns the weekly demand factor for a commodity.
func HotColdMultiplier(commodityID string, status WeeklyStatus) float64 {
	switch commodityID {
	case "":
		return 1.0
	case status.HotCommodity:
		return hotMultiplier
	case status.ColdCommodity:
		return coldMultiplier
	}
	return 1.0
}
