// Package eventsort orders filtered events for presentation and partitions
// them into date-keyed groups with the current day pinned first.
package eventsort

import (
	"sort"

	"github.com/mmquake/quake-watch/internal/models"
)

type Key string

const (
	KeyTime      Key = "time"
	KeyMagnitude Key = "magnitude"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseKey maps a sort query value to a Key, defaulting to time.
func ParseKey(s string) Key {
	if Key(s) == KeyMagnitude {
		return KeyMagnitude
	}
	return KeyTime
}

// ParseOrder maps an order query value to an Order, defaulting to
// descending (newest / strongest first).
func ParseOrder(s string) Order {
	if Order(s) == Asc {
		return Asc
	}
	return Desc
}

// Toggle returns the sort state after selecting a key: selecting the
// current key flips the order, selecting a new key resets to descending.
func Toggle(key Key, order Order, selected Key) (Key, Order) {
	if selected == key {
		if order == Asc {
			return key, Desc
		}
		return key, Asc
	}
	return selected, Desc
}

// Sort returns a new slice ordered by the given key and direction. Time
// sorts additionally pin today's events ahead of all others regardless of
// direction, so the freshest day's activity always leads; within each
// partition the requested direction applies. Events must already carry
// their IsToday flag.
func Sort(events []models.SeismicEvent, key Key, order Order) []models.SeismicEvent {
	out := make([]models.SeismicEvent, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if key == KeyTime && a.IsToday != b.IsToday {
			return a.IsToday
		}

		switch key {
		case KeyMagnitude:
			if order == Asc {
				return a.Magnitude < b.Magnitude
			}
			return a.Magnitude > b.Magnitude
		default:
			if order == Asc {
				return a.Time < b.Time
			}
			return a.Time > b.Time
		}
	})

	return out
}

// Group partitions already-sorted events by Myanmar calendar date. The
// group holding today's events (if any) comes first; the remaining groups
// follow in descending date order. Events keep their incoming order within
// each group.
func Group(events []models.SeismicEvent) []models.Group {
	byDate := make(map[string]*models.Group)
	var keys []string
	todayKey := ""

	for _, e := range events {
		date := e.OccurredAt().Format("2006-01-02")
		g, ok := byDate[date]
		if !ok {
			g = &models.Group{Date: date}
			byDate[date] = g
			keys = append(keys, date)
		}
		g.Events = append(g.Events, e)
		if e.IsToday {
			todayKey = date
		}
	}

	// ISO dates compare lexicographically, so a plain string sort gives
	// descending calendar order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]models.Group, 0, len(keys))
	if todayKey != "" {
		groups = append(groups, *byDate[todayKey])
	}
	for _, k := range keys {
		if k == todayKey {
			continue
		}
		groups = append(groups, *byDate[k])
	}
	return groups
}
