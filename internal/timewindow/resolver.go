package timewindow

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmquake/quake-watch/internal/models"
)

// ErrInvalidInput marks a malformed or missing period/date selector.
var ErrInvalidInput = errors.New("invalid period or date")

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

type Mode string

const (
	ModeToday        Mode = "today"
	ModeRollingDay   Mode = "day"
	ModeRollingWeek  Mode = "week"
	ModeRollingMonth Mode = "month"
	ModeCustom       Mode = "custom"
)

// ParseMode maps a period query value to a Mode. Empty or unknown values
// fall back to the rolling-day feed.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeToday, ModeRollingDay, ModeRollingWeek, ModeRollingMonth, ModeCustom:
		return Mode(s)
	default:
		return ModeRollingDay
	}
}

type Kind int

const (
	// KindNamedFeed selects a pre-aggregated rolling feed; the upstream
	// defines the window server-side.
	KindNamedFeed Kind = iota
	// KindExplicitRange carries a concrete [Start, End) instant pair.
	KindExplicitRange
)

type WindowSpec struct {
	Kind  Kind
	Feed  string // "day", "week" or "month" when Kind == KindNamedFeed
	Start time.Time
	End   time.Time
}

// Resolve turns a period selection into a window spec. Rolling periods map
// to named feeds. Today and custom dates map to an exact 24-hour range on
// the Myanmar calendar; a custom date equal to the current date collapses
// to the today range. Custom dates other than today always produce an
// explicit range so results are deterministic and bypass feed caching.
func Resolve(mode Mode, date string) (WindowSpec, error) {
	switch mode {
	case ModeRollingDay, ModeRollingWeek, ModeRollingMonth:
		return WindowSpec{Kind: KindNamedFeed, Feed: string(mode)}, nil
	case ModeToday:
		return todayWindow(), nil
	case ModeCustom:
		if date == "" {
			return WindowSpec{}, fmt.Errorf("%w: custom period requires a date", ErrInvalidInput)
		}
		day, err := time.ParseInLocation("2006-01-02", date, models.MyanmarZone)
		if err != nil {
			return WindowSpec{}, fmt.Errorf("%w: bad date %q", ErrInvalidInput, date)
		}
		today := midnight(clock.Now())
		if day.Equal(today) {
			return todayWindow(), nil
		}
		return WindowSpec{Kind: KindExplicitRange, Start: day, End: day.Add(24 * time.Hour)}, nil
	default:
		return WindowSpec{}, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, mode)
	}
}

func todayWindow() WindowSpec {
	start := midnight(clock.Now())
	return WindowSpec{Kind: KindExplicitRange, Start: start, End: start.Add(24 * time.Hour)}
}

// midnight truncates t to 00:00:00 on the Myanmar calendar. The zone has a
// fixed offset, so adding 24h always lands on the next midnight.
func midnight(t time.Time) time.Time {
	local := t.In(models.MyanmarZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, models.MyanmarZone)
}
