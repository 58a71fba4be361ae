// Package classify derives the display attributes of a seismic event:
// magnitude severity bucket, marker size, recency flags and Myanmar-local
// timestamp strings.
package classify

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmquake/quake-watch/internal/models"
)

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

// bucketColors maps each severity bucket to its display color. Bucket 0
// covers everything below magnitude 1, including negative micro-events.
var bucketColors = [9]string{
	"#bdbdbd", // < 1, light gray
	"#4fc3f7", // 1-2, bright blue
	"#8bc34a", // 2-3, bright green
	"#ffeb3b", // 3-4, bright yellow
	"#ff9800", // 4-5, bright orange
	"#ff5252", // 5-6, bright red
	"#ff4081", // 6-7, bright pink
	"#e040fb", // 7-8, bright purple
	"#aa00ff", // >= 8, deep purple
}

// Bucket returns the severity bucket index (0-8) for a magnitude.
// Thresholds sit at whole magnitudes 1 through 8, inclusive lower bound.
func Bucket(mag float64) int {
	for b := 8; b >= 1; b-- {
		if mag >= float64(b) {
			return b
		}
	}
	return 0
}

// Color returns the display color for a magnitude's severity bucket.
func Color(mag float64) string {
	return bucketColors[Bucket(mag)]
}

// MarkerSize returns the map marker size in pixels: a clamped linear
// function of magnitude, scaled 1.5x for the currently selected event.
func MarkerSize(mag float64, selected bool) float64 {
	size := mag*5 + 5
	if size < 8 {
		size = 8
	}
	if size > 35 {
		size = 35
	}
	if selected {
		size *= 1.5
	}
	return size
}

// IsToday reports whether the epoch-ms timestamp falls on the current
// Myanmar calendar date.
func IsToday(ms int64, now time.Time) bool {
	d := time.UnixMilli(ms).In(models.MyanmarZone)
	n := now.In(models.MyanmarZone)
	return d.Year() == n.Year() && d.Month() == n.Month() && d.Day() == n.Day()
}

// IsRecent reports whether the event occurred within the last 24 hours.
func IsRecent(ms int64, now time.Time) bool {
	return now.Sub(time.UnixMilli(ms)) <= 24*time.Hour
}

// FormatLocal renders an epoch-ms timestamp in Myanmar time, e.g.
// "Apr 01, 2025, 9:57:03 PM".
func FormatLocal(ms int64) string {
	return time.UnixMilli(ms).In(models.MyanmarZone).Format("Jan 02, 2006, 3:04:05 PM")
}

// TimeAgo renders the elapsed time since an epoch-ms timestamp using the
// largest unit with a count of at least one, in fixed-divisor steps
// (years, months, days, hours, minutes). Under a minute it reports
// "Just now". Months and years use fixed lengths; close enough for a
// human-facing relative time, not calendar-exact.
func TimeAgo(ms int64, now time.Time) string {
	seconds := int64(now.Sub(time.UnixMilli(ms)) / time.Second)

	steps := []struct {
		divisor int64
		unit    string
	}{
		{31536000, "year"},
		{2592000, "month"},
		{86400, "day"},
		{3600, "hour"},
		{60, "minute"},
	}

	for _, s := range steps {
		interval := seconds / s.divisor
		if interval > 1 {
			return fmt.Sprintf("%d %ss ago", interval, s.unit)
		}
		if interval == 1 {
			return fmt.Sprintf("1 %s ago", s.unit)
		}
	}
	return "Just now"
}

// Annotate fills the derived display attributes of each event and returns
// a new slice; the input is not mutated. The current instant is read once
// for the whole pass so all events share the same "now" baseline. A
// missing place falls back to "Unknown location".
func Annotate(events []models.SeismicEvent) []models.SeismicEvent {
	now := clock.Now()

	out := make([]models.SeismicEvent, len(events))
	for i, e := range events {
		e.Severity = Bucket(e.Magnitude)
		e.Color = Color(e.Magnitude)
		e.MarkerSize = MarkerSize(e.Magnitude, false)
		e.IsToday = IsToday(e.Time, now)
		e.IsRecent = IsRecent(e.Time, now)
		e.LocalTime = FormatLocal(e.Time)
		e.TimeAgo = TimeAgo(e.Time, now)
		if e.Place == "" {
			e.Place = "Unknown location"
		}
		out[i] = e
	}
	return out
}
