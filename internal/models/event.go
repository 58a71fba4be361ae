package models

import "time"

// MyanmarZone is the fixed display zone for all derived timestamps and
// calendar-date math (UTC+6:30). A fixed offset avoids a tzdata dependency.
var MyanmarZone = time.FixedZone("MMT", 6*3600+30*60)

// SeismicEvent is one normalized earthquake record from the upstream feed.
type SeismicEvent struct {
	ID        string
	Magnitude float64 // may be fractional, zero or negative (micro-events)
	Place     string
	Title     string
	DetailURL string
	Time      int64 // epoch milliseconds, authoritative ordering key
	Longitude float64
	Latitude  float64
	Depth     float64 // km, negative means above sea level in source data

	// Display attributes derived by classify.Annotate.
	Severity   int
	Color      string
	MarkerSize float64
	IsToday    bool
	IsRecent   bool
	LocalTime  string
	TimeAgo    string
}

// OccurredAt returns the event time as a time.Time in the Myanmar zone.
func (e *SeismicEvent) OccurredAt() time.Time {
	return time.UnixMilli(e.Time).In(MyanmarZone)
}

// Group is a date-keyed partition of ordered events.
type Group struct {
	Date   string // local calendar date, YYYY-MM-DD
	Events []SeismicEvent
}

// QueryResult is the presentation-ready output of one pipeline run.
type QueryResult struct {
	Title       string
	Count       int
	Truncated   bool
	GeneratedAt time.Time
	Events      []SeismicEvent
	Groups      []Group
}
