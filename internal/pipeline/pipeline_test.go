package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmquake/quake-watch/internal/classify"
	"github.com/mmquake/quake-watch/internal/eventsort"
	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/timewindow"
)

var testNow = time.Date(2026, 4, 15, 10, 30, 0, 0, models.MyanmarZone)

// fakeFetcher returns canned events and records the window it was given.
type fakeFetcher struct {
	events    []models.SeismicEvent
	truncated bool
	err       error
	lastSpec  timewindow.WindowSpec
}

func (f *fakeFetcher) Fetch(ctx context.Context, w timewindow.WindowSpec) ([]models.SeismicEvent, bool, error) {
	f.lastSpec = w
	return f.events, f.truncated, f.err
}

func freezeClocks(t *testing.T) {
	t.Helper()
	fake := clockwork.NewFakeClockAt(testNow)
	classify.SetClock(fake)
	timewindow.SetClock(fake)
	t.Cleanup(func() {
		classify.SetClock(nil)
		timewindow.SetClock(nil)
	})
}

func TestQuery_FiltersAnnotatesAndSorts(t *testing.T) {
	freezeClocks(t)

	fetcher := &fakeFetcher{events: []models.SeismicEvent{
		{ID: "outside", Latitude: 40, Longitude: 96, Magnitude: 6.0, Time: testNow.Add(-time.Hour).UnixMilli()},
		{ID: "older", Latitude: 20, Longitude: 96, Magnitude: 5.2, Time: testNow.Add(-3 * time.Hour).UnixMilli()},
		{ID: "newer", Latitude: 21, Longitude: 95, Magnitude: 3.1, Time: testNow.Add(-time.Hour).UnixMilli()},
	}}

	res, err := New(fetcher, nil).Query(context.Background(), timewindow.ModeRollingDay, "", Options{
		Sort:  eventsort.KeyTime,
		Order: eventsort.Desc,
	})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}

	if fetcher.lastSpec.Kind != timewindow.KindNamedFeed || fetcher.lastSpec.Feed != "day" {
		t.Errorf("period=day must select the named day feed, got %+v", fetcher.lastSpec)
	}
	if res.Count != 2 {
		t.Fatalf("expected 2 in-region events, got %d", res.Count)
	}
	if res.Events[0].ID != "newer" || res.Events[1].ID != "older" {
		t.Errorf("expected newest-first order, got %s then %s", res.Events[0].ID, res.Events[1].ID)
	}
	if res.Events[0].TimeAgo != "1 hour ago" {
		t.Errorf("events must be annotated, got timeAgo %q", res.Events[0].TimeAgo)
	}
	if res.Title != "Myanmar Earthquakes - Past Day" {
		t.Errorf("unexpected title %q", res.Title)
	}
	if res.Groups != nil {
		t.Error("groups must be omitted unless requested")
	}
}

func TestQuery_Grouped(t *testing.T) {
	freezeClocks(t)

	fetcher := &fakeFetcher{events: []models.SeismicEvent{
		{ID: "today", Latitude: 20, Longitude: 96, Time: testNow.Add(-time.Hour).UnixMilli()},
		{ID: "yesterday", Latitude: 20, Longitude: 96, Time: testNow.Add(-26 * time.Hour).UnixMilli()},
	}}

	res, err := New(fetcher, nil).Query(context.Background(), timewindow.ModeRollingWeek, "", Options{
		Sort: eventsort.KeyTime, Order: eventsort.Desc, Grouped: true,
	})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(res.Groups))
	}
	if res.Groups[0].Date != "2026-04-15" {
		t.Errorf("today's group must be pinned first, got %s", res.Groups[0].Date)
	}
}

func TestQuery_InvalidInput(t *testing.T) {
	_, err := New(&fakeFetcher{}, nil).Query(context.Background(), timewindow.ModeCustom, "", Options{})
	if !errors.Is(err, timewindow.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQuery_FetchErrorPropagates(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := New(&fakeFetcher{err: sentinel}, nil).Query(context.Background(), timewindow.ModeRollingDay, "", Options{})
	if !errors.Is(err, sentinel) {
		t.Errorf("fetch errors must propagate wrapped, got %v", err)
	}
}

func TestQuery_TruncationSurfaced(t *testing.T) {
	freezeClocks(t)

	fetcher := &fakeFetcher{truncated: true}
	res, err := New(fetcher, nil).Query(context.Background(), timewindow.ModeCustom, "2026-04-10", Options{})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if !res.Truncated {
		t.Error("truncation flag must be surfaced, not silently dropped")
	}
}
