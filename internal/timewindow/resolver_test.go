package timewindow

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmquake/quake-watch/internal/models"
)

// 2026-04-15 10:30 MMT
var testNow = time.Date(2026, 4, 15, 10, 30, 0, 0, models.MyanmarZone)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { SetClock(nil) })
}

func TestResolve_RollingModes(t *testing.T) {
	for _, mode := range []Mode{ModeRollingDay, ModeRollingWeek, ModeRollingMonth} {
		spec, err := Resolve(mode, "")
		if err != nil {
			t.Fatalf("Resolve(%s) error: %v", mode, err)
		}
		if spec.Kind != KindNamedFeed {
			t.Errorf("Resolve(%s): expected named feed, got kind %d", mode, spec.Kind)
		}
		if spec.Feed != string(mode) {
			t.Errorf("Resolve(%s): expected feed %q, got %q", mode, mode, spec.Feed)
		}
	}
}

func TestResolve_Today(t *testing.T) {
	freezeClock(t)

	spec, err := Resolve(ModeToday, "")
	if err != nil {
		t.Fatalf("Resolve(today) error: %v", err)
	}
	if spec.Kind != KindExplicitRange {
		t.Fatalf("expected explicit range, got kind %d", spec.Kind)
	}

	wantStart := time.Date(2026, 4, 15, 0, 0, 0, 0, models.MyanmarZone)
	if !spec.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, spec.Start)
	}
	if spec.End.Sub(spec.Start) != 24*time.Hour {
		t.Errorf("expected exactly 24h window, got %v", spec.End.Sub(spec.Start))
	}
}

func TestResolve_CustomDate(t *testing.T) {
	freezeClock(t)

	spec, err := Resolve(ModeCustom, "2026-04-10")
	if err != nil {
		t.Fatalf("Resolve(custom) error: %v", err)
	}
	if spec.Kind != KindExplicitRange {
		t.Fatalf("expected explicit range, got kind %d", spec.Kind)
	}
	if spec.End.Sub(spec.Start) != 24*time.Hour {
		t.Errorf("expected exactly 24h window, got %v", spec.End.Sub(spec.Start))
	}
	wantStart := time.Date(2026, 4, 10, 0, 0, 0, 0, models.MyanmarZone)
	if !spec.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, spec.Start)
	}
}

func TestResolve_CustomDateEqualToday(t *testing.T) {
	freezeClock(t)

	custom, err := Resolve(ModeCustom, "2026-04-15")
	if err != nil {
		t.Fatalf("Resolve(custom=today) error: %v", err)
	}
	today, _ := Resolve(ModeToday, "")

	if !custom.Start.Equal(today.Start) || !custom.End.Equal(today.End) {
		t.Errorf("custom date equal to today should collapse to the today window: got %+v, want %+v", custom, today)
	}
}

func TestResolve_CustomMissingDate(t *testing.T) {
	_, err := Resolve(ModeCustom, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolve_CustomBadDate(t *testing.T) {
	_, err := Resolve(ModeCustom, "15-04-2026")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseMode_Defaults(t *testing.T) {
	if got := ParseMode(""); got != ModeRollingDay {
		t.Errorf("empty period should default to day, got %s", got)
	}
	if got := ParseMode("fortnight"); got != ModeRollingDay {
		t.Errorf("unknown period should default to day, got %s", got)
	}
	if got := ParseMode("week"); got != ModeRollingWeek {
		t.Errorf("expected week, got %s", got)
	}
}
