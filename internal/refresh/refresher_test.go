package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/pipeline"
	"github.com/mmquake/quake-watch/internal/stream"
	"github.com/mmquake/quake-watch/internal/timewindow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockQuerier returns one canned result per period and records calls.
type mockQuerier struct {
	mu      sync.Mutex
	calls   []timewindow.Mode
	results map[timewindow.Mode]*models.QueryResult
	err     error
}

func (m *mockQuerier) Query(ctx context.Context, mode timewindow.Mode, date string, opts pipeline.Options) (*models.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mode)
	if m.err != nil {
		return nil, m.err
	}
	if res, ok := m.results[mode]; ok {
		return res, nil
	}
	return &models.QueryResult{Title: pipeline.Title(mode)}, nil
}

func (m *mockQuerier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRefresher_InitialWarmup(t *testing.T) {
	q := &mockQuerier{results: map[timewindow.Mode]*models.QueryResult{
		timewindow.ModeRollingDay: {Title: "Myanmar Earthquakes - Past Day", Count: 7},
	}}

	r := New(time.Minute, 2, 8, q, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	waitFor(t, func() bool {
		_, ok := r.Snapshot("month")
		return ok
	})

	res, ok := r.Snapshot("day")
	if !ok {
		t.Fatal("expected a warmed day snapshot")
	}
	if res.Count != 7 {
		t.Errorf("expected count 7, got %d", res.Count)
	}

	if _, ok := r.Snapshot("today"); ok {
		t.Error("only rolling periods are warmed")
	}

	cancel()
	r.Stop()

	if q.callCount() < len(Periods) {
		t.Errorf("expected at least %d queries, got %d", len(Periods), q.callCount())
	}
}

func TestRefresher_ErrorKeepsNoSnapshot(t *testing.T) {
	q := &mockQuerier{err: errors.New("upstream down")}

	r := New(time.Minute, 1, 8, q, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	waitFor(t, func() bool { return q.callCount() >= len(Periods) })

	if _, ok := r.Snapshot("day"); ok {
		t.Error("a failed refresh must not install a snapshot")
	}

	cancel()
	r.Stop()
}

func TestRefresher_StaleSequenceDiscarded(t *testing.T) {
	q := &mockQuerier{results: map[timewindow.Mode]*models.QueryResult{
		timewindow.ModeRollingDay: {Count: 3},
	}}
	r := New(time.Minute, 1, 8, q, nil, nil)

	// A fresher refresh (seq 5) already completed; a slow duplicate with
	// an older sequence finishes afterwards and must be discarded.
	r.snapshots["day"] = entry{seq: 5, result: &models.QueryResult{Count: 10}}

	r.refresh(context.Background(), timewindow.ModeRollingDay, 2)

	res, _ := r.Snapshot("day")
	if res.Count != 10 {
		t.Error("stale completion overwrote a fresher snapshot")
	}

	// A newer sequence still wins.
	r.refresh(context.Background(), timewindow.ModeRollingDay, 8)
	res, _ = r.Snapshot("day")
	if res.Count != 3 {
		t.Error("newer completion should replace the snapshot")
	}
}

func TestRefresher_PublishesToHub(t *testing.T) {
	hub := stream.NewHub()
	id, ch := hub.Subscribe()
	defer hub.Unsubscribe(id)

	r := New(time.Minute, 1, 8, &mockQuerier{}, hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	received := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(received) < len(Periods) {
		select {
		case s := <-ch:
			received[s.Period] = true
		case <-timeout:
			t.Fatalf("timed out, received %v", received)
		}
	}

	cancel()
	r.Stop()
}
