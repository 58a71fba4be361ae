// Package refresh keeps warm snapshots of the rolling feeds. It is the
// external scheduler around the stateless query pipeline: the pipeline
// itself defines no timers and holds no state.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mmquake/quake-watch/internal/eventsort"
	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/observability"
	"github.com/mmquake/quake-watch/internal/pipeline"
	"github.com/mmquake/quake-watch/internal/stream"
	"github.com/mmquake/quake-watch/internal/timewindow"
	"github.com/mmquake/quake-watch/internal/worker"
)

// Querier runs one regional event query.
type Querier interface {
	Query(ctx context.Context, mode timewindow.Mode, date string, opts pipeline.Options) (*models.QueryResult, error)
}

// Periods lists the rolling windows kept warm.
var Periods = []timewindow.Mode{
	timewindow.ModeRollingDay,
	timewindow.ModeRollingWeek,
	timewindow.ModeRollingMonth,
}

type entry struct {
	seq    uint64
	result *models.QueryResult
}

type Refresher struct {
	interval   time.Duration
	numWorkers int
	bufferSize int
	querier    Querier
	hub        *stream.Hub
	metrics    *observability.Metrics
	clock      clockwork.Clock

	pool *worker.Pool
	wg   sync.WaitGroup

	// seq orders concurrent refreshes; a completion older than the stored
	// snapshot is discarded so a slow duplicate response can never
	// overwrite a fresher one.
	seq       atomic.Uint64
	mu        sync.RWMutex
	snapshots map[string]entry
}

func New(interval time.Duration, numWorkers, bufferSize int, querier Querier, hub *stream.Hub, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		interval:   interval,
		numWorkers: numWorkers,
		bufferSize: bufferSize,
		querier:    querier,
		hub:        hub,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
		snapshots:  make(map[string]entry),
	}
}

// SetClock swaps the ticker's time source for tests. Call before Start.
func (r *Refresher) SetClock(c clockwork.Clock) {
	r.clock = c
}

func (r *Refresher) Start(ctx context.Context) {
	r.pool = worker.NewPool(r.numWorkers, r.bufferSize)
	r.pool.Start(ctx)

	slog.Info("starting refresher", "interval", r.interval, "periods", len(Periods))

	// Initial warm-up
	r.refreshAll(ctx)

	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresher shutting down")
			return
		case <-ticker.Chan():
			r.refreshAll(ctx)
		}
	}
}

func (r *Refresher) refreshAll(ctx context.Context) {
	for _, period := range Periods {
		p := period
		seq := r.seq.Add(1)
		if !r.pool.Submit(func(ctx context.Context) { r.refresh(ctx, p, seq) }) {
			slog.Warn("refresh queue full, skipping tick", "period", p)
			r.count(string(p), "skipped")
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, period timewindow.Mode, seq uint64) {
	res, err := r.querier.Query(ctx, period, "", pipeline.Options{
		Sort:    eventsort.KeyTime,
		Order:   eventsort.Desc,
		Grouped: true,
	})
	if err != nil {
		slog.Error("refresh failed", "period", period, "error", err)
		r.count(string(period), "error")
		return
	}

	key := string(period)

	r.mu.Lock()
	if cur, ok := r.snapshots[key]; ok && cur.seq > seq {
		r.mu.Unlock()
		slog.Debug("discarding stale refresh", "period", period, "seq", seq)
		r.count(key, "stale")
		return
	}
	r.snapshots[key] = entry{seq: seq, result: res}
	r.mu.Unlock()

	if r.hub != nil {
		r.hub.Publish(stream.Snapshot{Period: key, Result: res})
	}

	r.count(key, "success")
	slog.Debug("refreshed snapshot", "period", period, "count", res.Count)
}

// Snapshot returns the last successfully warmed result for a period.
func (r *Refresher) Snapshot(period string) (*models.QueryResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.snapshots[period]
	if !ok {
		return nil, false
	}
	return e.result, true
}

func (r *Refresher) Stop() {
	r.wg.Wait()
	r.pool.Stop()
	slog.Info("refresher stopped")
}

func (r *Refresher) count(period, outcome string) {
	if r.metrics != nil {
		r.metrics.RefreshRuns.WithLabelValues(period, outcome).Inc()
	}
}
