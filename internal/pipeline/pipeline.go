// Package pipeline runs the full regional query: resolve the time window,
// fetch from the upstream feed, filter to the region, derive display
// attributes, then sort and group for presentation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mmquake/quake-watch/internal/classify"
	"github.com/mmquake/quake-watch/internal/eventsort"
	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/observability"
	"github.com/mmquake/quake-watch/internal/region"
	"github.com/mmquake/quake-watch/internal/timewindow"
)

// Fetcher executes a resolved window query against the upstream feed.
type Fetcher interface {
	Fetch(ctx context.Context, w timewindow.WindowSpec) ([]models.SeismicEvent, bool, error)
}

type Options struct {
	Sort    eventsort.Key
	Order   eventsort.Order
	Grouped bool
}

type Pipeline struct {
	fetcher Fetcher
	metrics *observability.Metrics
}

func New(fetcher Fetcher, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{fetcher: fetcher, metrics: metrics}
}

// Query is stateless: every invocation re-resolves the window and
// re-fetches the upstream feed. Stages fail whole; no partial result is
// ever returned.
func (p *Pipeline) Query(ctx context.Context, mode timewindow.Mode, date string, opts Options) (*models.QueryResult, error) {
	spec, err := timewindow.Resolve(mode, date)
	if err != nil {
		return nil, err
	}

	events, truncated, err := p.fetcher.Fetch(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("fetching %s window: %w", mode, err)
	}

	kept := region.Filter(events)
	annotated := classify.Annotate(kept)
	sorted := eventsort.Sort(annotated, opts.Sort, opts.Order)

	if p.metrics != nil {
		p.metrics.EventsReturned.Observe(float64(len(sorted)))
	}

	result := &models.QueryResult{
		Title:       Title(mode),
		Count:       len(sorted),
		Truncated:   truncated,
		GeneratedAt: time.Now().UTC(),
		Events:      sorted,
	}
	if opts.Grouped {
		result.Groups = eventsort.Group(sorted)
	}
	return result, nil
}

// Title returns the presentation title for a period.
func Title(mode timewindow.Mode) string {
	var period string
	switch mode {
	case timewindow.ModeToday:
		period = "Today"
	case timewindow.ModeRollingDay:
		period = "Past Day"
	case timewindow.ModeRollingWeek:
		period = "Past Week"
	case timewindow.ModeRollingMonth:
		period = "Past Month"
	default:
		period = "Custom Date"
	}
	return "Myanmar Earthquakes - " + period
}
