// Package feed builds and executes queries against the USGS earthquake
// feeds: pre-aggregated rolling windows by name, or parametrized
// time-range queries for explicit windows.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmquake/quake-watch/internal/config"
	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/observability"
	"github.com/mmquake/quake-watch/internal/timewindow"
)

var (
	// ErrUpstreamUnavailable marks a network failure or non-success status
	// from the feed. Callers may retry manually; the client never does.
	ErrUpstreamUnavailable = errors.New("upstream feed unavailable")

	// ErrMalformedPayload marks a response missing the expected
	// features/geometry shape. The whole response fails; malformed data may
	// indicate a feed contract change and must not be silently coerced.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// QueryLimit bounds explicit-range payload size. Responses that hit the
// ceiling are accepted as truncated, not failed.
const QueryLimit = 1000

type usgsResponse struct {
	Features *[]usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}
type usgsProperties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"` // epoch ms
	URL   string  `json:"url"`
	Title string  `json:"title"`
}
type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

type Client struct {
	http      *http.Client
	feedBase  string
	queryBase string
	metrics   *observability.Metrics
}

func NewClient(cfg config.UpstreamConfig, metrics *observability.Metrics) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		feedBase:  cfg.FeedBaseURL,
		queryBase: cfg.QueryBaseURL,
		metrics:   metrics,
	}
}

// BuildURL constructs the upstream request URL for a resolved window.
// Named feeds always select the "all magnitudes" variant; explicit ranges
// set minmagnitude=0 to defeat any upstream default magnitude floor.
func (c *Client) BuildURL(w timewindow.WindowSpec) string {
	if w.Kind == timewindow.KindNamedFeed {
		return fmt.Sprintf("%s/all_%s.geojson", c.feedBase, w.Feed)
	}

	params := url.Values{}
	params.Set("format", "geojson")
	params.Set("starttime", w.Start.UTC().Format(time.RFC3339))
	params.Set("endtime", w.End.UTC().Format(time.RFC3339))
	params.Set("minmagnitude", "0")
	params.Set("limit", fmt.Sprintf("%d", QueryLimit))
	return c.queryBase + "?" + params.Encode()
}

// Fetch executes the query and returns the normalized events plus a flag
// for explicit-range responses truncated at the result-count ceiling.
// Every request bypasses intermediate caches so each invocation reflects
// the upstream's current state.
func (c *Client) Fetch(ctx context.Context, w timewindow.WindowSpec) ([]models.SeismicEvent, bool, error) {
	feedLabel := w.Feed
	if w.Kind == timewindow.KindExplicitRange {
		feedLabel = "range"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(w), nil)
	if err != nil {
		return nil, false, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.count(feedLabel, "network_error")
		return nil, false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.count(feedLabel, "http_error")
		return nil, false, fmt.Errorf("%w: unexpected status code: %d - status: %s", ErrUpstreamUnavailable, resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.count(feedLabel, "malformed")
		return nil, false, fmt.Errorf("%w: error decoding resp.Body: %v", ErrMalformedPayload, err)
	}
	if data.Features == nil {
		c.count(feedLabel, "malformed")
		return nil, false, fmt.Errorf("%w: response has no features collection", ErrMalformedPayload)
	}

	features := *data.Features
	events := make([]models.SeismicEvent, 0, len(features))
	for _, f := range features {
		if len(f.Geometry.Coordinates) != 3 {
			c.count(feedLabel, "malformed")
			return nil, false, fmt.Errorf("%w: feature %s has %d coordinate ordinates, want 3", ErrMalformedPayload, f.ID, len(f.Geometry.Coordinates))
		}
		events = append(events, models.SeismicEvent{
			ID:        f.ID,
			Magnitude: f.Properties.Mag,
			Place:     f.Properties.Place,
			Title:     f.Properties.Title,
			DetailURL: f.Properties.URL,
			Time:      f.Properties.Time,
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
			Depth:     f.Geometry.Coordinates[2],
		})
	}

	truncated := w.Kind == timewindow.KindExplicitRange && len(features) >= QueryLimit
	if truncated && c.metrics != nil {
		c.metrics.TruncatedResponses.Inc()
	}

	c.count(feedLabel, "success")
	return events, truncated, nil
}

func (c *Client) count(feed, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(feed, outcome).Inc()
	}
}
