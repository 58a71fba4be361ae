package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmquake/quake-watch/internal/casualty"
	"github.com/mmquake/quake-watch/internal/eventsort"
	"github.com/mmquake/quake-watch/internal/feed"
	"github.com/mmquake/quake-watch/internal/models"
	"github.com/mmquake/quake-watch/internal/pipeline"
	"github.com/mmquake/quake-watch/internal/stream"
	"github.com/mmquake/quake-watch/internal/timewindow"
)

// Querier runs one regional event query.
type Querier interface {
	Query(ctx context.Context, mode timewindow.Mode, date string, opts pipeline.Options) (*models.QueryResult, error)
}

// SnapshotSource serves the last warmed result for a rolling period.
type SnapshotSource interface {
	Snapshot(period string) (*models.QueryResult, bool)
}

type Handler struct {
	querier    Querier
	casualties casualty.Provider
	snapshots  SnapshotSource // nil when background refresh is disabled
	hub        *stream.Hub    // nil when background refresh is disabled
}

func NewHandler(querier Querier, casualties casualty.Provider, snapshots SnapshotSource, hub *stream.Hub) *Handler {
	return &Handler{
		querier:    querier,
		casualties: casualties,
		snapshots:  snapshots,
		hub:        hub,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/events", h.getEvents)
	r.GET("/api/events/latest", h.getLatestEvents)
	r.GET("/api/events/stream", h.streamEvents)
	r.GET("/api/casualties", h.getCasualties)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) getEvents(c *gin.Context) {
	mode := timewindow.ParseMode(c.DefaultQuery("period", "day"))
	date := c.Query("date")
	opts := pipeline.Options{
		Sort:    eventsort.ParseKey(c.Query("sort")),
		Order:   eventsort.ParseOrder(c.Query("order")),
		Grouped: c.Query("group") == "true",
	}

	res, err := h.querier.Query(c.Request.Context(), mode, date, opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, timewindow.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, feed.ErrUpstreamUnavailable), errors.Is(err, feed.ErrMalformedPayload):
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(res))
}

func (h *Handler) getLatestEvents(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "background refresh disabled"})
		return
	}

	period := c.DefaultQuery("period", "day")
	res, ok := h.snapshots.Snapshot(period)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for period " + period})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(res))
}

// streamEvents pushes each freshly warmed snapshot to the client as a
// server-sent event, optionally filtered to one period.
func (h *Handler) streamEvents(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "background refresh disabled"})
		return
	}

	period := c.Query("period")

	id, ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case s, ok := <-ch:
			if !ok {
				return false
			}
			if period != "" && s.Period != period {
				return true
			}
			c.SSEvent("snapshot", gin.H{
				"period": s.Period,
				"data":   toGeoJSON(s.Result),
			})
			return true
		}
	})
}

func (h *Handler) getCasualties(c *gin.Context) {
	figures, err := h.casualties.Figures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to fetch casualty data",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, figures)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
