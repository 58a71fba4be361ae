package api

import (
	"github.com/mmquake/quake-watch/internal/models"
)

type FeatureCollection struct {
	Type     string         `json:"type"`
	Metadata Metadata       `json:"metadata"`
	Features []Feature      `json:"features"`
	Groups   []FeatureGroup `json:"groups,omitempty"`
}
type Metadata struct {
	Title     string `json:"title"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated"`
	Generated int64  `json:"generated"` // epoch ms
}
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}
type FeatureGroup struct {
	Date     string    `json:"date"`
	Features []Feature `json:"features"`
}

func toFeature(e models.SeismicEvent) Feature {
	return Feature{
		Type: "Feature",
		ID:   e.ID,
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{e.Longitude, e.Latitude, e.Depth},
		},
		Properties: map[string]any{
			"mag":        e.Magnitude,
			"place":      e.Place,
			"time":       e.Time,
			"url":        e.DetailURL,
			"title":      e.Title,
			"severity":   e.Severity,
			"color":      e.Color,
			"markerSize": e.MarkerSize,
			"isToday":    e.IsToday,
			"isRecent":   e.IsRecent,
			"localTime":  e.LocalTime,
			"timeAgo":    e.TimeAgo,
		},
	}
}

func toFeatures(events []models.SeismicEvent) []Feature {
	features := make([]Feature, 0, len(events))
	for _, e := range events {
		features = append(features, toFeature(e))
	}
	return features
}

func toGeoJSON(res *models.QueryResult) FeatureCollection {
	fc := FeatureCollection{
		Type: "FeatureCollection",
		Metadata: Metadata{
			Title:     res.Title,
			Count:     res.Count,
			Truncated: res.Truncated,
			Generated: res.GeneratedAt.UnixMilli(),
		},
		Features: toFeatures(res.Events),
	}
	for _, g := range res.Groups {
		fc.Groups = append(fc.Groups, FeatureGroup{
			Date:     g.Date,
			Features: toFeatures(g.Events),
		})
	}
	return fc
}
