package region

import "github.com/mmquake/quake-watch/internal/models"

// Myanmar bounding box, extended to catch nearby earthquakes that can
// still affect the country.
const (
	MinLat = 8.5
	MaxLat = 29.5
	MinLon = 91.0
	MaxLon = 102.5
)

// Contains reports whether the coordinate pair falls inside the region.
func Contains(lat, lon float64) bool {
	return lat >= MinLat && lat <= MaxLat && lon >= MinLon && lon <= MaxLon
}

// Filter keeps the events inside the bounding box. The input is not
// mutated and relative order is preserved; nothing else (magnitude, depth,
// missing optional fields) excludes an event at this stage.
func Filter(events []models.SeismicEvent) []models.SeismicEvent {
	kept := make([]models.SeismicEvent, 0, len(events))
	for _, e := range events {
		if Contains(e.Latitude, e.Longitude) {
			kept = append(kept, e)
		}
	}
	return kept
}
