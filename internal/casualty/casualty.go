// Package casualty serves the casualty figures panel. The numbers come
// from DVB reporting; direct scraping of the source site is blocked, so
// the default provider is a static snapshot kept current by hand.
package casualty

import "context"

type Figures struct {
	Deaths      int    `json:"deaths"`
	Injured     int    `json:"injured"`
	Missing     int    `json:"missing"`
	LastUpdated string `json:"lastUpdated"`
	Source      string `json:"source"`
}

// Provider returns the current casualty figures. Implementations must be
// safe for concurrent use; callers re-fetch on every request and never
// merge with prior values.
type Provider interface {
	Figures(ctx context.Context) (Figures, error)
}

// Static is a fixed-snapshot provider.
type Static struct {
	figures Figures
}

// NewStatic returns the current DVB snapshot.
func NewStatic() *Static {
	return &Static{figures: Figures{
		Deaths:      3848,
		Injured:     4725,
		Missing:     708,
		LastUpdated: "2.4.2025",
		Source:      "DVB (Democratic Voice of Burma)",
	}}
}

func (s *Static) Figures(ctx context.Context) (Figures, error) {
	return s.figures, nil
}
