package scrapers

import (
	"context"
	"fmt"
)

// Registry routes state codes to live scrapers. Only California has one.
type Registry struct {
	live map[string]LiveScraper
}

// NewRegistry registers the given live scrapers by state code.
func NewRegistry(scrapers ...LiveScraper) *Registry {
	r := &Registry{live: make(map[string]LiveScraper)}
	for _, s := range scrapers {
		r.live[s.StateCode()] = s
	}
	return r
}

// Live returns the live scraper for a state, if any.
func (r *Registry) Live(stateCode string) (LiveScraper, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.live[NormalizeState(stateCode)]
	return s, ok
}

// Lookup runs the live scraper for q.State, or reports OutcomeUnsupportedState.
func (r *Registry) Lookup(ctx context.Context, q LicenseQuery) Outcome {
	s, ok := r.Live(q.State)
	if !ok {
		return failed(OutcomeUnsupportedState, fmt.Errorf("scrapers: no live lookup for %q", q.State))
	}
	return s.Lookup(ctx, q)
}

// ManualLookupURL returns where a user can check a state's board by hand,
// or "" when we don't know one.
func (r *Registry) ManualLookupURL(stateCode string) string {
	if s, ok := r.Live(stateCode); ok {
		return s.ManualLookupURL()
	}
	return ""
}
