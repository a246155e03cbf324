package websocket

import (
	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

// SearchFeed publishes orchestrator progress to the hub. Query text is not
// broadcast.
type SearchFeed struct {
	hub *Hub
}

func NewSearchFeed(hub *Hub) *SearchFeed {
	return &SearchFeed{hub: hub}
}

func (f *SearchFeed) SearchStarted(searchID string, q scrapers.LicenseQuery) {
	f.hub.Publish(NewEvent(EventSearchStarted, SearchStartedData{
		SearchID: searchID,
		State:    q.State,
		Kind:     string(q.Kind),
	}))
}

func (f *SearchFeed) SearchCompleted(res lookup.Result) {
	f.hub.Publish(NewEvent(EventSearchCompleted, SearchCompletedData{
		SearchID:    res.SearchID,
		State:       res.State,
		Status:      string(res.Status),
		Source:      string(res.Source),
		Results:     len(res.Records),
		LiveOutcome: res.LiveOutcome,
	}))
}
