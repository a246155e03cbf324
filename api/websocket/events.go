package websocket

import (
	"encoding/json"
	"time"
)

// Event types broadcast to connected clients.
const (
	EventSearchStarted    = "search_started"
	EventSearchCompleted  = "search_completed"
	EventLicensesImported = "licenses_imported"
)

// Event is the envelope sent to all WebSocket clients.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// JSON serialises the event.
func (e Event) JSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// --- Specific event payloads ---

type SearchStartedData struct {
	SearchID string `json:"search_id"`
	State    string `json:"state"`
	Kind     string `json:"kind"`
}

type SearchCompletedData struct {
	SearchID    string `json:"search_id"`
	State       string `json:"state"`
	Status      string `json:"status"` // "found", "not_found", "error"
	Source      string `json:"source"` // "live_scrape" or "local_database"
	Results     int    `json:"results"`
	LiveOutcome string `json:"live_outcome"`
}

type LicensesImportedData struct {
	Received int `json:"received"`
	Imported int `json:"imported"`
}
