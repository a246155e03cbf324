package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractor-lookup-go/logger"
	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := gorillaws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(hub, conn)
		go c.WritePump()
		go c.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func readEvent(t *testing.T, conn *gorillaws.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &m))
	return m
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, hub, 2)

	hub.Publish(NewEvent(EventSearchStarted, SearchStartedData{SearchID: "s1", State: "CA", Kind: "license_number"}))

	for _, conn := range []*gorillaws.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, EventSearchStarted, ev["type"])
		data := ev["data"].(map[string]interface{})
		assert.Equal(t, "s1", data["search_id"])
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestSearchFeedPublishesLifecycle(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	feed := NewSearchFeed(hub)
	feed.SearchStarted("abc", scrapers.LicenseQuery{RawText: "secret name", Kind: scrapers.KindContractorName, State: "CA"})
	feed.SearchCompleted(lookup.Result{
		SearchID:    "abc",
		Status:      lookup.StatusNotFound,
		Source:      lookup.SourceLocalDatabase,
		State:       "CA",
		Query:       "secret name",
		Records:     []lookup.Match{},
		LiveOutcome: "not_found",
	})

	started := readEvent(t, conn)
	assert.Equal(t, EventSearchStarted, started["type"])
	completed := readEvent(t, conn)
	assert.Equal(t, EventSearchCompleted, completed["type"])
	data := completed["data"].(map[string]interface{})
	assert.Equal(t, "not_found", data["status"])
	assert.Equal(t, "local_database", data["source"])
	assert.Equal(t, float64(0), data["results"])

	for _, ev := range []map[string]interface{}{started, completed} {
		raw, _ := json.Marshal(ev)
		assert.NotContains(t, string(raw), "secret name", "query text stays off the feed")
	}
}
