package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"contractor-lookup-go/api/websocket"
	"contractor-lookup-go/config"
	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

// WebSocket upgrader
var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled at middleware level
	},
}

// LicenseStore is the slice of the database the API touches directly.
type LicenseStore interface {
	Ping(ctx context.Context) error
	UpsertLicenses(ctx context.Context, records []scrapers.LicenseRecord) (int, error)
}

// Server is the HTTP front end: search page, JSON API and WebSocket feed.
type Server struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   LicenseStore
	search  *lookup.Service
	hub     *websocket.Hub
	handler http.Handler
	srv     *http.Server
}

// NewServer creates a new API server. hub may be nil.
func NewServer(cfg *config.Config, log *logrus.Logger, store LicenseStore, search *lookup.Service, hub *websocket.Hub) *Server {
	s := &Server{cfg: cfg, log: log, store: store, search: search, hub: hub}

	mux := http.NewServeMux()

	// Search page
	mux.HandleFunc("GET /{$}", s.handleSearchPage)
	mux.HandleFunc("GET /search", s.handleSearchPage)

	// Health check (unauthenticated)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	// WebSocket endpoint (token via query param)
	mux.HandleFunc("GET /api/v1/ws", s.handleWebSocket)

	// Full orchestrator
	mux.HandleFunc("POST /api/v1/search", s.handleSearch)

	// Authenticated routes
	auth := s.authMiddleware
	mux.HandleFunc("POST /api/v1/licenses/bulk-import", auth(s.handleBulkImport))

	// The live-search endpoint has its own allow-all CORS policy and
	// method handling, so it sits outside corsMiddleware.
	root := http.NewServeMux()
	root.Handle("/api/live-search", liveSearchCORS(http.HandlerFunc(s.handleLiveSearch)))
	root.Handle("/", s.corsMiddleware(mux))
	s.handler = root

	s.srv = &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Two proxied renders can take most of the render timeout each.
		WriteTimeout: time.Duration(2*cfg.RenderTimeoutSecs+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// handleWebSocket upgrades the HTTP connection to a WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "feed not available", http.StatusServiceUnavailable)
		return
	}

	// Authenticate via query param ?token=...
	token := r.URL.Query().Get("token")
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APIToken)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	client := websocket.NewClient(s.hub, conn)
	go client.WritePump()
	go client.ReadPump()
}

// Start runs the API server. Call in a goroutine.
func (s *Server) Start(ctx context.Context) {
	s.log.Infof("API server starting on :%s", s.cfg.APIPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.WithError(err).Error("API server error")
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	LiveSearch bool   `json:"live_search"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", LiveSearch: s.cfg.LiveSearchEnabled()}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("Health check: database ping failed")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, resp)
		return
	}
	jsonOK(w, resp)
}
