package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

// --- Request bodies ---

type liveSearchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"searchType"` // "license" or "name"
	State      string `json:"state,omitempty"`
}

type liveSearchResponse struct {
	Success bool                    `json:"success"`
	Data    *scrapers.LicenseRecord `json:"data,omitempty"`
	Message string                  `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Source  string                  `json:"source,omitempty"`
	Query   string                  `json:"query,omitempty"`
}

type searchRequest struct {
	Query      string `json:"query"`
	State      string `json:"state"`
	SearchType string `json:"searchType,omitempty"`
}

// --- Handlers ---

// handleLiveSearch runs only the CSLB live lookup. No-match is a 200 with
// success:false; failures never carry upstream detail.
func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonStatus(w, http.StatusMethodNotAllowed, liveSearchResponse{Error: "Method not allowed"})
		return
	}

	var req liveSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonStatus(w, http.StatusBadRequest, liveSearchResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonStatus(w, http.StatusBadRequest, liveSearchResponse{Error: "Query is required"})
		return
	}
	state := req.State
	if strings.TrimSpace(state) == "" {
		state = scrapers.CSLBStateCode
	}

	q, outcome, err := s.search.LiveSearch(r.Context(), lookup.Request{
		Query:      req.Query,
		State:      state,
		SearchType: req.SearchType,
		ClientIP:   clientIP(r),
	})
	if err != nil {
		jsonStatus(w, http.StatusBadRequest, liveSearchResponse{Error: "Query is required"})
		return
	}

	entry := s.log.WithFields(logrus.Fields{"state": q.State, "kind": q.Kind, "outcome": outcome.Kind.String()})

	switch outcome.Kind {
	case scrapers.OutcomeFound:
		jsonOK(w, liveSearchResponse{Success: true, Data: outcome.Record, Source: string(lookup.SourceLiveScrape)})
	case scrapers.OutcomeNotFound:
		jsonOK(w, liveSearchResponse{Message: "No license found", Query: q.RawText})
	case scrapers.OutcomeNotConfigured:
		entry.Warn("Live search requested but proxy is not configured")
		jsonStatus(w, http.StatusServiceUnavailable, liveSearchResponse{
			Error:   "not_configured",
			Message: "Live search is not configured",
		})
	case scrapers.OutcomeUnsupportedState:
		jsonStatus(w, http.StatusBadRequest, liveSearchResponse{
			Error:   "unsupported_state",
			Message: "Live search is only available for CA",
		})
	case scrapers.OutcomeUnexpectedPage:
		entry.WithError(outcome.Err).Error("Live search failed")
		jsonStatus(w, http.StatusInternalServerError, liveSearchResponse{
			Error:   "Search failed",
			Message: "Unable to access CA database",
		})
	default:
		entry.WithError(outcome.Err).Error("Live search failed")
		jsonStatus(w, http.StatusInternalServerError, liveSearchResponse{
			Error:   "Search failed",
			Message: "Unable to verify license at this time",
		})
	}
}

// handleSearch runs the full live-then-local orchestrator.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res := s.search.Search(r.Context(), lookup.Request{
		Query:      req.Query,
		State:      req.State,
		SearchType: req.SearchType,
		ClientIP:   clientIP(r),
	})

	if res.Status == lookup.StatusError {
		if errors.Is(res.Err, scrapers.ErrEmptyQuery) {
			jsonError(w, "query is required", http.StatusBadRequest)
			return
		}
		jsonError(w, "search failed, please try again later", http.StatusInternalServerError)
		return
	}
	jsonOK(w, res)
}
