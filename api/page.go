package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"contractor-lookup-go/lookup"
	"contractor-lookup-go/scrapers"
)

//go:embed templates/search.html
var templateFS embed.FS

var searchPage = template.Must(template.ParseFS(templateFS, "templates/search.html"))

var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS",
	"KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY",
	"NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV",
	"WI", "WY",
}

type searchPageData struct {
	Query           string
	State           string
	States          []string
	Result          *lookup.Result
	ErrorMessage    string
	ManualLookupURL string
}

// handleSearchPage renders the form and, when a query is present, the result.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	data := searchPageData{
		Query:  strings.TrimSpace(r.URL.Query().Get("query")),
		State:  scrapers.NormalizeState(r.URL.Query().Get("state")),
		States: stateCodes,
	}
	if data.State == "" {
		data.State = scrapers.CSLBStateCode
	}

	if data.Query != "" {
		res := s.search.Search(r.Context(), lookup.Request{
			Query:    data.Query,
			State:    data.State,
			ClientIP: clientIP(r),
		})
		data.Result = &res
		if res.Status == lookup.StatusError {
			data.ErrorMessage = "Search is unavailable right now. Please try again later."
		}
		if res.Status == lookup.StatusNotFound && data.State == scrapers.CSLBStateCode {
			data.ManualLookupURL = s.cfg.CSLBURL
		}
	}

	var buf bytes.Buffer
	if err := searchPage.Execute(&buf, data); err != nil {
		s.log.WithError(err).Error("Failed to render search page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
