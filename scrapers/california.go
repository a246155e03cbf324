package scrapers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"contractor-lookup-go/scrapers/render"
)

// Renderer is the remote-render proxy as seen by the scraper.
type Renderer interface {
	FetchRenderedPage(ctx context.Context, targetURL string, opts render.Options) (string, error)
	SubmitForm(ctx context.Context, targetURL, encodedBody string, opts render.Options) (string, error)
}

// DriftReporter is told when the fetched page no longer looks like the search form.
type DriftReporter interface {
	ReportDrift(ctx context.Context, targetURL, reason string)
}

// CSLBScraper drives the CSLB Check License II form through the render proxy:
// fetch the form, echo its hidden state back with the query, parse the result.
type CSLBScraper struct {
	renderer Renderer
	formURL  string
	opts     render.Options
	drift    DriftReporter
	log      *logrus.Logger
	now      func() time.Time
}

// NewCSLBScraper creates the California scraper. drift may be nil.
func NewCSLBScraper(renderer Renderer, formURL string, opts render.Options, drift DriftReporter, log *logrus.Logger) *CSLBScraper {
	return &CSLBScraper{
		renderer: renderer,
		formURL:  formURL,
		opts:     opts,
		drift:    drift,
		log:      log,
		now:      time.Now,
	}
}

func (s *CSLBScraper) StateCode() string       { return CSLBStateCode }
func (s *CSLBScraper) ManualLookupURL() string { return s.formURL }

// Lookup runs one fetch-then-submit cycle. It spends at most two proxy
// quota units and never retries.
func (s *CSLBScraper) Lookup(ctx context.Context, q LicenseQuery) Outcome {
	entry := s.log.WithFields(logrus.Fields{
		"state": CSLBStateCode,
		"kind":  q.Kind,
	})
	entry.Info("CSLB live lookup")

	// Step 1: GET the form through the proxy
	formHTML, err := s.renderer.FetchRenderedPage(ctx, s.formURL, s.opts)
	if err != nil {
		return s.classify(entry, "fetch form", err)
	}

	doc, err := parseHTML(formHTML)
	if err != nil {
		return failed(OutcomeTransportError, fmt.Errorf("cslb: %w", err))
	}
	if doc.Find(CSLBFormTable.FormMarker).Length() == 0 {
		entry.Warn("CSLB form marker missing from fetched page")
		if s.drift != nil {
			s.drift.ReportDrift(ctx, s.formURL, "search form marker "+CSLBFormTable.FormMarker+" not found")
		}
		return failed(OutcomeUnexpectedPage, ErrUnexpectedPage)
	}

	// Step 2: echo the fresh hidden state with the query
	hidden := hiddenStateFromDoc(doc, CSLBFormTable)
	body := BuildSearchForm(CSLBFormTable, q.RawText, q.Kind, hidden).Encode()

	// Step 3: POST through the proxy
	resultHTML, err := s.renderer.SubmitForm(ctx, s.formURL, body, s.opts)
	if err != nil {
		return s.classify(entry, "submit search", err)
	}

	// Step 4: parse and normalize
	now := s.now()
	rec, ok, err := ExtractRecord(resultHTML, s.formURL, now)
	if err != nil {
		return failed(OutcomeTransportError, fmt.Errorf("cslb: %w", err))
	}
	if !ok {
		entry.Info("CSLB: no license found")
		return notFound()
	}

	rec = NormalizeExpiration(rec, now)
	entry.WithField("license_number", rec.LicenseNumber).Info("CSLB: license found")
	return found(rec)
}

func (s *CSLBScraper) classify(entry *logrus.Entry, step string, err error) Outcome {
	if errors.Is(err, render.ErrNotConfigured) {
		entry.Warn("CSLB live lookup skipped: proxy not configured")
		return failed(OutcomeNotConfigured, err)
	}
	entry.WithError(err).Errorf("CSLB %s failed", step)
	return failed(OutcomeTransportError, fmt.Errorf("cslb: %s: %w", step, err))
}
