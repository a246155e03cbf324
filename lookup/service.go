package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contractor-lookup-go/db"
	"contractor-lookup-go/scrapers"
)

// DefaultLimit caps local-store results.
const DefaultLimit = 10

type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Source names the path that produced a result. It doubles as search_type
// in the audit log.
type Source string

const (
	SourceLiveScrape    Source = "live_scrape"
	SourceLocalDatabase Source = "local_database"
)

// LiveLookup runs the state-gated live pipeline. *scrapers.Registry implements it.
type LiveLookup interface {
	Lookup(ctx context.Context, q scrapers.LicenseQuery) scrapers.Outcome
}

// RecordStore is the local database of previously collected licenses.
type RecordStore interface {
	SearchLicenses(ctx context.Context, query, state string, limit int) ([]scrapers.LicenseRecord, error)
}

// AuditSink accepts search log entries without blocking. *AuditQueue implements it.
type AuditSink interface {
	Enqueue(entry db.SearchLog) bool
}

// Observer is notified around each search. Used for the live feed.
type Observer interface {
	SearchStarted(searchID string, q scrapers.LicenseQuery)
	SearchCompleted(res Result)
}

type Request struct {
	Query string
	State string
	// SearchType is "license", "name" or empty to infer from Query.
	SearchType string
	ClientIP   string
}

type Result struct {
	SearchID    string              `json:"search_id"`
	Status      Status              `json:"status"`
	Source      Source              `json:"source,omitempty"`
	Query       string              `json:"query"`
	State       string              `json:"state"`
	Kind        scrapers.SearchKind `json:"kind"`
	Records     []Match             `json:"records"`
	LiveOutcome string              `json:"live_outcome,omitempty"`
	Err         error               `json:"-"`
}

// fallbackRule says what to do after a live outcome that isn't Found.
type fallbackRule struct {
	level  logrus.Level
	reason string
}

// Every non-Found outcome falls back to the local store; the rule only
// decides how loudly we log it.
var fallbackRules = map[scrapers.OutcomeKind]fallbackRule{
	scrapers.OutcomeNotFound:         {logrus.InfoLevel, "no live match"},
	scrapers.OutcomeNotConfigured:    {logrus.InfoLevel, "live search not configured"},
	scrapers.OutcomeTransportError:   {logrus.WarnLevel, "live search failed"},
	scrapers.OutcomeUnexpectedPage:   {logrus.WarnLevel, "live search got an unexpected page"},
	scrapers.OutcomeUnsupportedState: {logrus.DebugLevel, "no live search for state"},
}

type Service struct {
	live     LiveLookup
	store    RecordStore
	audit    AuditSink
	observer Observer
	limit    int
	log      *logrus.Logger
	now      func() time.Time
}

// NewService wires the orchestrator. live and audit may be nil.
func NewService(live LiveLookup, store RecordStore, audit AuditSink, limit int, log *logrus.Logger) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		live:  live,
		store: store,
		audit: audit,
		limit: limit,
		log:   log,
		now:   time.Now,
	}
}

// SetObserver registers the search feed. Call before serving.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// Search runs live lookup (California only), falls back to the local store,
// then queues an audit entry. Zero matches is StatusNotFound, not an error.
func (s *Service) Search(ctx context.Context, req Request) Result {
	q, err := s.query(req)
	if err != nil {
		return Result{Status: StatusError, Query: req.Query, State: req.State, Records: []Match{}, Err: err}
	}

	id := uuid.NewString()
	entry := s.log.WithFields(logrus.Fields{
		"search_id": id,
		"state":     q.State,
		"kind":      q.Kind,
	})
	if s.observer != nil {
		s.observer.SearchStarted(id, q)
	}

	res := Result{SearchID: id, Query: q.RawText, State: q.State, Kind: q.Kind, Records: []Match{}}

	outcome := scrapers.Outcome{Kind: scrapers.OutcomeUnsupportedState}
	if s.live != nil {
		outcome = s.live.Lookup(ctx, q)
	}
	res.LiveOutcome = outcome.Kind.String()

	if outcome.Kind == scrapers.OutcomeFound && outcome.Record != nil {
		res.Status = StatusFound
		res.Source = SourceLiveScrape
		res.Records = toMatches([]scrapers.LicenseRecord{*outcome.Record}, s.now())
	} else {
		rule, ok := fallbackRules[outcome.Kind]
		if !ok {
			rule = fallbackRule{logrus.WarnLevel, "unrecognized live outcome"}
		}
		le := entry.WithField("outcome", outcome.Kind.String())
		if outcome.Err != nil {
			le = le.WithError(outcome.Err)
		}
		le.Log(rule.level, "Falling back to local database: "+rule.reason)

		s.searchLocal(ctx, q, &res)
	}

	entry.WithFields(logrus.Fields{
		"status":  res.Status,
		"source":  res.Source,
		"results": len(res.Records),
	}).Info("Search complete")

	s.enqueueAudit(q, len(res.Records), req.ClientIP, res.Source)
	if s.observer != nil {
		s.observer.SearchCompleted(res)
	}
	return res
}

// LiveSearch runs only the live pipeline, for the live-search endpoint.
// It still writes an audit entry.
func (s *Service) LiveSearch(ctx context.Context, req Request) (scrapers.LicenseQuery, scrapers.Outcome, error) {
	q, err := s.query(req)
	if err != nil {
		return scrapers.LicenseQuery{}, scrapers.Outcome{}, err
	}
	outcome := scrapers.Outcome{Kind: scrapers.OutcomeUnsupportedState}
	if s.live != nil {
		outcome = s.live.Lookup(ctx, q)
	}
	n := 0
	if outcome.Kind == scrapers.OutcomeFound {
		n = 1
	}
	s.enqueueAudit(q, n, req.ClientIP, SourceLiveScrape)
	return q, outcome, nil
}

func (s *Service) query(req Request) (scrapers.LicenseQuery, error) {
	q, err := scrapers.NewQuery(req.Query, req.State)
	if err != nil {
		return q, err
	}
	if req.SearchType != "" {
		q.Kind = scrapers.KindFromSearchType(req.SearchType, q.RawText)
	}
	return q, nil
}

func (s *Service) searchLocal(ctx context.Context, q scrapers.LicenseQuery, res *Result) {
	res.Source = SourceLocalDatabase
	records, err := s.store.SearchLicenses(ctx, q.RawText, q.State, s.limit)
	if err != nil {
		res.Status = StatusError
		res.Err = fmt.Errorf("lookup: local search: %w", err)
		s.log.WithError(err).WithField("search_id", res.SearchID).Error("Local license search failed")
		return
	}

	now := s.now()
	for i := range records {
		records[i] = scrapers.NormalizeExpiration(records[i], now)
	}
	res.Records = toMatches(records, now)
	if len(res.Records) == 0 {
		res.Status = StatusNotFound
	} else {
		res.Status = StatusFound
	}
}

func (s *Service) enqueueAudit(q scrapers.LicenseQuery, results int, clientIP string, source Source) {
	if s.audit == nil {
		return
	}
	if clientIP == "" {
		clientIP = "unknown"
	}
	s.audit.Enqueue(db.SearchLog{
		SearchQuery:  q.RawText,
		State:        q.State,
		ResultsFound: results,
		UserIP:       clientIP,
		SearchType:   string(source),
	})
}
