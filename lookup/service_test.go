package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractor-lookup-go/db"
	"contractor-lookup-go/logger"
	"contractor-lookup-go/scrapers"
	"contractor-lookup-go/scrapers/render"
)

type stubLive struct {
	outcome scrapers.Outcome
	calls   []scrapers.LicenseQuery
}

func (s *stubLive) Lookup(ctx context.Context, q scrapers.LicenseQuery) scrapers.Outcome {
	s.calls = append(s.calls, q)
	if q.State != "CA" {
		return scrapers.Outcome{Kind: scrapers.OutcomeUnsupportedState}
	}
	return s.outcome
}

type stubStore struct {
	records []scrapers.LicenseRecord
	err     error

	calls     int
	lastQuery string
	lastState string
	lastLimit int
}

func (s *stubStore) SearchLicenses(ctx context.Context, query, state string, limit int) ([]scrapers.LicenseRecord, error) {
	s.calls++
	s.lastQuery, s.lastState, s.lastLimit = query, state, limit
	return s.records, s.err
}

type auditRecorder struct {
	mu      sync.Mutex
	entries []db.SearchLog
}

func (a *auditRecorder) Enqueue(e db.SearchLog) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return true
}

type observerRecorder struct {
	started   []string
	completed []Result
}

func (o *observerRecorder) SearchStarted(id string, q scrapers.LicenseQuery) {
	o.started = append(o.started, id)
}

func (o *observerRecorder) SearchCompleted(res Result) {
	o.completed = append(o.completed, res)
}

var fixedNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newTestService(live LiveLookup, store RecordStore, audit AuditSink) *Service {
	s := NewService(live, store, audit, 0, logger.Discard())
	s.now = func() time.Time { return fixedNow }
	return s
}

func liveRecord() *scrapers.LicenseRecord {
	return &scrapers.LicenseRecord{
		ContractorName: "JOHN Q SAMPLE",
		LicenseNumber:  "123456",
		Status:         "active",
		IssueDate:      "03/15/2004",
		ExpirationDate: "03/31/2099",
		State:          "CA",
	}
}

func TestSearchLiveFound(t *testing.T) {
	live := &stubLive{outcome: scrapers.Outcome{Kind: scrapers.OutcomeFound, Record: liveRecord()}}
	store := &stubStore{}
	audit := &auditRecorder{}
	obs := &observerRecorder{}
	s := newTestService(live, store, audit)
	s.SetObserver(obs)

	res := s.Search(context.Background(), Request{Query: " 123456 ", State: "ca", ClientIP: "10.0.0.1"})

	require.Equal(t, StatusFound, res.Status)
	assert.Equal(t, SourceLiveScrape, res.Source)
	assert.NotEmpty(t, res.SearchID)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "JOHN Q SAMPLE", res.Records[0].ContractorName)
	require.NotNil(t, res.Records[0].Derived.YearsActive)
	assert.Equal(t, 22, *res.Records[0].Derived.YearsActive)
	assert.Equal(t, ExpirationCurrent, res.Records[0].Derived.ExpirationStatus)
	assert.Equal(t, 0, store.calls, "no local query after a live hit")

	require.Len(t, live.calls, 1)
	assert.Equal(t, scrapers.KindLicenseNumber, live.calls[0].Kind)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, db.SearchLog{
		SearchQuery:  "123456",
		State:        "CA",
		ResultsFound: 1,
		UserIP:       "10.0.0.1",
		SearchType:   "live_scrape",
	}, audit.entries[0])

	assert.Equal(t, []string{res.SearchID}, obs.started)
	require.Len(t, obs.completed, 1)
	assert.Equal(t, res.SearchID, obs.completed[0].SearchID)
}

func TestSearchFallsBackOnEveryLiveFailure(t *testing.T) {
	for _, outcome := range []scrapers.Outcome{
		{Kind: scrapers.OutcomeNotFound},
		{Kind: scrapers.OutcomeNotConfigured, Err: render.ErrNotConfigured},
		{Kind: scrapers.OutcomeTransportError, Err: &render.TransportError{Op: "fetch", StatusCode: 502}},
		{Kind: scrapers.OutcomeUnexpectedPage, Err: scrapers.ErrUnexpectedPage},
	} {
		t.Run(outcome.Kind.String(), func(t *testing.T) {
			store := &stubStore{records: []scrapers.LicenseRecord{
				{ContractorName: "ACME BUILDERS", LicenseNumber: "778899", Status: "active", ExpirationDate: "2020-01-01", State: "CA"},
			}}
			audit := &auditRecorder{}
			s := newTestService(&stubLive{outcome: outcome}, store, audit)

			res := s.Search(context.Background(), Request{Query: "acme", State: "CA"})

			require.Equal(t, StatusFound, res.Status, "falls back instead of surfacing an error")
			assert.NoError(t, res.Err)
			assert.Equal(t, SourceLocalDatabase, res.Source)
			assert.Equal(t, outcome.Kind.String(), res.LiveOutcome)
			require.Len(t, res.Records, 1)
			assert.Equal(t, scrapers.StatusExpired, res.Records[0].Status, "local rows are expiration-normalized")
			assert.Equal(t, ExpirationExpired, res.Records[0].Derived.ExpirationStatus)

			assert.Equal(t, 1, store.calls)
			assert.Equal(t, "acme", store.lastQuery)
			assert.Equal(t, "CA", store.lastState)
			assert.Equal(t, DefaultLimit, store.lastLimit)

			require.Len(t, audit.entries, 1)
			assert.Equal(t, "local_database", audit.entries[0].SearchType)
			assert.Equal(t, "unknown", audit.entries[0].UserIP)
		})
	}
}

func TestSearchLocalZeroMatchesIsNotFoundAndAudited(t *testing.T) {
	store := &stubStore{}
	audit := &auditRecorder{}
	live := &stubLive{}
	s := newTestService(live, store, audit)

	res := s.Search(context.Background(), Request{Query: "Nobody", State: "nv"})

	assert.Equal(t, StatusNotFound, res.Status)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
	assert.NotNil(t, res.Records)
	assert.Equal(t, "unsupported_state", res.LiveOutcome)
	assert.Equal(t, "NV", store.lastState)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, 0, audit.entries[0].ResultsFound)
	assert.Equal(t, "NV", audit.entries[0].State)
}

func TestSearchLocalStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	audit := &auditRecorder{}
	s := newTestService(nil, store, audit)

	res := s.Search(context.Background(), Request{Query: "acme", State: "TX"})

	assert.Equal(t, StatusError, res.Status)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "lookup: local search")
	assert.Len(t, audit.entries, 1, "errors are audited too")
}

func TestSearchEmptyQuery(t *testing.T) {
	store := &stubStore{}
	audit := &auditRecorder{}
	s := newTestService(&stubLive{}, store, audit)

	res := s.Search(context.Background(), Request{Query: "   ", State: "CA"})

	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, scrapers.ErrEmptyQuery)
	assert.Equal(t, 0, store.calls)
	assert.Empty(t, audit.entries)
}

func TestSearchTypeOverridesInference(t *testing.T) {
	live := &stubLive{outcome: scrapers.Outcome{Kind: scrapers.OutcomeNotFound}}
	s := newTestService(live, &stubStore{}, nil)

	s.Search(context.Background(), Request{Query: "123", State: "CA", SearchType: "name"})
	require.Len(t, live.calls, 1)
	assert.Equal(t, scrapers.KindContractorName, live.calls[0].Kind)
}

func TestLiveSearchDoesNotTouchStore(t *testing.T) {
	store := &stubStore{}
	audit := &auditRecorder{}
	live := &stubLive{outcome: scrapers.Outcome{Kind: scrapers.OutcomeNotFound}}
	s := newTestService(live, store, audit)

	q, out, err := s.LiveSearch(context.Background(), Request{Query: "ACME", State: "CA", SearchType: "name"})
	require.NoError(t, err)
	assert.Equal(t, scrapers.OutcomeNotFound, out.Kind)
	assert.Equal(t, "ACME", q.RawText)
	assert.Equal(t, 0, store.calls)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "live_scrape", audit.entries[0].SearchType)
	assert.Equal(t, 0, audit.entries[0].ResultsFound)

	_, _, err = s.LiveSearch(context.Background(), Request{Query: ""})
	assert.ErrorIs(t, err, scrapers.ErrEmptyQuery)
}
