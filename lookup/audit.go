package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"contractor-lookup-go/db"
)

// AuditWriter persists search log entries.
type AuditWriter interface {
	SaveSearchLog(ctx context.Context, l db.SearchLog) error
}

// AuditQueue writes search logs on a background worker. Enqueue never blocks;
// a full queue drops the entry with a warning and write errors are only logged.
type AuditQueue struct {
	writer  AuditWriter
	log     *logrus.Logger
	entries chan db.SearchLog
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAuditQueue(writer AuditWriter, size int, log *logrus.Logger) *AuditQueue {
	if size <= 0 {
		size = 256
	}
	q := &AuditQueue{
		writer:  writer,
		log:     log,
		entries: make(chan db.SearchLog, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue hands an entry to the worker. Returns false if it was dropped.
func (q *AuditQueue) Enqueue(entry db.SearchLog) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.entries <- entry:
		return true
	default:
		q.log.WithField("query", entry.SearchQuery).Warn("Audit queue full, dropping search log")
		return false
	}
}

// Close stops accepting entries and waits for the backlog to drain.
func (q *AuditQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.entries)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *AuditQueue) run() {
	defer close(q.done)
	for entry := range q.entries {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.writer.SaveSearchLog(ctx, entry); err != nil {
			q.log.WithError(err).WithFields(logrus.Fields{
				"state":       entry.State,
				"search_type": entry.SearchType,
			}).Warn("Failed to write search log")
		}
		cancel()
	}
}
