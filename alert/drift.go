package alert

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the minimum gap between two drift alerts.
const DefaultInterval = time.Hour

// Drift describes a live lookup that got a page without the search form.
type Drift struct {
	TargetURL string
	Reason    string
	At        time.Time
}

// Channel delivers a drift alert somewhere a human will see it.
type Channel interface {
	Name() string
	Notify(ctx context.Context, d Drift) error
}

// DriftNotifier fans drift reports out to its channels, at most once per
// interval. Delivery runs in the background so the search isn't held up.
type DriftNotifier struct {
	channels []Channel
	interval time.Duration
	log      *logrus.Logger
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	wg   sync.WaitGroup
}

// NewDriftNotifier skips nil channels. interval <= 0 uses DefaultInterval.
func NewDriftNotifier(interval time.Duration, log *logrus.Logger, channels ...Channel) *DriftNotifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	n := &DriftNotifier{interval: interval, log: log, now: time.Now}
	for _, c := range channels {
		if c != nil {
			n.channels = append(n.channels, c)
		}
	}
	return n
}

// AddChannel registers a channel after construction. nil is ignored.
func (n *DriftNotifier) AddChannel(c Channel) {
	if c == nil {
		return
	}
	n.mu.Lock()
	n.channels = append(n.channels, c)
	n.mu.Unlock()
}

// ReportDrift implements scrapers.DriftReporter.
func (n *DriftNotifier) ReportDrift(ctx context.Context, targetURL, reason string) {
	now := n.now()

	n.mu.Lock()
	if !n.last.IsZero() && now.Sub(n.last) < n.interval {
		n.mu.Unlock()
		n.log.WithField("reason", reason).Debug("Drift alert suppressed")
		return
	}
	n.last = now
	channels := append([]Channel(nil), n.channels...)
	n.mu.Unlock()

	n.log.WithFields(logrus.Fields{"url": targetURL, "reason": reason}).Warn("CSLB page drift detected")

	d := Drift{TargetURL: targetURL, Reason: reason, At: now}
	for _, c := range channels {
		n.wg.Add(1)
		go func(c Channel) {
			defer n.wg.Done()
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := c.Notify(sendCtx, d); err != nil {
				n.log.WithError(err).WithField("channel", c.Name()).Warn("Failed to deliver drift alert")
			}
		}(c)
	}
}

// Wait blocks until in-flight deliveries finish.
func (n *DriftNotifier) Wait() {
	n.wg.Wait()
}
