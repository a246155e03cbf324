package scrapers

import (
	"strings"
	"time"
)

// StatusExpired is the status written over a record whose expiration date has passed.
const StatusExpired = "expired"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseLicenseDate parses the date formats seen on CSLB pages and in the
// local store. Only the calendar date is kept.
func ParseLicenseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired is true when the expiration date parses and falls strictly
// before now's calendar date.
func IsExpired(expirationDate string, now time.Time) bool {
	exp, ok := ParseLicenseDate(expirationDate)
	if !ok {
		return false
	}
	return exp.Before(dateOnly(now))
}

// NormalizeExpiration overwrites Status with "expired" when the record's
// expiration date has passed. Unparseable dates leave Status alone.
func NormalizeExpiration(rec LicenseRecord, now time.Time) LicenseRecord {
	if IsExpired(rec.ExpirationDate, now) {
		rec.Status = StatusExpired
	}
	return rec
}
