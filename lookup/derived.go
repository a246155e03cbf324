package lookup

import (
	"time"

	"contractor-lookup-go/scrapers"
)

type ExpirationStatus string

const (
	ExpirationCurrent ExpirationStatus = "current"
	ExpirationExpired ExpirationStatus = "expired"
	ExpirationUnknown ExpirationStatus = "unknown"
)

// Derived holds the display fields computed from a record.
type Derived struct {
	// YearsActive is nil when the issue date doesn't parse.
	YearsActive         *int             `json:"years_active,omitempty"`
	ExpirationStatus    ExpirationStatus `json:"expiration_status"`
	DisciplinaryHistory []string         `json:"disciplinary_history"`
}

// Match is one record as presented to callers.
type Match struct {
	scrapers.LicenseRecord
	Derived Derived `json:"derived"`
}

// Derive computes the display fields for rec as of now.
func Derive(rec scrapers.LicenseRecord, now time.Time) Derived {
	d := Derived{
		ExpirationStatus:    expirationStatus(rec, now),
		DisciplinaryHistory: []string{},
	}
	if issued, ok := scrapers.ParseLicenseDate(rec.IssueDate); ok {
		years := wholeYears(issued, now)
		d.YearsActive = &years
	}
	for _, a := range rec.DisciplinaryActions {
		if a != "" {
			d.DisciplinaryHistory = append(d.DisciplinaryHistory, a)
		}
	}
	return d
}

func expirationStatus(rec scrapers.LicenseRecord, now time.Time) ExpirationStatus {
	if rec.Status == scrapers.StatusExpired {
		return ExpirationExpired
	}
	if _, ok := scrapers.ParseLicenseDate(rec.ExpirationDate); !ok {
		return ExpirationUnknown
	}
	if scrapers.IsExpired(rec.ExpirationDate, now) {
		return ExpirationExpired
	}
	return ExpirationCurrent
}

// wholeYears counts completed anniversaries of from up to now. Never negative.
func wholeYears(from, now time.Time) int {
	now = now.UTC()
	years := now.Year() - from.Year()
	if now.Month() < from.Month() || (now.Month() == from.Month() && now.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func toMatches(records []scrapers.LicenseRecord, now time.Time) []Match {
	out := make([]Match, 0, len(records))
	for _, r := range records {
		out = append(out, Match{LicenseRecord: r, Derived: Derive(r, now)})
	}
	return out
}
