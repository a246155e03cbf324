package scrapers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExpiration(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		date   string
		status string
		want   string
	}{
		{"iso past", "2020-01-31", "active", "expired"},
		{"us past", "03/31/2024", "active", "expired"},
		{"us short past", "3/1/2024", "inactive", "expired"},
		{"long past", "January 5, 2019", "active", "expired"},
		{"rfc3339 past", "2026-10-18T23:59:59Z", "active", "expired"},
		{"yesterday", "2026-10-18", "active", "expired"},
		{"today is not expired", "2026-10-19", "active", "active"},
		{"future", "03/31/2099", "active", "active"},
		{"unparseable", "N/A", "active", "active"},
		{"empty", "", "suspended", "suspended"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeExpiration(LicenseRecord{ExpirationDate: tc.date, Status: tc.status}, now)
			assert.Equal(t, tc.want, got.Status)
		})
	}
}

func TestParseLicenseDate(t *testing.T) {
	d, ok := ParseLicenseDate(" 03/15/2004 ")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2004, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseLicenseDate("15/03/2004")
	assert.False(t, ok)
}
