package scrapers

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyQuery is returned when the search text is blank.
var ErrEmptyQuery = errors.New("scrapers: query is empty")

// SearchKind says which form field a query targets.
type SearchKind string

const (
	KindLicenseNumber  SearchKind = "license_number"
	KindContractorName SearchKind = "contractor_name"
)

// InferKind returns KindLicenseNumber when the trimmed text is all ASCII
// digits, KindContractorName otherwise.
func InferKind(text string) SearchKind {
	text = strings.TrimSpace(text)
	if text == "" {
		return KindContractorName
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return KindContractorName
		}
	}
	return KindLicenseNumber
}

// KindFromSearchType maps the live-search API's "license"/"name" values.
// Anything else falls back to inference from the text.
func KindFromSearchType(searchType, text string) SearchKind {
	switch strings.ToLower(strings.TrimSpace(searchType)) {
	case "license":
		return KindLicenseNumber
	case "name":
		return KindContractorName
	default:
		return InferKind(text)
	}
}

// LicenseQuery is one user search.
type LicenseQuery struct {
	RawText string
	Kind    SearchKind
	State   string
}

// NewQuery trims the text, infers the kind and normalizes the state code.
func NewQuery(text, state string) (LicenseQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return LicenseQuery{}, ErrEmptyQuery
	}
	return LicenseQuery{
		RawText: text,
		Kind:    InferKind(text),
		State:   NormalizeState(state),
	}, nil
}

// NormalizeState upper-cases and trims a two-letter state code.
func NormalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

// HiddenFormState holds the WebForms tokens from one form fetch. They are
// echoed back unmodified on the very next submit and never reused.
type HiddenFormState struct {
	ViewState          string
	ViewStateGenerator string
	EventValidation    string
}

// LicenseRecord is a normalized contractor license.
type LicenseRecord struct {
	ContractorName string `json:"contractor_name"`
	BusinessName   string `json:"business_name"`
	LicenseNumber  string `json:"license_number"`
	Status         string `json:"status"`
	LicenseType    string `json:"license_type"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`

	DataSource  string    `json:"data_source,omitempty"`
	LastScraped time.Time `json:"last_scraped,omitempty"`
	State       string    `json:"state"`
	LicenseURL  string    `json:"license_url,omitempty"`

	DisciplinaryActions []string `json:"disciplinary_actions,omitempty"`
}

// Found is true iff a contractor name was extracted.
func (r LicenseRecord) Found() bool {
	return strings.TrimSpace(r.ContractorName) != ""
}

// LiveScraper runs a live lookup against one state's licensing site.
type LiveScraper interface {
	StateCode() string
	Lookup(ctx context.Context, q LicenseQuery) Outcome
	ManualLookupURL() string
}
