package scrapers

import (
	"errors"
	"fmt"
)

// ErrUnexpectedPage means the proxy returned HTML that is not the search form.
var ErrUnexpectedPage = errors.New("scrapers: search form not found on fetched page")

// OutcomeKind tags the result of a live lookup.
type OutcomeKind int

const (
	OutcomeFound OutcomeKind = iota
	OutcomeNotFound
	OutcomeNotConfigured
	OutcomeTransportError
	OutcomeUnexpectedPage
	OutcomeUnsupportedState
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNotConfigured:
		return "not_configured"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeUnexpectedPage:
		return "unexpected_page"
	case OutcomeUnsupportedState:
		return "unsupported_state"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is what a live lookup returns. Record is set only for OutcomeFound;
// Err is set for the failure kinds.
type Outcome struct {
	Kind   OutcomeKind
	Record *LicenseRecord
	Err    error
}

func found(rec LicenseRecord) Outcome { return Outcome{Kind: OutcomeFound, Record: &rec} }

func notFound() Outcome { return Outcome{Kind: OutcomeNotFound} }

func failed(kind OutcomeKind, err error) Outcome { return Outcome{Kind: kind, Err: err} }
