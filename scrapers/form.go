package scrapers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("scrapers: parse HTML error: %w", err)
	}
	return doc, nil
}

// inputValue returns the value of the input with the given id (or name), or "".
func inputValue(doc *goquery.Document, field string) string {
	sel := doc.Find("input#" + field)
	if sel.Length() == 0 {
		sel = doc.Find("input[name='" + field + "']")
	}
	v, _ := sel.First().Attr("value")
	return v
}

// ExtractHiddenState reads the three WebForms state fields from the search
// form page. Missing fields come back as empty strings; the site omits
// some of them on certain renders.
func ExtractHiddenState(html string) (HiddenFormState, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return HiddenFormState{}, err
	}
	return hiddenStateFromDoc(doc, CSLBFormTable), nil
}

func hiddenStateFromDoc(doc *goquery.Document, t FormTable) HiddenFormState {
	return HiddenFormState{
		ViewState:          inputValue(doc, t.ViewStateField),
		ViewStateGenerator: inputValue(doc, t.ViewStateGeneratorField),
		EventValidation:    inputValue(doc, t.EventValidationField),
	}
}

// IsSearchForm reports whether html is the CSLB search form.
func IsSearchForm(html string) bool {
	doc, err := parseHTML(html)
	if err != nil {
		return false
	}
	return doc.Find(CSLBFormTable.FormMarker).Length() > 0
}

// BuildSearchForm builds the POST fields for one search. Exactly one of the
// license-number and contractor-name fields is set. Hidden state fields are
// included only when non-empty; the submit field always is.
func BuildSearchForm(t FormTable, query string, kind SearchKind, state HiddenFormState) url.Values {
	form := url.Values{}

	if state.ViewState != "" {
		form.Set(t.ViewStateField, state.ViewState)
	}
	if state.ViewStateGenerator != "" {
		form.Set(t.ViewStateGeneratorField, state.ViewStateGenerator)
	}
	if state.EventValidation != "" {
		form.Set(t.EventValidationField, state.EventValidation)
	}

	if kind == KindLicenseNumber {
		form.Set(t.LicenseNumberField, query)
	} else {
		form.Set(t.ContractorNameField, query)
	}

	form.Set(t.SubmitField, t.SubmitValue)
	return form
}

// EncodeSearchForm is BuildSearchForm against the CSLB table, URL-encoded.
func EncodeSearchForm(query string, kind SearchKind, state HiddenFormState) string {
	return BuildSearchForm(CSLBFormTable, query, kind, state).Encode()
}
