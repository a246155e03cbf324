package scrapers

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func labelText(doc *goquery.Document, id string) string {
	return strings.TrimSpace(doc.Find("#" + id).First().Text())
}

// ExtractRecord reads the license detail page. found is false when the
// contractor name label is missing or empty; no partial record is returned
// in that case.
func ExtractRecord(html, licenseURL string, now time.Time) (LicenseRecord, bool, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return LicenseRecord{}, false, err
	}

	t := CSLBResultTable
	name := labelText(doc, t.ContractorName)
	if name == "" {
		return LicenseRecord{}, false, nil
	}

	return LicenseRecord{
		ContractorName: name,
		BusinessName:   labelText(doc, t.BusinessName),
		LicenseNumber:  labelText(doc, t.LicenseNumber),
		Status:         strings.ToLower(labelText(doc, t.Status)),
		LicenseType:    labelText(doc, t.LicenseType),
		IssueDate:      labelText(doc, t.IssueDate),
		ExpirationDate: labelText(doc, t.ExpirationDate),
		Address:        labelText(doc, t.Address),
		Phone:          labelText(doc, t.Phone),

		DataSource:  CSLBDataSource,
		LastScraped: now.UTC(),
		State:       CSLBStateCode,
		LicenseURL:  licenseURL,
	}, true, nil
}
