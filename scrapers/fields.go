package scrapers

// CSLBTableVersion identifies the markup snapshot the tables below were
// checked against. Bump it together with scrapers/testdata when the
// CSLB page changes.
const CSLBTableVersion = "cslb-checklicense-ii/2024-06"

const (
	CSLBDataSource = "California Contractors State License Board"
	CSLBStateCode  = "CA"
)

// FormTable names every field on the search form we read or post.
type FormTable struct {
	// FormMarker is a selector that only matches on the search form page.
	FormMarker string

	ViewStateField          string
	ViewStateGeneratorField string
	EventValidationField    string

	LicenseNumberField  string
	ContractorNameField string

	SubmitField string
	SubmitValue string
}

// ResultTable holds the element IDs of the labeled fields on the license detail page.
type ResultTable struct {
	ContractorName string
	BusinessName   string
	LicenseNumber  string
	Status         string
	LicenseType    string
	IssueDate      string
	ExpirationDate string
	Address        string
	Phone          string
}

var CSLBFormTable = FormTable{
	FormMarker: "#txtLicnum",

	ViewStateField:          "__VIEWSTATE",
	ViewStateGeneratorField: "__VIEWSTATEGENERATOR",
	EventValidationField:    "__EVENTVALIDATION",

	LicenseNumberField:  "txtLicnum",
	ContractorNameField: "txtContractorName",

	SubmitField: "btnSubmit",
	SubmitValue: "Search",
}

var CSLBResultTable = ResultTable{
	ContractorName: "lblContractorName",
	BusinessName:   "lblBusinessName",
	LicenseNumber:  "lblLicenseNumber",
	Status:         "lblLicenseStatus",
	LicenseType:    "lblLicenseType",
	IssueDate:      "lblIssueDate",
	ExpirationDate: "lblExpirationDate",
	Address:        "lblAddress",
	Phone:          "lblPhone",
}
