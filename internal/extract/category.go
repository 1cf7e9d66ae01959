// Package extract turns funding-program detail pages into structured
// records. Field labels on the source are German; they map onto a closed
// set of categories, and an unrecognized label aborts the run rather
// than being dropped, since a silent drop would corrupt checksum
// comparisons and hide schema drift on the source.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies one known field category on a detail page.
type Category int

const (
	// CategoryDescription is the program summary tab (Kurzzusammenfassung).
	CategoryDescription Category = iota
	// CategoryMoreInfo is the supplementary info tab (Zusatzinfos).
	CategoryMoreInfo
	// CategoryLegalBasis is the legal basis tab (Rechtsgrundlage).
	CategoryLegalBasis
	// CategoryContactInfo is the contact block (Ansprechpunkt).
	CategoryContactInfo
	// CategoryFurtherLinks is the related links block (Weiterführende Links).
	CategoryFurtherLinks
	// CategoryFundingType is the funding type list (Förderart).
	CategoryFundingType
	// CategoryFundingArea is the funding area list (Förderbereich).
	CategoryFundingArea
	// CategoryFundingLocation is the funding region list (Fördergebiet).
	CategoryFundingLocation
	// CategoryEligibleApplicants is the applicant list (Förderberechtigte).
	CategoryEligibleApplicants
	// CategoryFundingBody is the funding body reference (Fördergeber).
	CategoryFundingBody
)

// ErrUnknownCategory reports a field label the extractor has no mapping
// for. It is fatal for the run: the source schema has drifted.
var ErrUnknownCategory = errors.New("extract: unknown field category")

// labelCategories maps the source's human-readable labels to categories.
var labelCategories = map[string]Category{
	"Kurzzusammenfassung":   CategoryDescription,
	"Zusatzinfos":           CategoryMoreInfo,
	"Rechtsgrundlage":       CategoryLegalBasis,
	"Ansprechpunkt":         CategoryContactInfo,
	"Weiterführende Links":  CategoryFurtherLinks,
	"Förderart":             CategoryFundingType,
	"Förderbereich":         CategoryFundingArea,
	"Fördergebiet":          CategoryFundingLocation,
	"Förderberechtigte":     CategoryEligibleApplicants,
	"Fördergeber":           CategoryFundingBody,
}

// categoryNames gives each category a stable name for logs and errors.
var categoryNames = map[Category]string{
	CategoryDescription:        "description",
	CategoryMoreInfo:           "more_info",
	CategoryLegalBasis:         "legal_basis",
	CategoryContactInfo:        "contact_info",
	CategoryFurtherLinks:       "further_links",
	CategoryFundingType:        "funding_type",
	CategoryFundingArea:        "funding_area",
	CategoryFundingLocation:    "funding_location",
	CategoryEligibleApplicants: "eligible_applicants",
	CategoryFundingBody:        "funding_body",
}

// ParseLabel resolves a raw label (as it appears on the page, with
// optional trailing colon and whitespace) to its category.
func ParseLabel(label string) (Category, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(label), ":")

	category, ok := labelCategories[cleaned]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, cleaned)
	}
	return category, nil
}

// String returns the category's internal field name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// IsList reports whether the category's value is a comma-separated list
// on the source page.
func (c Category) IsList() bool {
	switch c {
	case CategoryFundingType, CategoryFundingArea, CategoryFundingLocation, CategoryEligibleApplicants:
		return true
	default:
		return false
	}
}
