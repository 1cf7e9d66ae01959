// Package domain provides the domain models shared across the application.
package domain

// Program is one extracted funding-program record. Optional fields are
// pointers so that "absent on the source page" and "present but empty"
// stay distinguishable; absent fields do not enter the fingerprint.
type Program struct {
	IDHash string `db:"id_hash" json:"id_hash"`
	IDURL  string `db:"id_url" json:"id_url"`
	URL    string `db:"url" json:"url"`
	Title  string `db:"title" json:"title"`

	Description *string `db:"description" json:"description,omitempty"`
	MoreInfo    *string `db:"more_info" json:"more_info,omitempty"`
	LegalBasis  *string `db:"legal_basis" json:"legal_basis,omitempty"`

	ContactInstitution *string `db:"contact_info_institution" json:"contact_info_institution,omitempty"`
	ContactStreet      *string `db:"contact_info_street" json:"contact_info_street,omitempty"`
	ContactCity        *string `db:"contact_info_city" json:"contact_info_city,omitempty"`
	ContactFax         *string `db:"contact_info_fax" json:"contact_info_fax,omitempty"`
	ContactPhone       *string `db:"contact_info_phone" json:"contact_info_phone,omitempty"`
	ContactEmail       *string `db:"contact_info_email" json:"contact_info_email,omitempty"`
	ContactWebsite     *string `db:"contact_info_website" json:"contact_info_website,omitempty"`

	FundingType        StringList `db:"funding_type" json:"funding_type,omitempty"`
	FundingArea        StringList `db:"funding_area" json:"funding_area,omitempty"`
	FundingLocation    StringList `db:"funding_location" json:"funding_location,omitempty"`
	EligibleApplicants StringList `db:"eligible_applicants" json:"eligible_applicants,omitempty"`
	FundingBody        *string    `db:"funding_body" json:"funding_body,omitempty"`
	FurtherLinks       StringList `db:"further_links" json:"further_links,omitempty"`

	// LicenseInfo is the source attribution statement for this record.
	// It carries the retrieval date, so it is set after fingerprinting
	// and never enters the checksum.
	LicenseInfo string `db:"license_info" json:"license_info"`

	// Checksum is the content fingerprint over the watched fields.
	// Set by the fingerprint generator, never extracted.
	Checksum string `db:"checksum" json:"checksum"`
}

// WatchedFields returns the fields used for change detection, keyed by
// column name. The locator and identity fields (url, id_hash, id_url)
// vary structurally rather than semantically and are excluded, as are
// the derived checksum and the license attribution (which embeds the
// retrieval date). Only fields present on the record are included.
func (p *Program) WatchedFields() map[string]any {
	fields := make(map[string]any)

	fields["title"] = p.Title

	addString := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	addList := func(name string, v StringList) {
		if v != nil {
			fields[name] = v
		}
	}

	addString("description", p.Description)
	addString("more_info", p.MoreInfo)
	addString("legal_basis", p.LegalBasis)
	addString("contact_info_institution", p.ContactInstitution)
	addString("contact_info_street", p.ContactStreet)
	addString("contact_info_city", p.ContactCity)
	addString("contact_info_fax", p.ContactFax)
	addString("contact_info_phone", p.ContactPhone)
	addString("contact_info_email", p.ContactEmail)
	addString("contact_info_website", p.ContactWebsite)
	addList("funding_type", p.FundingType)
	addList("funding_area", p.FundingArea)
	addList("funding_location", p.FundingLocation)
	addList("eligible_applicants", p.EligibleApplicants)
	addString("funding_body", p.FundingBody)
	addList("further_links", p.FurtherLinks)

	return fields
}

// HasMinimalContent reports whether the record satisfies the minimal
// content rule: a title plus at least one of description, legal basis
// or supplementary info. Records failing it are rejected before merge.
func (p *Program) HasMinimalContent() bool {
	if p.Title == "" {
		return false
	}
	return p.Description != nil || p.LegalBasis != nil || p.MoreInfo != nil
}
