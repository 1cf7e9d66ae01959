// Package export serializes snapshot rows to tabular files. The core
// has no dependency on these formats; this is the outermost edge of the
// pipeline.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foerderdata/fundwatch/internal/domain"
)

// csvHeader lists the exported columns in order.
var csvHeader = []string{
	"id_hash", "id_url", "url", "title",
	"description", "more_info", "legal_basis",
	"contact_info_institution", "contact_info_street", "contact_info_city",
	"contact_info_fax", "contact_info_phone", "contact_info_email", "contact_info_website",
	"funding_type", "funding_area", "funding_location", "eligible_applicants",
	"funding_body", "further_links",
	"license_info", "checksum", "last_updated", "previous_update_dates", "deleted",
}

// listSeparator joins list values inside one CSV cell.
const listSeparator = "|"

// WriteJSON writes the snapshot as a JSON array.
func WriteJSON(w io.Writer, rows []domain.SnapshotRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// WriteCSV writes the snapshot as CSV with a header row.
func WriteCSV(w io.Writer, rows []domain.SnapshotRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	for i := range rows {
		if err := writer.Write(csvRecord(&rows[i])); err != nil {
			return fmt.Errorf("export: write csv row %s: %w", rows[i].IDHash, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// csvRecord renders one snapshot row as CSV fields in header order.
func csvRecord(row *domain.SnapshotRow) []string {
	return []string{
		row.IDHash,
		row.IDURL,
		row.URL,
		row.Title,
		stringValue(row.Description),
		stringValue(row.MoreInfo),
		stringValue(row.LegalBasis),
		stringValue(row.ContactInstitution),
		stringValue(row.ContactStreet),
		stringValue(row.ContactCity),
		stringValue(row.ContactFax),
		stringValue(row.ContactPhone),
		stringValue(row.ContactEmail),
		stringValue(row.ContactWebsite),
		listValue(row.FundingType),
		listValue(row.FundingArea),
		listValue(row.FundingLocation),
		listValue(row.EligibleApplicants),
		stringValue(row.FundingBody),
		listValue(row.FurtherLinks),
		row.LicenseInfo,
		row.Checksum,
		row.LastUpdated.Format(time.RFC3339),
		datesValue(row.PreviousUpdateDates),
		fmt.Sprintf("%t", row.Deleted),
	}
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func listValue(v domain.StringList) string {
	return strings.Join(v, listSeparator)
}

func datesValue(dates []time.Time) string {
	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(time.RFC3339)
	}
	return strings.Join(formatted, listSeparator)
}
