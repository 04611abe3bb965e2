package domain

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the canonical calendar-day layout.
const dateLayout = "2006-01-02"

// Date is a calendar day in the form YYYY-MM-DD.
// Two payslips are considered the same day iff their Dates are equal strings.
type Date string

// ParseDate parses a calendar day. Any time-of-day component following the
// date (e.g. "2019-11-25T10:13:00") is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return "", fmt.Errorf("parse date %q: too short", s)
	}
	day := s[:len(dateLayout)]
	if _, err := time.Parse(dateLayout, day); err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(day), nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return string(d)
}

// ProviderDocument is a payslip advertised by the provider portal.
type ProviderDocument struct {
	// ID is the provider's identifier, rendered as a string.
	ID string

	// Date is the payslip's run date.
	Date Date

	// RawMeta holds the provider-specific fields the document was built from.
	RawMeta map[string]any
}

// ArchivedDocument is a payslip already present in the archive folder.
type ArchivedDocument struct {
	Date    Date
	Company string
}

// WorkItem is a provider document that must be downloaded and archived.
type WorkItem struct {
	Document   ProviderDocument
	CompanyTag string
}

// FileName returns the deterministic local file name {date}-{companyTag}.pdf.
func (w WorkItem) FileName() string {
	return fmt.Sprintf("%s-%s%s", w.Document.Date, w.CompanyTag, archiveExt)
}

const archiveExt = ".pdf"

// ParseArchivedName parses an archive file name of the form
// YYYY-MM-DD-Company.pdf. The company tag may itself contain dashes and
// dots, so only the .pdf extension is removed.
func ParseArchivedName(name string) (ArchivedDocument, bool) {
	base, ok := strings.CutSuffix(name, archiveExt)
	if !ok {
		return ArchivedDocument{}, false
	}
	if len(base) < len(dateLayout)+2 || base[len(dateLayout)] != '-' {
		return ArchivedDocument{}, false
	}
	date, err := ParseDate(base[:len(dateLayout)])
	if err != nil {
		return ArchivedDocument{}, false
	}
	return ArchivedDocument{Date: date, Company: base[len(dateLayout)+1:]}, true
}

// UploadResult holds browsable links to an archived payslip.
type UploadResult struct {
	FileURL   string
	FolderURL string
}

// FolderInfo identifies an archive folder.
type FolderInfo struct {
	ID  string
	URL string
}

// MessageRef is a handle on a mailbox message.
type MessageRef struct {
	ID       string
	ThreadID string
	WebURL   string
}
