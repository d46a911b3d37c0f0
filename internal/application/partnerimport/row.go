// Package partnerimport turns an uploaded partner workbook into validated
// rows, lets the user correct them cell by cell, and bulk-inserts the result
// once every row is valid.
package partnerimport

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Column names of the import sheet
const (
	ColCompanyName = "company_name"
	ColEmail       = "email"
	ColPhone       = "phone"
	ColWebsite     = "website"
	ColCategory    = "category"
	ColStatus      = "status"
	ColIsActive    = "is_active"
	ColDescription = "description"
)

// Columns is the fixed column order of templates and parsed rows
var Columns = []string{
	ColCompanyName, ColEmail, ColPhone, ColWebsite,
	ColCategory, ColStatus, ColIsActive, ColDescription,
}

// RequiredHeader must be present or the whole file is rejected
const RequiredHeader = ColCompanyName

var (
	ErrMissingHeader = shared.NewDomainError("MISSING_HEADER", "the sheet has no company_name column")
	ErrEmptyFile     = shared.NewDomainError("EMPTY_FILE", "the sheet contains no data rows")
	ErrUnknownColumn = shared.NewDomainError("UNKNOWN_COLUMN", "unknown import column")
	ErrRowOutOfRange = shared.NewDomainError("ROW_OUT_OF_RANGE", "row index out of range")
	ErrInvalidRows   = shared.NewDomainError("INVALID_ROWS", "fix every row before importing")
)

// Record is the fixed-shape content of one data row, kept as typed text
type Record struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	IsActive    string `json:"is_active"`
	Description string `json:"description"`
}

func (r *Record) cell(column string) *string {
	switch column {
	case ColCompanyName:
		return &r.CompanyName
	case ColEmail:
		return &r.Email
	case ColPhone:
		return &r.Phone
	case ColWebsite:
		return &r.Website
	case ColCategory:
		return &r.Category
	case ColStatus:
		return &r.Status
	case ColIsActive:
		return &r.IsActive
	case ColDescription:
		return &r.Description
	}
	return nil
}

// Values returns the cells in Columns order
func (r Record) Values() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = *r.cell(c)
	}
	return out
}

// Row is one data row with the errors found in it
type Row struct {
	// Line is the 1-based line number in the sheet, the header being line 1
	Line   int      `json:"line"`
	Record Record   `json:"record"`
	Errors []string `json:"errors"`
}

// Valid reports whether the row has no error
func (r Row) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateRow returns the human-readable problems of rec, or nil
func ValidateRow(rec Record) []string {
	var errs []string

	name := strings.TrimSpace(rec.CompanyName)
	switch {
	case name == "":
		errs = append(errs, "company_name is required")
	case len(name) > 200:
		errs = append(errs, "company_name cannot exceed 200 characters")
	}

	if s := strings.TrimSpace(rec.Status); s != "" {
		code, err := shared.ParseStatus(s)
		if err != nil || !partner.Statuses.Has(code) {
			errs = append(errs, "status must be 0, 1 or 2")
		}
	}

	switch strings.ToUpper(strings.TrimSpace(rec.IsActive)) {
	case "", "YES", "NO":
	default:
		errs = append(errs, "is_active must be YES or NO")
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		errs = append(errs, "category is required")
	} else if _, ok := partner.Categories.Find(category); !ok {
		errs = append(errs, "category "+category+" is unknown")
	}

	return errs
}

// ParseRows reads the header and data rows of the first sheet. Blank rows
// are skipped; columns outside Columns are ignored.
func ParseRows(sheet [][]string) ([]Row, error) {
	headerAt := -1
	for i, cells := range sheet {
		if !blank(cells) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptyFile
	}

	index := make(map[string]int)
	for i, h := range sheet[headerAt] {
		key := normalizeHeader(h)
		if (&Record{}).cell(key) == nil {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	if _, ok := index[RequiredHeader]; !ok {
		return nil, ErrMissingHeader
	}

	var rows []Row
	for i := headerAt + 1; i < len(sheet); i++ {
		cells := sheet[i]
		if blank(cells) {
			continue
		}
		var rec Record
		for col, at := range index {
			if at < len(cells) {
				*rec.cell(col) = strings.TrimSpace(cells[at])
			}
		}
		rows = append(rows, Row{Line: i + 1, Record: rec, Errors: ValidateRow(rec)})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// ToPartner converts a valid record to a new partner
func ToPartner(rec Record) (*partner.Partner, error) {
	p, err := partner.New(rec.CompanyName, rec.Category)
	if err != nil {
		return nil, err
	}
	p.Email = rec.Email
	p.Phone = rec.Phone
	p.Website = rec.Website
	p.Description = rec.Description
	if s := strings.TrimSpace(rec.Status); s != "" {
		code, err := shared.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		p.Status = code
	}
	p.IsActive = !strings.EqualFold(strings.TrimSpace(rec.IsActive), "NO")
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
