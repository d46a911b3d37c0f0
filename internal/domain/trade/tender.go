package trade

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tender stages
const (
	TenderReceived  shared.Status = 0
	TenderInStudy   shared.Status = 1
	TenderSubmitted shared.Status = 2
	TenderWon       shared.Status = 3
	TenderLost      shared.Status = 4
)

// TenderStatuses is the single label/style table for tender stages
var TenderStatuses = shared.NewStatusTable(
	shared.StatusInfo{Label: "Inconnu", Class: "badge-secondary", Color: "#9ca3af"},
	shared.StatusInfo{Code: TenderReceived, Label: "Reçu", Class: "badge-info", Color: "#3b82f6"},
	shared.StatusInfo{Code: TenderInStudy, Label: "En étude", Class: "badge-warning", Color: "#f59e0b"},
	shared.StatusInfo{Code: TenderSubmitted, Label: "Soumis", Class: "badge-primary", Color: "#6366f1"},
	shared.StatusInfo{Code: TenderWon, Label: "Gagné", Class: "badge-success", Color: "#22c55e"},
	shared.StatusInfo{Code: TenderLost, Label: "Perdu", Class: "badge-danger", Color: "#ef4444"},
)

// TenderType classifies calls for tender
type TenderType string

const (
	TenderPublic     TenderType = "public"
	TenderPrivate    TenderType = "private"
	TenderRestricted TenderType = "restricted"
)

var tenderTypeLabels = map[TenderType]string{
	TenderPublic:     "Public",
	TenderPrivate:    "Privé",
	TenderRestricted: "Restreint",
}

// TenderTypeLabel renders a tender type
func TenderTypeLabel(t string) string {
	if l, ok := tenderTypeLabels[TenderType(t)]; ok {
		return l
	}
	return "Autre"
}

// Tender is a call for tender ("appel d'offres") received from a partner
type Tender struct {
	shared.BaseEntity
	Reference       string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"reference"`
	Title           string          `gorm:"type:varchar(200)" json:"title"`
	PartnerID       string          `gorm:"type:varchar(36);not null;index" json:"partner_id"`
	PartnerName     string          `gorm:"type:varchar(200)" json:"partner_name"`
	ResponsibleID   string          `gorm:"type:varchar(36);not null;index" json:"responsible_id"`
	ResponsibleName string          `gorm:"type:varchar(200)" json:"responsible_name"`
	Type            TenderType      `gorm:"type:varchar(20);not null" json:"type"`
	ReceptionDate   shared.Date     `gorm:"not null" json:"reception_date"`
	LimitDate       shared.Date     `gorm:"not null" json:"limit_date"`
	Status          shared.Status   `gorm:"not null;default:0" json:"status"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	Notes           string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Tender) TableName() string {
	return "tenders"
}

// TenderForm declares the editable fields of a tender
var TenderForm = []shared.FieldSpec{
	{Name: "reference", Label: "Référence", Kind: shared.KindText},
	{Name: "title", Label: "Intitulé", Kind: shared.KindText},
	{Name: "partner_id", Label: "Donneur d'ordre", Kind: shared.KindRef, Required: true},
	{Name: "responsible_id", Label: "Responsable", Kind: shared.KindRef, Required: true},
	{Name: "reception_date", Label: "Date de réception", Kind: shared.KindDate, Required: true},
	{Name: "type", Label: "Type", Kind: shared.KindText, Required: true},
	{Name: "limit_date", Label: "Date limite", Kind: shared.KindDate, Required: true},
	{Name: "status", Label: "Statut", Kind: shared.KindStatus},
	{Name: "amount", Label: "Montant estimé", Kind: shared.KindNumber},
	{Name: "notes", Label: "Notes", Kind: shared.KindText},
}

// Validate checks the tender invariants
func (t *Tender) Validate() error {
	if err := shared.RequireAll(
		[2]string{"partner_id", t.PartnerID},
		[2]string{"responsible_id", t.ResponsibleID},
		[2]string{"reception_date", t.ReceptionDate.String()},
		[2]string{"type", string(t.Type)},
		[2]string{"limit_date", t.LimitDate.String()},
	); err != nil {
		return err
	}
	if _, ok := tenderTypeLabels[t.Type]; !ok {
		return shared.NewDomainError("INVALID_TYPE", "type must be public, private or restricted")
	}
	if t.LimitDate.Before(t.ReceptionDate.Time) {
		return shared.NewDomainError("INVALID_DATES", "limit_date cannot precede reception_date")
	}
	if !TenderStatuses.Has(t.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be between 0 and 4")
	}
	if t.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "amount cannot be negative")
	}
	return nil
}

// EnsureReference assigns a reference when none was given
func (t *Tender) EnsureReference(now time.Time) {
	t.Reference = strings.ToUpper(strings.TrimSpace(t.Reference))
	if t.Reference == "" {
		t.Reference = generateReference("AO", now, t.ID)
	}
}

// DaysLeft returns the whole days between now and the limit date; negative once overdue
func (t Tender) DaysLeft(now time.Time) int {
	if t.LimitDate.IsZero() {
		return 0
	}
	today := shared.NewDate(now)
	return int(t.LimitDate.Sub(today.Time).Hours() / 24)
}

// DisplayLabel identifies the tender
func (t Tender) DisplayLabel() string {
	if t.Title == "" {
		return t.Reference
	}
	return t.Reference + " - " + t.Title
}

// TenderSchema is the list-view field set of tenders.
// Date windows apply to the reception date.
func TenderSchema() listview.Schema[Tender] {
	status := func(t Tender) string { return t.Status.String() }
	kind := func(t Tender) string { return string(t.Type) }
	return listview.Schema[Tender]{
		Entity: "tenders",
		Search: []listview.Accessor[Tender]{
			func(t Tender) string { return t.Reference },
			func(t Tender) string { return t.Title },
			func(t Tender) string { return t.PartnerName },
		},
		Fields: map[string]listview.Accessor[Tender]{
			"status":         status,
			"type":           kind,
			"partner_id":     func(t Tender) string { return t.PartnerID },
			"responsible_id": func(t Tender) string { return t.ResponsibleID },
		},
		Date: func(t Tender) time.Time { return t.ReceptionDate.Time },
		GroupBy: map[string]listview.Accessor[Tender]{
			"status":      func(t Tender) string { return TenderStatuses.Label(t.Status) },
			"type":        func(t Tender) string { return TenderTypeLabel(string(t.Type)) },
			"responsible": func(t Tender) string { return orUnset(t.ResponsibleName) },
			"month":       func(t Tender) string { return listview.MonthLabel(t.ReceptionDate.Time) },
		},
		Buckets: map[string]listview.Accessor[Tender]{
			"status": status,
			"type":   kind,
		},
		BucketLabel: map[string]func(string) string{
			"status": TenderStatuses.LabelOf,
			"type":   TenderTypeLabel,
		},
	}
}
