package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Visitor account statuses
const (
	VisitorPending  shared.Status = 0
	VisitorApproved shared.Status = 1
)

// VisitorToggleField is the flag flipped by the approval toggle
const VisitorToggleField = "status"

// VisitorStatuses labels visitor approval
var VisitorStatuses = shared.BinaryTable("En attente", "Approuvé")

// Visitor is an account registered on the public site, approved by an administrator
type Visitor struct {
	shared.BaseEntity
	FullName string        `gorm:"type:varchar(200);not null" json:"full_name"`
	Email    string        `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`
	Company  string        `gorm:"type:varchar(200)" json:"company"`
	Phone    string        `gorm:"type:varchar(50)" json:"phone"`
	Status   shared.Status `gorm:"not null;default:0" json:"status"`
}

// TableName returns the table name for GORM
func (Visitor) TableName() string {
	return "visitors"
}

// VisitorForm declares the editable fields of a visitor
var VisitorForm = []shared.FieldSpec{
	{Name: "full_name", Label: "Nom complet", Kind: shared.KindText, Required: true},
	{Name: "email", Label: "Email", Kind: shared.KindText, Required: true},
	{Name: "company", Label: "Société", Kind: shared.KindText},
	{Name: "phone", Label: "Téléphone", Kind: shared.KindText},
	{Name: VisitorToggleField, Label: "Statut", Kind: shared.KindStatus},
}

// Validate checks the visitor invariants
func (v *Visitor) Validate() error {
	if err := shared.RequireAll(
		[2]string{"full_name", v.FullName},
		[2]string{"email", v.Email},
	); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(v.Email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "email is not a valid address")
	}
	if !VisitorStatuses.Has(v.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be 0 or 1")
	}
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	return nil
}

// DisplayLabel identifies the visitor
func (v Visitor) DisplayLabel() string {
	if v.Company == "" {
		return v.FullName
	}
	return v.FullName + " - " + v.Company
}

// VisitorSchema is the list-view field set of visitors
func VisitorSchema() listview.Schema[Visitor] {
	status := func(v Visitor) string { return v.Status.String() }
	return listview.Schema[Visitor]{
		Entity: "visitors",
		Search: []listview.Accessor[Visitor]{
			func(v Visitor) string { return v.FullName },
			func(v Visitor) string { return v.Email },
			func(v Visitor) string { return v.Company },
		},
		Fields: map[string]listview.Accessor[Visitor]{
			"status": status,
		},
		Date: func(v Visitor) time.Time { return v.CreatedAt },
		GroupBy: map[string]listview.Accessor[Visitor]{
			"status": func(v Visitor) string { return VisitorStatuses.Label(v.Status) },
			"month":  func(v Visitor) string { return listview.MonthLabel(v.CreatedAt) },
		},
		Buckets: map[string]listview.Accessor[Visitor]{
			"status": status,
		},
		BucketLabel: map[string]func(string) string{
			"status": VisitorStatuses.LabelOf,
		},
	}
}
