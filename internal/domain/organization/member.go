// Package organization holds the team members and the office locations they work from.
package organization

import (
	"net/mail"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// MemberToggleField is the flag flipped by the member status toggle
const MemberToggleField = "status"

// MemberStatuses labels team member activity
var MemberStatuses = shared.BinaryTable("Inactif", "Actif")

// Member is a person of the team, assignable as cotation manager or tender responsible
type Member struct {
	shared.BaseEntity
	FullName   string        `gorm:"type:varchar(200);not null;index" json:"full_name"`
	Position   string        `gorm:"type:varchar(100)" json:"position"`
	Email      string        `gorm:"type:varchar(200);uniqueIndex" json:"email"`
	Phone      string        `gorm:"type:varchar(50)" json:"phone"`
	OfficeID   string        `gorm:"type:varchar(36);index" json:"office_id"`
	OfficeName string        `gorm:"type:varchar(200)" json:"office_name"`
	Status     shared.Status `gorm:"not null;default:1" json:"status"`
}

// TableName returns the table name for GORM
func (Member) TableName() string {
	return "members"
}

// MemberForm declares the editable fields of a member
var MemberForm = []shared.FieldSpec{
	{Name: "full_name", Label: "Nom complet", Kind: shared.KindText, Required: true},
	{Name: "position", Label: "Poste", Kind: shared.KindText},
	{Name: "email", Label: "Email", Kind: shared.KindText, Required: true},
	{Name: "phone", Label: "Téléphone", Kind: shared.KindText},
	{Name: "office_id", Label: "Bureau", Kind: shared.KindRef},
	{Name: MemberToggleField, Label: "Statut", Kind: shared.KindStatus},
}

// Validate checks the member invariants
func (m *Member) Validate() error {
	if err := shared.RequireAll(
		[2]string{"full_name", m.FullName},
		[2]string{"email", m.Email},
	); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "email is not a valid address")
	}
	if !MemberStatuses.Has(m.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be 0 or 1")
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	return nil
}

// DisplayLabel identifies the member
func (m Member) DisplayLabel() string {
	return m.FullName
}

// MemberSchema is the list-view field set of members
func MemberSchema() listview.Schema[Member] {
	status := func(m Member) string { return m.Status.String() }
	office := func(m Member) string {
		if m.OfficeName == "" {
			return "Sans bureau"
		}
		return m.OfficeName
	}
	return listview.Schema[Member]{
		Entity: "members",
		Search: []listview.Accessor[Member]{
			func(m Member) string { return m.FullName },
			func(m Member) string { return m.Email },
			func(m Member) string { return m.Position },
		},
		Fields: map[string]listview.Accessor[Member]{
			"status":    status,
			"office_id": func(m Member) string { return m.OfficeID },
		},
		Date: func(m Member) time.Time { return m.CreatedAt },
		GroupBy: map[string]listview.Accessor[Member]{
			"status": func(m Member) string { return MemberStatuses.Label(m.Status) },
			"office": office,
			"month":  func(m Member) string { return listview.MonthLabel(m.CreatedAt) },
		},
		Buckets: map[string]listview.Accessor[Member]{
			"status": status,
			"office": office,
		},
		BucketLabel: map[string]func(string) string{
			"status": MemberStatuses.LabelOf,
		},
	}
}
