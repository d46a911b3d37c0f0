package organization

import (
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// OfficeToggleField is the flag flipped by the office status toggle
const OfficeToggleField = "status"

// OfficeStatuses labels whether an office is open
var OfficeStatuses = shared.BinaryTable("Fermé", "Ouvert")

// Office is a physical location of the business
type Office struct {
	shared.BaseEntity
	Name    string        `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	City    string        `gorm:"type:varchar(100);index" json:"city"`
	Address string        `gorm:"type:varchar(255)" json:"address"`
	Phone   string        `gorm:"type:varchar(50)" json:"phone"`
	Email   string        `gorm:"type:varchar(200)" json:"email"`
	Status  shared.Status `gorm:"not null;default:1" json:"status"`
}

// TableName returns the table name for GORM
func (Office) TableName() string {
	return "offices"
}

// OfficeForm declares the editable fields of an office
var OfficeForm = []shared.FieldSpec{
	{Name: "name", Label: "Nom", Kind: shared.KindText, Required: true},
	{Name: "city", Label: "Ville", Kind: shared.KindText, Required: true},
	{Name: "address", Label: "Adresse", Kind: shared.KindText},
	{Name: "phone", Label: "Téléphone", Kind: shared.KindText},
	{Name: "email", Label: "Email", Kind: shared.KindText},
	{Name: OfficeToggleField, Label: "Statut", Kind: shared.KindStatus},
}

func (o *Office) Validate() error {
	if err := shared.RequireAll(
		[2]string{"name", o.Name},
		[2]string{"city", o.City},
	); err != nil {
		return err
	}
	if !OfficeStatuses.Has(o.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be 0 or 1")
	}
	return nil
}

func (o Office) DisplayLabel() string {
	if o.City == "" {
		return o.Name
	}
	return o.Name + " (" + o.City + ")"
}

// OfficeSchema is the list-view field set of offices
func OfficeSchema() listview.Schema[Office] {
	status := func(o Office) string { return o.Status.String() }
	city := func(o Office) string { return o.City }
	return listview.Schema[Office]{
		Entity: "offices",
		Search: []listview.Accessor[Office]{
			func(o Office) string { return o.Name },
			city,
			func(o Office) string { return o.Address },
		},
		Fields: map[string]listview.Accessor[Office]{
			"status": status,
			"city":   city,
		},
		Date: func(o Office) time.Time { return o.CreatedAt },
		GroupBy: map[string]listview.Accessor[Office]{
			"status": func(o Office) string { return OfficeStatuses.Label(o.Status) },
			"city":   city,
		},
		Buckets: map[string]listview.Accessor[Office]{
			"status": status,
			"city":   city,
		},
		BucketLabel: map[string]func(string) string{
			"status": OfficeStatuses.LabelOf,
		},
	}
}
