package catalog

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// OfferingToggleField is the flag flipped by the visibility toggle
const OfferingToggleField = "is_visible"

// OfferingVisibility labels the is_visible flag of services
var OfferingVisibility = shared.BinaryTable("Masqué", "Visible")

// Offering is a service the business sells, shown on the public site when visible
type Offering struct {
	shared.BaseEntity
	Title       string        `gorm:"type:varchar(200);not null;uniqueIndex" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Icon        string        `gorm:"type:varchar(100)" json:"icon"`
	SortOrder   int           `gorm:"not null;default:0" json:"sort_order"`
	IsVisible   shared.Status `gorm:"not null;default:1" json:"is_visible"`
}

// TableName returns the table name for GORM
func (Offering) TableName() string {
	return "services"
}

// OfferingForm declares the editable fields of a service
var OfferingForm = []shared.FieldSpec{
	{Name: "title", Label: "Intitulé", Kind: shared.KindText, Required: true},
	{Name: "description", Label: "Description", Kind: shared.KindText},
	{Name: "icon", Label: "Icône", Kind: shared.KindText},
	{Name: "sort_order", Label: "Ordre", Kind: shared.KindNumber},
	{Name: OfferingToggleField, Label: "Visible", Kind: shared.KindStatus},
}

// NewOffering creates a visible service
func NewOffering(title string) (*Offering, error) {
	o := &Offering{
		BaseEntity: shared.NewBaseEntity(),
		Title:      strings.TrimSpace(title),
		IsVisible:  1,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the service invariants
func (o *Offering) Validate() error {
	if err := shared.RequireText("title", o.Title); err != nil {
		return err
	}
	if !OfferingVisibility.Has(o.IsVisible) {
		return shared.NewDomainError("INVALID_VISIBILITY", "is_visible must be 0 or 1")
	}
	if o.SortOrder < 0 {
		return shared.NewDomainError("INVALID_SORT_ORDER", "sort_order cannot be negative")
	}
	return nil
}

// DisplayLabel identifies the service
func (o Offering) DisplayLabel() string {
	return o.Title
}

// OfferingSchema is the list-view field set of services
func OfferingSchema() listview.Schema[Offering] {
	visible := func(o Offering) string { return o.IsVisible.String() }
	return listview.Schema[Offering]{
		Entity: "services",
		Search: []listview.Accessor[Offering]{
			func(o Offering) string { return o.Title },
			func(o Offering) string { return o.Description },
		},
		Fields: map[string]listview.Accessor[Offering]{
			"is_visible": visible,
		},
		Date: func(o Offering) time.Time { return o.CreatedAt },
		GroupBy: map[string]listview.Accessor[Offering]{
			"is_visible": func(o Offering) string { return OfferingVisibility.Label(o.IsVisible) },
			"month":      func(o Offering) string { return listview.MonthLabel(o.CreatedAt) },
		},
		Buckets: map[string]listview.Accessor[Offering]{
			"is_visible": visible,
		},
		BucketLabel: map[string]func(string) string{
			"is_visible": OfferingVisibility.LabelOf,
		},
	}
}
