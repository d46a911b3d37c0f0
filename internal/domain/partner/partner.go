package partner

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Partner statuses
const (
	StatusPending   shared.Status = 0
	StatusActive    shared.Status = 1
	StatusSuspended shared.Status = 2
)

// ToggleField is the flag flipped by the visibility toggle
const ToggleField = "is_visible"

// Statuses is the single label/style table for partner statuses
var Statuses = shared.NewStatusTable(
	shared.StatusInfo{Label: "Inconnu", Class: "badge-secondary", Color: "#9ca3af"},
	shared.StatusInfo{Code: StatusPending, Label: "En attente", Class: "badge-warning", Color: "#f59e0b"},
	shared.StatusInfo{Code: StatusActive, Label: "Actif", Class: "badge-success", Color: "#22c55e"},
	shared.StatusInfo{Code: StatusSuspended, Label: "Suspendu", Class: "badge-danger", Color: "#ef4444"},
)

// Visibility labels the is_visible flag
var Visibility = shared.BinaryTable("Masqué", "Visible")

// Partner is a company the business works with
type Partner struct {
	shared.BaseEntity
	Title        string        `gorm:"type:varchar(200);not null;index" json:"title"`
	Email        string        `gorm:"type:varchar(200)" json:"email"`
	Phone        string        `gorm:"type:varchar(50)" json:"phone"`
	Website      string        `gorm:"type:varchar(255)" json:"website"`
	Description  string        `gorm:"type:text" json:"description"`
	CategoryID   string        `gorm:"type:varchar(50);not null;index" json:"category_id"`
	CategoryName string        `gorm:"type:varchar(100)" json:"category_name"`
	Status       shared.Status `gorm:"not null;default:0" json:"status"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	IsVisible    shared.Status `gorm:"not null;default:1" json:"is_visible"`
}

// TableName returns the table name for GORM
func (Partner) TableName() string {
	return "partners"
}

// Form declares the editable fields of a partner
var Form = []shared.FieldSpec{
	{Name: "title", Label: "Raison sociale", Kind: shared.KindText, Required: true},
	{Name: "email", Label: "Email", Kind: shared.KindText},
	{Name: "phone", Label: "Téléphone", Kind: shared.KindText},
	{Name: "website", Label: "Site web", Kind: shared.KindText},
	{Name: "description", Label: "Description", Kind: shared.KindText},
	{Name: "category_id", Label: "Catégorie", Kind: shared.KindRef, Required: true},
	{Name: "status", Label: "Statut", Kind: shared.KindStatus},
	{Name: "is_active", Label: "Actif", Kind: shared.KindBool},
	{Name: ToggleField, Label: "Visible", Kind: shared.KindStatus},
}

// New creates a partner with the required fields
func New(title, categoryID string) (*Partner, error) {
	p := &Partner{
		BaseEntity: shared.NewBaseEntity(),
		Title:      strings.TrimSpace(title),
		CategoryID: categoryID,
		Status:     StatusPending,
		IsActive:   true,
		IsVisible:  1,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ResolveCategory()
	return p, nil
}

// Validate checks the partner invariants
func (p *Partner) Validate() error {
	if err := shared.RequireText("title", p.Title); err != nil {
		return err
	}
	if len(p.Title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "title cannot exceed 200 characters")
	}
	if err := shared.RequireText("category_id", p.CategoryID); err != nil {
		return err
	}
	if _, ok := Categories.Find(p.CategoryID); !ok {
		return shared.NewDomainError("INVALID_CATEGORY", "unknown category "+p.CategoryID)
	}
	if !Statuses.Has(p.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be one of 0, 1, 2")
	}
	if p.IsVisible != 0 && p.IsVisible != 1 {
		return shared.NewDomainError("INVALID_VISIBILITY", "is_visible must be 0 or 1")
	}
	return nil
}

// ResolveCategory refreshes the denormalized category name
func (p *Partner) ResolveCategory() {
	if c, ok := Categories.Find(p.CategoryID); ok {
		p.CategoryID = c.ID
		p.CategoryName = c.Name
	}
}

// DisplayLabel identifies the partner
func (p Partner) DisplayLabel() string {
	return p.Title
}

// Schema is the list-view field set of partners
func Schema() listview.Schema[Partner] {
	status := func(p Partner) string { return p.Status.String() }
	category := func(p Partner) string { return p.CategoryID }
	return listview.Schema[Partner]{
		Entity: "partners",
		Search: []listview.Accessor[Partner]{
			func(p Partner) string { return p.Title },
			func(p Partner) string { return p.Email },
			func(p Partner) string { return p.CategoryName },
		},
		Fields: map[string]listview.Accessor[Partner]{
			"status":      status,
			"category_id": category,
			"is_visible":  func(p Partner) string { return p.IsVisible.String() },
			"is_active": func(p Partner) string {
				if p.IsActive {
					return "1"
				}
				return "0"
			},
		},
		Date: func(p Partner) time.Time { return p.CreatedAt },
		GroupBy: map[string]listview.Accessor[Partner]{
			"status":   func(p Partner) string { return Statuses.Label(p.Status) },
			"category": func(p Partner) string { return Categories.Name(p.CategoryID) },
			"month":    func(p Partner) string { return listview.MonthLabel(p.CreatedAt) },
		},
		Buckets: map[string]listview.Accessor[Partner]{
			"status":   status,
			"category": category,
		},
		BucketLabel: map[string]func(string) string{
			"status":   Statuses.LabelOf,
			"category": Categories.Name,
		},
	}
}
