package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cotation pipeline stages
const (
	CotationDraft       shared.Status = 0
	CotationSent        shared.Status = 1
	CotationNegotiating shared.Status = 2
	CotationAccepted    shared.Status = 3
	CotationRefused     shared.Status = 4
	CotationExpired     shared.Status = 5
)

// CotationStatuses is the single label/style table for cotation stages
var CotationStatuses = shared.NewStatusTable(
	shared.StatusInfo{Label: "Inconnu", Class: "badge-secondary", Color: "#9ca3af"},
	shared.StatusInfo{Code: CotationDraft, Label: "Brouillon", Class: "badge-secondary", Color: "#64748b"},
	shared.StatusInfo{Code: CotationSent, Label: "Envoyée", Class: "badge-info", Color: "#3b82f6"},
	shared.StatusInfo{Code: CotationNegotiating, Label: "En négociation", Class: "badge-warning", Color: "#f59e0b"},
	shared.StatusInfo{Code: CotationAccepted, Label: "Acceptée", Class: "badge-success", Color: "#22c55e"},
	shared.StatusInfo{Code: CotationRefused, Label: "Refusée", Class: "badge-danger", Color: "#ef4444"},
	shared.StatusInfo{Code: CotationExpired, Label: "Expirée", Class: "badge-dark", Color: "#1f2937"},
)

// TransportMode is how the quoted goods travel
type TransportMode string

const (
	TransportAir  TransportMode = "air"
	TransportSea  TransportMode = "sea"
	TransportRoad TransportMode = "road"
	TransportRail TransportMode = "rail"
)

var transportLabels = map[TransportMode]string{
	TransportAir:  "Aérien",
	TransportSea:  "Maritime",
	TransportRoad: "Routier",
	TransportRail: "Ferroviaire",
}

// TransportLabel renders a transport mode
func TransportLabel(mode string) string {
	if l, ok := transportLabels[TransportMode(mode)]; ok {
		return l
	}
	return "Non précisé"
}

// Cotation is a price quotation sent to a partner
type Cotation struct {
	shared.BaseEntity
	Reference     string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"reference"`
	Title         string          `gorm:"type:varchar(200);not null" json:"title"`
	PartnerID     string          `gorm:"type:varchar(36);not null;index" json:"partner_id"`
	PartnerName   string          `gorm:"type:varchar(200)" json:"partner_name"`
	ServiceID     string          `gorm:"type:varchar(36);index" json:"service_id"`
	ServiceName   string          `gorm:"type:varchar(200)" json:"service_name"`
	ManagerID     string          `gorm:"type:varchar(36);index" json:"manager_id"`
	ManagerName   string          `gorm:"type:varchar(200)" json:"manager_name"`
	TransportMode TransportMode   `gorm:"type:varchar(20)" json:"transport_mode"`
	Status        shared.Status   `gorm:"not null;default:0" json:"status"`
	SaleAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sale_amount"`
	BuyAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"buy_amount"`
	ValidUntil    shared.Date     `json:"valid_until"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Cotation) TableName() string {
	return "cotations"
}

// CotationForm declares the editable fields of a cotation
var CotationForm = []shared.FieldSpec{
	{Name: "reference", Label: "Référence", Kind: shared.KindText},
	{Name: "title", Label: "Objet", Kind: shared.KindText, Required: true},
	{Name: "partner_id", Label: "Partenaire", Kind: shared.KindRef, Required: true},
	{Name: "service_id", Label: "Service", Kind: shared.KindRef, Required: true},
	{Name: "manager_id", Label: "Responsable", Kind: shared.KindRef, Required: true},
	{Name: "transport_mode", Label: "Mode de transport", Kind: shared.KindText},
	{Name: "status", Label: "Statut", Kind: shared.KindStatus},
	{Name: "sale_amount", Label: "Prix de vente", Kind: shared.KindNumber},
	{Name: "buy_amount", Label: "Prix d'achat", Kind: shared.KindNumber},
	{Name: "valid_until", Label: "Valide jusqu'au", Kind: shared.KindDate},
	{Name: "notes", Label: "Notes", Kind: shared.KindText},
}

// Validate checks the cotation invariants
func (c *Cotation) Validate() error {
	if err := shared.RequireAll(
		[2]string{"title", c.Title},
		[2]string{"partner_id", c.PartnerID},
		[2]string{"service_id", c.ServiceID},
		[2]string{"manager_id", c.ManagerID},
	); err != nil {
		return err
	}
	if !CotationStatuses.Has(c.Status) {
		return shared.NewDomainError("INVALID_STATUS", "status must be between 0 and 5")
	}
	if c.TransportMode != "" {
		if _, ok := transportLabels[c.TransportMode]; !ok {
			return shared.NewDomainError("INVALID_TRANSPORT_MODE", "transport_mode must be air, sea, road or rail")
		}
	}
	if c.SaleAmount.IsNegative() || c.BuyAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "amounts cannot be negative")
	}
	return nil
}

// EnsureReference assigns a reference when none was given
func (c *Cotation) EnsureReference(now time.Time) {
	c.Reference = strings.ToUpper(strings.TrimSpace(c.Reference))
	if c.Reference == "" {
		c.Reference = generateReference("COT", now, c.ID)
	}
}

// Margin returns sale minus buy
func (c Cotation) Margin() decimal.Decimal {
	return c.SaleAmount.Sub(c.BuyAmount)
}

// DisplayLabel identifies the cotation
func (c Cotation) DisplayLabel() string {
	return c.Reference + " - " + c.Title
}

func generateReference(prefix string, now time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("200601"), suffix)
}

// CotationSchema is the list-view field set of cotations
func CotationSchema() listview.Schema[Cotation] {
	status := func(c Cotation) string { return c.Status.String() }
	service := func(c Cotation) string { return c.ServiceID }
	manager := func(c Cotation) string { return c.ManagerID }
	transport := func(c Cotation) string { return string(c.TransportMode) }

	serviceNames := func(c Cotation) string { return orUnset(c.ServiceName) }
	managerNames := func(c Cotation) string { return orUnset(c.ManagerName) }

	return listview.Schema[Cotation]{
		Entity: "cotations",
		Search: []listview.Accessor[Cotation]{
			func(c Cotation) string { return c.Reference },
			func(c Cotation) string { return c.Title },
			func(c Cotation) string { return c.PartnerName },
		},
		Fields: map[string]listview.Accessor[Cotation]{
			"status":         status,
			"service_id":     service,
			"manager_id":     manager,
			"partner_id":     func(c Cotation) string { return c.PartnerID },
			"transport_mode": transport,
		},
		Date: func(c Cotation) time.Time { return c.CreatedAt },
		GroupBy: map[string]listview.Accessor[Cotation]{
			"status":    func(c Cotation) string { return CotationStatuses.Label(c.Status) },
			"service":   serviceNames,
			"manager":   managerNames,
			"partner":   func(c Cotation) string { return orUnset(c.PartnerName) },
			"transport": func(c Cotation) string { return TransportLabel(string(c.TransportMode)) },
			"month":     func(c Cotation) string { return listview.MonthLabel(c.CreatedAt) },
		},
		Buckets: map[string]listview.Accessor[Cotation]{
			"status":    status,
			"service":   serviceNames,
			"manager":   managerNames,
			"transport": transport,
		},
		BucketLabel: map[string]func(string) string{
			"status":    CotationStatuses.LabelOf,
			"transport": TransportLabel,
		},
		Sale: func(c Cotation) decimal.Decimal { return c.SaleAmount },
		Buy:  func(c Cotation) decimal.Decimal { return c.BuyAmount },
	}
}

func orUnset(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Non assigné"
	}
	return name
}
