package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/organization"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
)

// Namer resolves the display name of a referenced record
type Namer func(ctx context.Context, id string) (string, error)

// NamesFrom builds a Namer over a repository
func NamesFrom[T any](field string, repo shared.Repository[T], label func(T) string) Namer {
	return func(ctx context.Context, id string) (string, error) {
		if strings.TrimSpace(id) == "" {
			return "", nil
		}
		rec, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return "", shared.NewDomainError("INVALID_REFERENCE", field+" refers to a missing record")
			}
			return "", err
		}
		return label(*rec), nil
	}
}

// Repositories groups the storage of every entity
type Repositories struct {
	Partners  shared.Repository[partner.Partner]
	Cotations shared.Repository[trade.Cotation]
	Tenders   shared.Repository[trade.Tender]
	Offerings shared.Repository[catalog.Offering]
	Members   shared.Repository[organization.Member]
	Offices   shared.Repository[organization.Office]
	Visitors  shared.Repository[identity.Visitor]
}

// Services groups the record services of every entity
type Services struct {
	Partners  *Service[partner.Partner, *partner.Partner]
	Cotations *Service[trade.Cotation, *trade.Cotation]
	Tenders   *Service[trade.Tender, *trade.Tender]
	Offerings *Service[catalog.Offering, *catalog.Offering]
	Members   *Service[organization.Member, *organization.Member]
	Offices   *Service[organization.Office, *organization.Office]
	Visitors  *Service[identity.Visitor, *identity.Visitor]
}

// NewServices wires the record services with their reference resolvers
func NewServices(repos Repositories, opts ...Option) *Services {
	partnerName := NamesFrom("partner_id", repos.Partners, func(p partner.Partner) string { return p.Title })
	serviceName := NamesFrom("service_id", repos.Offerings, func(o catalog.Offering) string { return o.Title })
	memberName := NamesFrom("member", repos.Members, func(m organization.Member) string { return m.FullName })
	officeName := NamesFrom("office_id", repos.Offices, func(o organization.Office) string { return o.Name })

	return &Services{
		Partners: NewService[partner.Partner, *partner.Partner](Config[partner.Partner]{
			Schema:      partner.Schema(),
			Fields:      partner.Form,
			Statuses:    partner.Statuses,
			StatusKey:   "status",
			ToggleField: partner.ToggleField,
			Breakdowns:  []string{"category"},
			Titles:      map[string]string{"category": "Partenaires par catégorie"},
			Resolve: func(_ context.Context, p *partner.Partner) error {
				p.ResolveCategory()
				return nil
			},
		}, repos.Partners, opts...),

		Cotations: NewService[trade.Cotation, *trade.Cotation](Config[trade.Cotation]{
			Schema:      trade.CotationSchema(),
			Fields:      trade.CotationForm,
			Statuses:    trade.CotationStatuses,
			StatusKey:   "status",
			Breakdowns:  []string{"service", "transport", "manager"},
			Titles: map[string]string{
				"status":    "Montants par statut",
				"service":   "Montants par service",
				"transport": "Montants par mode de transport",
				"manager":   "Montants par responsable",
			},
			Resolve: func(ctx context.Context, c *trade.Cotation) (err error) {
				if c.PartnerName, err = partnerName(ctx, c.PartnerID); err != nil {
					return err
				}
				if c.ServiceName, err = serviceName(ctx, c.ServiceID); err != nil {
					return err
				}
				c.ManagerName, err = memberName(ctx, c.ManagerID)
				return err
			},
			Prepare: func(c *trade.Cotation, now time.Time) { c.EnsureReference(now) },
		}, repos.Cotations, opts...),

		Tenders: NewService[trade.Tender, *trade.Tender](Config[trade.Tender]{
			Schema:     trade.TenderSchema(),
			Fields:     trade.TenderForm,
			Statuses:   trade.TenderStatuses,
			StatusKey:  "status",
			Breakdowns: []string{"type"},
			Titles:     map[string]string{"type": "Appels d'offres par type"},
			Resolve: func(ctx context.Context, t *trade.Tender) (err error) {
				if t.PartnerName, err = partnerName(ctx, t.PartnerID); err != nil {
					return err
				}
				t.ResponsibleName, err = memberName(ctx, t.ResponsibleID)
				return err
			},
			Prepare: func(t *trade.Tender, now time.Time) { t.EnsureReference(now) },
		}, repos.Tenders, opts...),

		Offerings: NewService[catalog.Offering, *catalog.Offering](Config[catalog.Offering]{
			Schema:      catalog.OfferingSchema(),
			Fields:      catalog.OfferingForm,
			Statuses:    catalog.OfferingVisibility,
			StatusKey:   "is_visible",
			ToggleField: catalog.OfferingToggleField,
		}, repos.Offerings, opts...),

		Members: NewService[organization.Member, *organization.Member](Config[organization.Member]{
			Schema:      organization.MemberSchema(),
			Fields:      organization.MemberForm,
			Statuses:    organization.MemberStatuses,
			StatusKey:   "status",
			ToggleField: organization.MemberToggleField,
			Breakdowns:  []string{"office"},
			Titles:      map[string]string{"office": "Membres par bureau"},
			Resolve: func(ctx context.Context, m *organization.Member) (err error) {
				m.OfficeName, err = officeName(ctx, m.OfficeID)
				return err
			},
		}, repos.Members, opts...),

		Offices: NewService[organization.Office, *organization.Office](Config[organization.Office]{
			Schema:      organization.OfficeSchema(),
			Fields:      organization.OfficeForm,
			Statuses:    organization.OfficeStatuses,
			StatusKey:   "status",
			ToggleField: organization.OfficeToggleField,
			Breakdowns:  []string{"city"},
		}, repos.Offices, opts...),

		Visitors: NewService[identity.Visitor, *identity.Visitor](Config[identity.Visitor]{
			Schema:      identity.VisitorSchema(),
			Fields:      identity.VisitorForm,
			Statuses:    identity.VisitorStatuses,
			StatusKey:   "status",
			ToggleField: identity.VisitorToggleField,
		}, repos.Visitors, opts...),
	}
}
