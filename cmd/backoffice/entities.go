package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/organization"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
)

type recordPtr[T any] interface {
	*T
	shared.Record
}

// entity declares how the client shows and edits one record type
type entity[T any, P recordPtr[T]] struct {
	name     string
	title    string
	schema   listview.Schema[T]
	fields   []shared.FieldSpec
	statuses shared.StatusTable
	// statusKey is the schema bucket holding the status code
	statusKey string
	// toggleField is the 0/1 flag flipped by toggle; "" means status moves through --to
	toggleField string
}

// entityCommands is what the commands need from an entity, whatever its record type
type entityCommands interface {
	Name() string
	Title() string
	List(ctx context.Context, a *app, opts listOptions) error
	Create(ctx context.Context, a *app, sets []string) error
	Edit(ctx context.Context, a *app, id string, sets []string) error
	Toggle(ctx context.Context, a *app, id string, opts toggleOptions) error
	Delete(ctx context.Context, a *app, id string, assumeYes bool) error
	Stats(ctx context.Context, a *app, opts listOptions, theme string) error
}

func (e *entity[T, P]) Name() string  { return e.name }
func (e *entity[T, P]) Title() string { return e.title }

func (e *entity[T, P]) statusLabel(rec T) string {
	get, ok := e.schema.Buckets[e.statusKey]
	if !ok {
		return ""
	}
	return e.statuses.LabelOf(get(rec))
}

// row renders the id, label, status, the categorical fields and the creation date
func (e *entity[T, P]) row(rec T) []string {
	p := P(&rec)
	row := []string{p.GetID(), p.DisplayLabel(), e.statusLabel(rec)}
	for _, key := range e.columnKeys() {
		row = append(row, e.schema.Fields[key](rec))
	}
	return append(row, p.GetCreatedAt().Local().Format("02/01/2006"))
}

func (e *entity[T, P]) header() []string {
	header := []string{"ID", "Libellé", "Statut"}
	header = append(header, e.columnKeys()...)
	return append(header, "Créé le")
}

func (e *entity[T, P]) columnKeys() []string {
	var keys []string
	for _, k := range e.schema.FilterKeys() {
		if k != e.statusKey {
			keys = append(keys, k)
		}
	}
	return keys
}

func (e *entity[T, P]) field(name string) (shared.FieldSpec, bool) {
	for _, f := range e.fields {
		if f.Name == name {
			return f, true
		}
	}
	return shared.FieldSpec{}, false
}

// entities lists every entity the client knows, keyed by resource name
func entities() map[string]entityCommands {
	all := []entityCommands{
		&entity[partner.Partner, *partner.Partner]{
			name: "partners", title: "Partenaires",
			schema: partner.Schema(), fields: partner.Form, statuses: partner.Statuses,
			statusKey: "status", toggleField: partner.ToggleField,
		},
		&entity[trade.Cotation, *trade.Cotation]{
			name: "cotations", title: "Cotations",
			schema: trade.CotationSchema(), fields: trade.CotationForm, statuses: trade.CotationStatuses,
			statusKey: "status",
		},
		&entity[trade.Tender, *trade.Tender]{
			name: "tenders", title: "Appels d'offres",
			schema: trade.TenderSchema(), fields: trade.TenderForm, statuses: trade.TenderStatuses,
			statusKey: "status",
		},
		&entity[catalog.Offering, *catalog.Offering]{
			name: "services", title: "Services",
			schema: catalog.OfferingSchema(), fields: catalog.OfferingForm, statuses: catalog.OfferingVisibility,
			statusKey: "is_visible", toggleField: catalog.OfferingToggleField,
		},
		&entity[organization.Member, *organization.Member]{
			name: "members", title: "Membres",
			schema: organization.MemberSchema(), fields: organization.MemberForm, statuses: organization.MemberStatuses,
			statusKey: "status", toggleField: organization.MemberToggleField,
		},
		&entity[organization.Office, *organization.Office]{
			name: "offices", title: "Bureaux",
			schema: organization.OfficeSchema(), fields: organization.OfficeForm, statuses: organization.OfficeStatuses,
			statusKey: "status", toggleField: organization.OfficeToggleField,
		},
		&entity[identity.Visitor, *identity.Visitor]{
			name: "visitors", title: "Visiteurs",
			schema: identity.VisitorSchema(), fields: identity.VisitorForm, statuses: identity.VisitorStatuses,
			statusKey: "status", toggleField: identity.VisitorToggleField,
		},
	}
	out := make(map[string]entityCommands, len(all))
	for _, e := range all {
		out[e.Name()] = e
	}
	return out
}

func entityNames() []string {
	names := make([]string, 0, 7)
	for name := range entities() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupEntity(name string) (entityCommands, error) {
	e, ok := entities()[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("entité inconnue %q (attendu: %s)", name, strings.Join(entityNames(), ", "))
	}
	return e, nil
}

// parseSets splits field=value arguments
func parseSets(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("attendu champ=valeur, reçu %q", s)
		}
		out = append(out, [2]string{strings.TrimSpace(k), v})
	}
	return out, nil
}
