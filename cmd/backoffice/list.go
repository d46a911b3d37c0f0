package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/application/listing"
	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/spf13/cobra"
)

// listOptions are the list-screen choices given as flags
type listOptions struct {
	search   string
	filters  []string
	groupBy  string
	dateMode string
	month    int
	year     int
	start    string
	end      string
	stats    bool
}

func (o *listOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.search, "search", "s", "", "recherche plein texte")
	f.StringArrayVarP(&o.filters, "filter", "f", nil, "filtre champ=valeur (répétable)")
	f.StringVar(&o.dateMode, "date-mode", "", "fenêtre de dates: today, week, month, specific_month, specific_year, custom")
	f.IntVar(&o.month, "month", 0, "mois (1-12) pour specific_month")
	f.IntVar(&o.year, "year", 0, "année pour specific_month et specific_year")
	f.StringVar(&o.start, "start", "", "début de la fenêtre custom (AAAA-MM-JJ)")
	f.StringVar(&o.end, "end", "", "fin de la fenêtre custom (AAAA-MM-JJ)")
}

// query validates the flags the same way the API validates its query string
func (o listOptions) query() (listview.Query, error) {
	v := url.Values{}
	if o.search != "" {
		v.Set(listview.ParamSearch, o.search)
	}
	sets, err := parseSets(o.filters)
	if err != nil {
		return listview.Query{}, err
	}
	for _, kv := range sets {
		v.Set(listview.FilterParam(kv[0]), kv[1])
	}
	if o.groupBy != "" {
		v.Set(listview.ParamGroupBy, o.groupBy)
	}
	if o.dateMode != "" {
		v.Set(listview.ParamDateMode, o.dateMode)
	}
	if o.month != 0 {
		v.Set(listview.ParamMonth, strconv.Itoa(o.month))
	}
	if o.year != 0 {
		v.Set(listview.ParamYear, strconv.Itoa(o.year))
	}
	if o.start != "" {
		v.Set(listview.ParamStart, o.start)
	}
	if o.end != "" {
		v.Set(listview.ParamEnd, o.end)
	}
	return listview.ParseQuery(v)
}

// applyQuery replays q on a controller through its setters
func applyQuery[T any](ctrl *listing.Controller[T], q listview.Query) {
	ctrl.SetSearch(q.Search)
	for field, value := range q.Filters {
		ctrl.SetFilter(field, value)
	}
	ctrl.SetGroupBy(q.GroupBy)
	ctrl.SetDateMode(q.Window.Mode)
	if q.Window.Month != 0 {
		ctrl.SetMonth(q.Window.Month)
	}
	if q.Window.Year != 0 {
		ctrl.SetYear(q.Window.Year)
	}
	if !q.Window.Start.IsZero() || !q.Window.End.IsZero() {
		ctrl.SetRange(q.Window.Start, q.Window.End)
	}
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <entité>",
		Short: "Lister les enregistrements d'une entité",
		Long: `Charge les enregistrements puis applique recherche, filtres, fenêtre de dates et regroupement.

Entités: partners, cotations, tenders, services, members, offices, visitors.`,
		Example: `  backoffice list partners --search orange --filter status=1
  backoffice list cotations --group-by service --date-mode specific_year --year 2026 --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			return e.List(cmd.Context(), a, opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.groupBy, "group-by", "g", "", "clé de regroupement")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "ajouter les agrégats par statut et catégorie")
	return cmd
}

func (e *entity[T, P]) List(ctx context.Context, a *app, opts listOptions) error {
	q, err := opts.query()
	if err != nil {
		return err
	}
	if q.GroupBy != "" {
		if _, ok := e.schema.GroupBy[q.GroupBy]; !ok {
			return fmt.Errorf("regroupement inconnu %q (attendu: %s)", q.GroupBy, strings.Join(e.schema.GroupKeys(), ", "))
		}
	}

	params := url.Values{}
	if opts.stats {
		params.Set("format", "stats")
	}
	ctrl := listing.NewController(e.schema, apiclient.NewResource[T](a.client, e.name), params)
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("chargement des %s: %w", e.name, err)
	}
	applyQuery(ctrl, q)

	now := a.now()
	view := ctrl.View(now)

	fmt.Fprintln(a.out, titleStyle.Render(e.title))
	if n := ctrl.ActiveFiltersCount(); n > 0 {
		fmt.Fprintln(a.out, subtleStyle.Render(fmt.Sprintf("%d filtre(s) actif(s), %d sur %d enregistrement(s)",
			n, len(view.Records), len(ctrl.Records()))))
	}

	if len(view.Records) == 0 {
		fmt.Fprintln(a.out, subtleStyle.Render("Aucun enregistrement"))
		return nil
	}

	if q.GroupBy == "" {
		fmt.Fprintln(a.out, e.table(view.Records))
	} else {
		for _, g := range view.Groups {
			fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Records))))
			fmt.Fprintln(a.out, e.table(g.Records))
		}
	}

	if opts.stats {
		for _, key := range e.schema.BucketKeys() {
			if sum, ok := ctrl.Summary(now, key); ok {
				fmt.Fprintln(a.out, titleStyle.Render("Par "+key))
				fmt.Fprintln(a.out, e.summaryTable(sum))
			}
		}
	}
	return nil
}

func (e *entity[T, P]) table(records []T) string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = e.row(rec)
	}
	return renderTable(e.header(), rows, nil)
}

func (e *entity[T, P]) summaryTable(sum listview.Summary) string {
	financial := e.schema.HasFinancials()
	header := []string{"Libellé", "Nombre"}
	if financial {
		header = append(header, "Vente", "Achat", "Marge", "Marge %")
	}
	line := func(b listview.Bucket) []string {
		row := []string{b.Label, strconv.Itoa(b.Count)}
		if financial {
			row = append(row, b.Sale.StringFixed(2), b.Buy.StringFixed(2), b.Margin.StringFixed(2), b.MarginPct.StringFixed(2))
		}
		return row
	}
	rows := make([][]string, 0, len(sum.Buckets)+1)
	for _, b := range sum.Buckets {
		rows = append(rows, line(b))
	}
	total := sum.Total
	total.Label = "Total"
	rows = append(rows, line(total))
	return renderTable(header, rows, nil)
}
