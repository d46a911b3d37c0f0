package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/application/stats"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		opts  listOptions
		theme string
	)
	cmd := &cobra.Command{
		Use:     "stats <entité>",
		Short:   "Afficher le tableau de bord d'une entité",
		Example: `  backoffice stats cotations --date-mode specific_year --year 2026`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			return e.Stats(cmd.Context(), a, opts, theme)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&theme, "theme", "light", "palette des graphiques: light ou dark")
	return cmd
}

func (e *entity[T, P]) Stats(ctx context.Context, a *app, opts listOptions, theme string) error {
	q, err := opts.query()
	if err != nil {
		return err
	}
	th, err := stats.ParseTheme(theme)
	if err != nil {
		return err
	}
	d, err := apiclient.NewResource[T](a.client, e.name).Dashboard(ctx, q.Values(), th)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("%s: %d enregistrement(s)", e.title, d.Total)))
	if len(d.StatusCounts) > 0 {
		codes := make([]string, 0, len(d.StatusCounts))
		for code := range d.StatusCounts {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool {
			x, _ := strconv.Atoi(codes[i])
			y, _ := strconv.Atoi(codes[j])
			return x < y
		})
		rows := make([][]string, len(codes))
		for i, code := range codes {
			s, _ := shared.ParseStatus(code)
			rows[i] = []string{e.statuses.Label(s), strconv.Itoa(d.StatusCounts[code])}
		}
		fmt.Fprintln(a.out, renderTable([]string{"Statut", "Nombre"}, rows, nil))
	}

	keys := make([]string, 0, len(d.Summaries))
	for key := range d.Summaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintln(a.out, titleStyle.Render("Par "+key))
		fmt.Fprintln(a.out, e.summaryTable(d.Summaries[key]))
	}

	for _, c := range d.Charts {
		fmt.Fprintln(a.out, titleStyle.Render(c.Title))
		fmt.Fprint(a.out, bars(c))
	}
	return nil
}

// bars draws the first dataset of a chart as horizontal bars
func bars(c stats.Chart) string {
	if len(c.Datasets) == 0 {
		return ""
	}
	data := c.Datasets[0].Data
	peak := 0.0
	width := 0
	for i, v := range data {
		peak = max(peak, v)
		if i < len(c.Labels) {
			width = max(width, len([]rune(c.Labels[i])))
		}
	}
	var b strings.Builder
	for i, v := range data {
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		n := 0
		if peak > 0 {
			n = int(v / peak * 30)
		}
		fmt.Fprintf(&b, "  %-*s %s %s\n", width, label, strings.Repeat("█", n), strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.String()
}

func newExportCmd(a *app) *cobra.Command {
	var (
		opts listOptions
		out  string
	)
	cmd := &cobra.Command{
		Use:     "export <entité>",
		Short:   "Exporter la liste filtrée en classeur .xlsx",
		Example: `  backoffice export partners --filter status=1 -o partenaires.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			q, err := opts.query()
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s-%s.xlsx", e.Name(), a.now().Format("20060102"))
			}
			data, err := apiclient.NewResource[struct{}](a.client, e.Name()).Export(cmd.Context(), q.Values())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("écriture de %s: %w", out, err)
			}
			notifier{out: a.out, log: a.log}.Success("Export enregistré dans " + out)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "fichier de sortie")
	return cmd
}
