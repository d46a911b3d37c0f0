package stats

import (
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Chart kinds
const (
	KindDoughnut = "doughnut"
	KindBar      = "bar"
	KindLine     = "line"
)

// Dataset is one series of values
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

// Chart is renderer-agnostic chart input
type Chart struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Kind     string    `json:"kind"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Palette  Palette   `json:"palette"`
}

// StatusChart renders status counts in the order and colors of the status table.
// On the dark theme the table colors are kept; only the frame follows the palette.
func StatusChart(title string, table shared.StatusTable, counts map[string]int, theme Theme) Chart {
	entries := table.Entries()
	ds := Dataset{Label: title}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
		ds.Data = append(ds.Data, float64(counts[e.Code.String()]))
		ds.Colors = append(ds.Colors, e.Color)
	}
	return Chart{
		Key:      "status",
		Title:    title,
		Kind:     KindDoughnut,
		Labels:   labels,
		Datasets: []Dataset{ds},
		Palette:  PaletteFor(theme),
	}
}

// SummaryChart renders a financial summary as sale, buy and margin bars per bucket
func SummaryChart(key, title string, sum listview.Summary, theme Theme) Chart {
	pal := PaletteFor(theme)
	sale := Dataset{Label: "Vente", Colors: []string{pal.SeriesColor(0)}}
	buy := Dataset{Label: "Achat", Colors: []string{pal.SeriesColor(1)}}
	margin := Dataset{Label: "Marge", Colors: []string{pal.SeriesColor(2)}}

	labels := make([]string, 0, len(sum.Buckets))
	for _, b := range sum.Buckets {
		labels = append(labels, b.Label)
		sale.Data = append(sale.Data, b.Sale.InexactFloat64())
		buy.Data = append(buy.Data, b.Buy.InexactFloat64())
		margin.Data = append(margin.Data, b.Margin.InexactFloat64())
	}
	return Chart{
		Key:      key,
		Title:    title,
		Kind:     KindBar,
		Labels:   labels,
		Datasets: []Dataset{sale, buy, margin},
		Palette:  pal,
	}
}

// CountChart renders bucket counts as a single bar series
func CountChart(key, title string, sum listview.Summary, theme Theme) Chart {
	pal := PaletteFor(theme)
	ds := Dataset{Label: title}
	labels := make([]string, 0, len(sum.Buckets))
	for i, b := range sum.Buckets {
		labels = append(labels, b.Label)
		ds.Data = append(ds.Data, float64(b.Count))
		ds.Colors = append(ds.Colors, pal.SeriesColor(i))
	}
	return Chart{Key: key, Title: title, Kind: KindBar, Labels: labels, Datasets: []Dataset{ds}, Palette: pal}
}

// MonthlySeries counts records per calendar month over the months ending at now.
// Records without a date or outside the range are ignored.
func MonthlySeries[T any](records []T, date func(T) time.Time, now time.Time, months int) ([]string, []float64) {
	if months <= 0 {
		return nil, nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	labels := make([]string, months)
	values := make([]float64, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		labels[i] = listview.MonthLabel(m)
		index[listview.MonthKey(m)] = i
	}
	for _, r := range records {
		t := date(r)
		if t.IsZero() {
			continue
		}
		if i, ok := index[listview.MonthKey(t.In(now.Location()))]; ok {
			values[i]++
		}
	}
	return labels, values
}

// MonthlyChart renders MonthlySeries as a line chart
func MonthlyChart[T any](title string, records []T, date func(T) time.Time, now time.Time, months int, theme Theme) Chart {
	pal := PaletteFor(theme)
	labels, values := MonthlySeries(records, date, now, months)
	return Chart{
		Key:      "monthly",
		Title:    title,
		Kind:     KindLine,
		Labels:   labels,
		Datasets: []Dataset{{Label: title, Data: values, Colors: []string{pal.SeriesColor(0)}}},
		Palette:  pal,
	}
}
