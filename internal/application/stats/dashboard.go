package stats

import (
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Definition declares what the dashboard of one entity shows
type Definition[T any] struct {
	Schema   listview.Schema[T]
	Statuses shared.StatusTable
	// StatusKey names the schema bucket carrying the status code
	StatusKey string
	// Breakdowns are schema bucket keys summarized in addition to the status
	Breakdowns []string
	// Titles maps bucket keys to chart titles
	Titles map[string]string
	// Months is the length of the monthly creation series; 0 disables it
	Months int
}

// Dashboard is the statistics page of one entity
type Dashboard struct {
	Entity       string                      `json:"entity"`
	Total        int                         `json:"total"`
	StatusCounts map[string]int              `json:"status_counts"`
	Summaries    map[string]listview.Summary `json:"summaries"`
	Charts       []Chart                     `json:"charts"`
}

// StatusCodes returns the codes of table as bucket keys
func StatusCodes(table shared.StatusTable) []string {
	codes := table.Codes()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

// Build computes the dashboard of records
func Build[T any](def Definition[T], records []T, now time.Time, theme Theme) Dashboard {
	d := Dashboard{
		Entity:    def.Schema.Entity,
		Total:     len(records),
		Summaries: make(map[string]listview.Summary),
	}

	if key, ok := def.Schema.Buckets[def.StatusKey]; ok {
		d.StatusCounts = listview.CountBy(records, key, StatusCodes(def.Statuses))
		d.Charts = append(d.Charts, StatusChart(def.title(def.StatusKey, "Répartition par statut"), def.Statuses, d.StatusCounts, theme))
	}

	keys := append([]string{def.StatusKey}, def.Breakdowns...)
	for _, key := range keys {
		sum, ok := listview.SummarizeBy(def.Schema, records, key)
		if !ok {
			continue
		}
		d.Summaries[key] = sum
		if key == def.StatusKey && !def.Schema.HasFinancials() {
			continue
		}
		title := def.title(key, key)
		if def.Schema.HasFinancials() {
			d.Charts = append(d.Charts, SummaryChart(key, title, sum, theme))
		} else {
			d.Charts = append(d.Charts, CountChart(key, title, sum, theme))
		}
	}

	if def.Months > 0 && def.Schema.Date != nil {
		d.Charts = append(d.Charts, MonthlyChart("Créations par mois", records, def.Schema.Date, now, def.Months, theme))
	}
	return d
}

func (def Definition[T]) title(key, fallback string) string {
	if t, ok := def.Titles[key]; ok {
		return t
	}
	return fallback
}
