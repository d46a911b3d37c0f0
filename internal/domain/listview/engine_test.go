package listview

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tenderRow struct {
	Ref     string
	Title   string
	Partner string
	Status  string
	Type    string
	Created time.Time
	Sale    float64
	Buy     float64
}

func rowSchema() Schema[tenderRow] {
	return Schema[tenderRow]{
		Entity: "tenders",
		Search: []Accessor[tenderRow]{
			func(r tenderRow) string { return r.Ref },
			func(r tenderRow) string { return r.Title },
			func(r tenderRow) string { return r.Partner },
		},
		Fields: map[string]Accessor[tenderRow]{
			"status": func(r tenderRow) string { return r.Status },
			"type":   func(r tenderRow) string { return r.Type },
		},
		Date: func(r tenderRow) time.Time { return r.Created },
		GroupBy: map[string]Accessor[tenderRow]{
			"status": func(r tenderRow) string { return "S" + r.Status },
			"month":  func(r tenderRow) string { return MonthLabel(r.Created) },
		},
		Buckets: map[string]Accessor[tenderRow]{
			"status": func(r tenderRow) string { return r.Status },
		},
		Sale: func(r tenderRow) decimal.Decimal { return decimal.NewFromFloat(r.Sale) },
		Buy:  func(r tenderRow) decimal.Decimal { return decimal.NewFromFloat(r.Buy) },
	}
}

var refNow = time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)

func sampleRows() []tenderRow {
	return []tenderRow{
		{Ref: "AO-1", Title: "Alpha", Partner: "Société Générale", Status: "0", Type: "public", Created: refNow},
		{Ref: "AO-2", Title: "Beta", Partner: "Orange", Status: "1", Type: "private", Created: refNow.AddDate(0, 0, -3)},
		{Ref: "AO-3", Title: "Gamma", Partner: "Étude Martin", Status: "0", Type: "private", Created: refNow.AddDate(0, -1, 0)},
		{Ref: "AO-4", Title: "Delta alpha", Partner: "Orange", Status: "4", Type: "public", Created: refNow.AddDate(-1, 0, 0)},
	}
}

func refs(rows []tenderRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ref
	}
	return out
}

func TestFilter_Search(t *testing.T) {
	schema := rowSchema()

	t.Run("case-insensitive match on any search field", func(t *testing.T) {
		rows := []tenderRow{{Ref: "AO-1", Title: "Alpha"}, {Ref: "AO-2", Title: "Beta"}}
		got := Filter(schema, rows, Query{Search: "alpha"}, refNow)
		assert.Equal(t, []string{"AO-1"}, refs(got))
	})

	t.Run("matches counterparty name with accents folded by case", func(t *testing.T) {
		got := Filter(schema, sampleRows(), Query{Search: "ÉTUDE"}, refNow)
		assert.Equal(t, []string{"AO-3"}, refs(got))
	})

	t.Run("blank query keeps everything in order", func(t *testing.T) {
		got := Filter(schema, sampleRows(), Query{Search: "   "}, refNow)
		assert.Equal(t, []string{"AO-1", "AO-2", "AO-3", "AO-4"}, refs(got))
	})

	t.Run("substring of any field", func(t *testing.T) {
		got := Filter(schema, sampleRows(), Query{Search: "alpha"}, refNow)
		assert.Equal(t, []string{"AO-1", "AO-4"}, refs(got))
	})
}

func TestFilter_Conjunction(t *testing.T) {
	schema := rowSchema()

	got := Filter(schema, sampleRows(), Query{
		Search:  "orange",
		Filters: map[string]string{"type": "public"},
	}, refNow)
	assert.Equal(t, []string{"AO-4"}, refs(got))

	got = Filter(schema, sampleRows(), Query{
		Filters: map[string]string{"status": "0", "type": "private"},
	}, refNow)
	assert.Equal(t, []string{"AO-3"}, refs(got))

	t.Run("empty filter values are inactive", func(t *testing.T) {
		got := Filter(schema, sampleRows(), Query{Filters: map[string]string{"status": ""}}, refNow)
		assert.Len(t, got, 4)
	})

	t.Run("unknown filter fields are ignored", func(t *testing.T) {
		got := Filter(schema, sampleRows(), Query{Filters: map[string]string{"nope": "x"}}, refNow)
		assert.Len(t, got, 4)
	})
}

func TestFilter_Idempotent(t *testing.T) {
	schema := rowSchema()
	queries := []Query{
		{Search: "a"},
		{Filters: map[string]string{"status": "0"}},
		{Window: DateWindow{Mode: WindowThisMonth}},
		{Search: "o", Filters: map[string]string{"type": "public"}, Window: DateWindow{Mode: WindowYear, Year: 2025}},
	}
	for _, q := range queries {
		once := Filter(schema, sampleRows(), q, refNow)
		twice := Filter(schema, once, q, refNow)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("filter not idempotent for %+v (-once +twice):\n%s", q, diff)
		}
		again := Filter(schema, sampleRows(), q, refNow)
		assert.True(t, cmp.Equal(once, again), "same inputs must give same output")
	}
}

func TestGroupRecords(t *testing.T) {
	schema := rowSchema()

	t.Run("no selector yields one unlabeled bucket", func(t *testing.T) {
		filtered := Filter(schema, sampleRows(), Query{Search: "a"}, refNow)
		groups := GroupRecords(schema, filtered, "")
		require.Len(t, groups, 1)
		assert.Equal(t, "", groups[0].Label)
		assert.Equal(t, refs(filtered), refs(groups[0].Records))
	})

	t.Run("unknown selector behaves like none", func(t *testing.T) {
		groups := GroupRecords(schema, sampleRows(), "colour")
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Records, 4)
	})

	t.Run("groups by label in first-appearance order", func(t *testing.T) {
		groups := GroupRecords(schema, sampleRows(), "status")
		require.Len(t, groups, 3)
		assert.Equal(t, "S0", groups[0].Label)
		assert.Equal(t, []string{"AO-1", "AO-3"}, refs(groups[0].Records))
		assert.Equal(t, "S1", groups[1].Label)
		assert.Equal(t, "S4", groups[2].Label)
	})

	t.Run("month labels are localized", func(t *testing.T) {
		groups := GroupRecords(schema, sampleRows(), "month")
		labels := make([]string, len(groups))
		for i, g := range groups {
			labels[i] = g.Label
		}
		assert.Equal(t, []string{"Mars 2026", "Février 2026", "Mars 2025"}, labels)
	})
}

func TestApply(t *testing.T) {
	schema := rowSchema()
	res := Apply(schema, sampleRows(), Query{
		Search:  "a",
		Filters: map[string]string{"status": "0", "type": ""},
		Window:  DateWindow{Mode: WindowYear},
		GroupBy: "status",
	}, refNow)

	assert.Equal(t, []string{"AO-1", "AO-3"}, refs(res.Records))
	assert.Equal(t, 3, res.ActiveFilters)
	assert.Equal(t, map[string][]tenderRow{"S0": res.Records}, res.GroupedMap())
}
