// Package listing implements the list screen controller: it owns the user's
// search, filter, grouping and date-window choices and derives the displayed
// list from the last fetched records on demand.
package listing

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/erp/backoffice/internal/domain/listview"
)

// Page is one response of a list endpoint
type Page[T any] struct {
	Items  []T            `json:"items"`
	Totals map[string]int `json:"totals"`
}

// Source fetches the records of one entity
type Source[T any] interface {
	List(ctx context.Context, params url.Values) (Page[T], error)
}

// Controller is the list-state reducer of one entity screen.
// It is not safe for concurrent use.
type Controller[T any] struct {
	schema listview.Schema[T]
	source Source[T]
	params url.Values

	query listview.Query

	records    []T
	totals     map[string]int
	loading    bool
	refetching bool
	loaded     bool
}

// NewController creates a controller; params are sent with every fetch, e.g. format=stats
func NewController[T any](schema listview.Schema[T], source Source[T], params url.Values) *Controller[T] {
	if params == nil {
		params = url.Values{}
	}
	return &Controller[T]{
		schema: schema,
		source: source,
		params: params,
		query:  listview.Query{Filters: map[string]string{}},
	}
}

// Load performs the initial fetch
func (c *Controller[T]) Load(ctx context.Context) error {
	c.loading = true
	defer func() { c.loading = false }()
	return c.fetch(ctx)
}

// Refetch reloads the records, keeping every filter choice
func (c *Controller[T]) Refetch(ctx context.Context) error {
	if !c.loaded {
		return c.Load(ctx)
	}
	c.refetching = true
	defer func() { c.refetching = false }()
	return c.fetch(ctx)
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	page, err := c.source.List(ctx, c.params)
	if err != nil {
		return err
	}
	c.records = page.Items
	c.totals = page.Totals
	c.loaded = true
	return nil
}

// IsLoading reports whether the initial fetch is in flight
func (c *Controller[T]) IsLoading() bool { return c.loading }

// IsRefetching reports whether a reload is in flight
func (c *Controller[T]) IsRefetching() bool { return c.refetching }

// Records returns the last fetched records, unfiltered
func (c *Controller[T]) Records() []T { return c.records }

// Totals returns the server-computed counts of the last fetch
func (c *Controller[T]) Totals() map[string]int { return c.totals }

// Schema returns the field set the controller works on
func (c *Controller[T]) Schema() listview.Schema[T] { return c.schema }

// SetSearch sets the free-text query
func (c *Controller[T]) SetSearch(term string) {
	c.query.Search = term
}

// SetFilter selects value for a categorical field; an empty value clears it
func (c *Controller[T]) SetFilter(field, value string) {
	if value == "" {
		delete(c.query.Filters, field)
		return
	}
	c.query.Filters[field] = value
}

// ClearFilters resets search, filters and the date window. Grouping is kept.
func (c *Controller[T]) ClearFilters() {
	c.query.Search = ""
	c.query.Filters = map[string]string{}
	c.query.Window = listview.DateWindow{}
}

// SetGroupBy selects the group-by key; "" disables grouping
func (c *Controller[T]) SetGroupBy(key string) {
	c.query.GroupBy = key
}

// SetDateMode switches the date window mode. Switching to a different mode
// drops the month, year and range chosen under the previous one.
func (c *Controller[T]) SetDateMode(mode listview.WindowMode) {
	if mode == c.query.Window.Mode {
		return
	}
	c.query.Window = listview.DateWindow{Mode: mode}
}

// SetMonth sets the month of a specific-month window
func (c *Controller[T]) SetMonth(m time.Month) {
	c.query.Window.Month = m
}

// SetYear sets the year of a specific-month or specific-year window
func (c *Controller[T]) SetYear(year int) {
	c.query.Window.Year = year
}

// SetRange sets the bounds of a custom window; either side may be zero
func (c *Controller[T]) SetRange(start, end time.Time) {
	c.query.Window.Start = start
	c.query.Window.End = end
}

// Query returns a copy of the current choices
func (c *Controller[T]) Query() listview.Query {
	q := c.query
	q.Filters = make(map[string]string, len(c.query.Filters))
	for k, v := range c.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// ActiveFiltersCount counts the predicates currently restricting the list
func (c *Controller[T]) ActiveFiltersCount() int {
	return c.query.ActiveFilters()
}

// View derives the displayed list from the fetched records and the current
// choices. Nothing is cached: every call recomputes from scratch.
func (c *Controller[T]) View(now time.Time) listview.Result[T] {
	return listview.Apply(c.schema, c.records, c.Query(), now)
}

// Summary aggregates the currently displayed records by bucket key
func (c *Controller[T]) Summary(now time.Time, key string) (listview.Summary, bool) {
	return listview.SummarizeBy(c.schema, c.View(now).Records, key)
}

// FilterOptions lists the distinct values of field across the fetched records, sorted
func (c *Controller[T]) FilterOptions(field string) []string {
	get, ok := c.schema.Fields[field]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.records {
		v := get(r)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
