package listview

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Query is the full set of user-chosen list inputs
type Query struct {
	Search  string
	Filters map[string]string
	Window  DateWindow
	GroupBy string
}

// ActiveFilters counts the predicates that currently restrict the list
func (q Query) ActiveFilters() int {
	n := 0
	if strings.TrimSpace(q.Search) != "" {
		n++
	}
	for _, v := range q.Filters {
		if v != "" {
			n++
		}
	}
	if q.Window.Active() {
		n++
	}
	return n
}

// Group is one labeled partition of the filtered records
type Group[T any] struct {
	Label   string `json:"label"`
	Records []T    `json:"items"`
}

// Result is the derived read model of one list screen
type Result[T any] struct {
	Records       []T
	Groups        []Group[T]
	ActiveFilters int
}

// GroupedMap returns the groups keyed by label
func (r Result[T]) GroupedMap() map[string][]T {
	m := make(map[string][]T, len(r.Groups))
	for _, g := range r.Groups {
		m[g.Label] = g.Records
	}
	return m
}

// Apply filters then groups records. It has no side effects and the
// output depends only on its inputs.
func Apply[T any](schema Schema[T], records []T, q Query, now time.Time) Result[T] {
	filtered := Filter(schema, records, q, now)
	return Result[T]{
		Records:       filtered,
		Groups:        GroupRecords(schema, filtered, q.GroupBy),
		ActiveFilters: q.ActiveFilters(),
	}
}

// Filter keeps the records matching every active predicate, in input order
func Filter[T any](schema Schema[T], records []T, q Query, now time.Time) []T {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	type fieldFilter struct {
		get   Accessor[T]
		value string
	}
	var filters []fieldFilter
	for name, value := range q.Filters {
		if value == "" {
			continue
		}
		if get, ok := schema.Fields[name]; ok {
			filters = append(filters, fieldFilter{get: get, value: value})
		}
	}

	useWindow := schema.Date != nil && q.Window.Active()

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if needle != "" && !matchesSearch(fold, schema.Search, rec, needle) {
			continue
		}
		matched := true
		for _, f := range filters {
			if f.get(rec) != f.value {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if useWindow && !q.Window.Contains(schema.Date(rec), now) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch[T any](fold cases.Caser, fields []Accessor[T], rec T, needle string) bool {
	for _, get := range fields {
		if strings.Contains(fold.String(get(rec)), needle) {
			return true
		}
	}
	return false
}

// GroupRecords partitions records by the label of the selected group key.
// Without a known selector the single group is labeled "" and holds every record.
// Groups are ordered by first appearance.
func GroupRecords[T any](schema Schema[T], records []T, groupBy string) []Group[T] {
	keyFn, ok := schema.GroupBy[groupBy]
	if groupBy == "" || !ok {
		return []Group[T]{{Label: "", Records: records}}
	}

	index := make(map[string]int)
	var groups []Group[T]
	for _, rec := range records {
		label := keyFn(rec)
		i, seen := index[label]
		if !seen {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group[T]{Label: label})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}
