// Package listview derives the read model shown by every list screen:
// search, categorical filters, a date window, grouping and aggregates,
// computed from scratch over an in-memory record set.
package listview

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Accessor extracts one textual value from a record
type Accessor[T any] func(T) string

// Amount extracts one monetary value from a record
type Amount[T any] func(T) decimal.Decimal

// Schema declares the field set the engine works on for one entity
type Schema[T any] struct {
	// Entity is the resource key, e.g. "cotations"
	Entity string
	// Search lists the fields a free-text query is tested against
	Search []Accessor[T]
	// Fields are the categorical fields available to exact-match filters
	Fields map[string]Accessor[T]
	// Date is the field date windows apply to; nil disables windows
	Date func(T) time.Time
	// GroupBy maps a selector to a label function
	GroupBy map[string]Accessor[T]
	// Buckets maps an aggregate key to a bucket function returning the bucket key
	Buckets map[string]Accessor[T]
	// BucketLabel optionally renders a bucket key for display
	BucketLabel map[string]func(string) string
	// Sale and Buy are set for entities carrying financial fields
	Sale Amount[T]
	Buy  Amount[T]
}

// HasFinancials reports whether sums and margins can be computed
func (s Schema[T]) HasFinancials() bool {
	return s.Sale != nil && s.Buy != nil
}

// GroupKeys returns the available group-by selectors, sorted
func (s Schema[T]) GroupKeys() []string {
	return sortedKeys(s.GroupBy)
}

// FilterKeys returns the available filter fields, sorted
func (s Schema[T]) FilterKeys() []string {
	return sortedKeys(s.Fields)
}

// BucketKeys returns the available aggregate keys, sorted
func (s Schema[T]) BucketKeys() []string {
	return sortedKeys(s.Buckets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
