package listview

import (
	"github.com/shopspring/decimal"
)

// TotalKey is the key of the bucket summing across every other bucket
const TotalKey = "total"

var hundred = decimal.NewFromInt(100)

// Bucket is the aggregate of one partition of records
type Bucket struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Count     int             `json:"count"`
	Sale      decimal.Decimal `json:"sale"`
	Buy       decimal.Decimal `json:"buy"`
	Margin    decimal.Decimal `json:"margin"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

func (b *Bucket) add(sale, buy decimal.Decimal) {
	b.Count++
	b.Sale = b.Sale.Add(sale)
	b.Buy = b.Buy.Add(buy)
}

func (b *Bucket) finish() {
	b.Margin = b.Sale.Sub(b.Buy)
	b.MarginPct = MarginPercent(b.Sale, b.Margin)
}

// Summary holds per-bucket aggregates in first-appearance order plus the total
type Summary struct {
	Buckets []Bucket `json:"buckets"`
	Total   Bucket   `json:"total"`
}

// MarginPercent returns margin/sale as a percentage rounded to two places,
// or zero when sale is zero.
func MarginPercent(sale, margin decimal.Decimal) decimal.Decimal {
	if sale.IsZero() {
		return decimal.Zero
	}
	return margin.Div(sale).Mul(hundred).Round(2)
}

// CountBy counts records per key. Every code in codes is present in the
// result even when no record carries it.
func CountBy[T any](records []T, key Accessor[T], codes []string) map[string]int {
	counts := make(map[string]int, len(codes))
	for _, c := range codes {
		counts[c] = 0
	}
	for _, rec := range records {
		counts[key(rec)]++
	}
	return counts
}

// Summarize aggregates records per bucket key. sale and buy may be nil for
// entities without financial fields, in which case only counts are filled.
func Summarize[T any](records []T, key Accessor[T], label func(string) string, sale, buy Amount[T]) Summary {
	index := make(map[string]int)
	var buckets []Bucket
	total := Bucket{Key: TotalKey, Label: "Total"}

	for _, rec := range records {
		k := key(rec)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			l := k
			if label != nil {
				l = label(k)
			}
			buckets = append(buckets, Bucket{Key: k, Label: l})
		}
		s, b := decimal.Zero, decimal.Zero
		if sale != nil {
			s = sale(rec)
		}
		if buy != nil {
			b = buy(rec)
		}
		buckets[i].add(s, b)
		total.add(s, b)
	}

	for i := range buckets {
		buckets[i].finish()
	}
	total.finish()
	return Summary{Buckets: buckets, Total: total}
}

// SummarizeBy runs Summarize with the schema's bucket function named key.
// The second result is false when the schema has no such bucket.
func SummarizeBy[T any](schema Schema[T], records []T, key string) (Summary, bool) {
	fn, ok := schema.Buckets[key]
	if !ok {
		return Summary{}, false
	}
	return Summarize(records, fn, schema.BucketLabel[key], schema.Sale, schema.Buy), true
}
