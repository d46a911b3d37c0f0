package shared

import (
	"sort"
	"strconv"
)

// Status is a closed lifecycle enumeration value
type Status int

// String renders the numeric code, which is also its wire form
func (s Status) String() string {
	return strconv.Itoa(int(s))
}

// ParseStatus parses a numeric status code
func ParseStatus(raw string) (Status, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewDomainError("INVALID_STATUS", "Status must be a numeric code")
	}
	return Status(n), nil
}

// StatusInfo is the presentation data for one status code
type StatusInfo struct {
	Code  Status `json:"code"`
	Label string `json:"label"`
	Class string `json:"class"`
	Color string `json:"color"`
}

// StatusTable maps the codes of one entity to labels and styles.
// Both table cells and detail views read from the same table.
type StatusTable struct {
	entries  map[Status]StatusInfo
	fallback StatusInfo
}

// NewStatusTable builds a table; unknown codes resolve to the fallback entry
func NewStatusTable(fallback StatusInfo, entries ...StatusInfo) StatusTable {
	m := make(map[Status]StatusInfo, len(entries))
	for _, e := range entries {
		m[e.Code] = e
	}
	return StatusTable{entries: m, fallback: fallback}
}

// Lookup returns the entry for code, or the fallback carrying the code
func (t StatusTable) Lookup(code Status) StatusInfo {
	if info, ok := t.entries[code]; ok {
		return info
	}
	info := t.fallback
	info.Code = code
	return info
}

// Label is a shorthand for Lookup(code).Label
func (t StatusTable) Label(code Status) string {
	return t.Lookup(code).Label
}

// Has reports whether code is a member of the enumeration
func (t StatusTable) Has(code Status) bool {
	_, ok := t.entries[code]
	return ok
}

// Codes returns the enumerated codes in ascending order
func (t StatusTable) Codes() []Status {
	codes := make([]Status, 0, len(t.entries))
	for c := range t.entries {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Entries returns the enumerated entries in ascending code order
func (t StatusTable) Entries() []StatusInfo {
	codes := t.Codes()
	out := make([]StatusInfo, len(codes))
	for i, c := range codes {
		out[i] = t.entries[c]
	}
	return out
}

// BinaryTable is the shared table for 0/1 flags such as visibility
func BinaryTable(off, on string) StatusTable {
	return NewStatusTable(
		StatusInfo{Label: "Inconnu", Class: "badge-secondary", Color: "#9ca3af"},
		StatusInfo{Code: 0, Label: off, Class: "badge-danger", Color: "#ef4444"},
		StatusInfo{Code: 1, Label: on, Class: "badge-success", Color: "#22c55e"},
	)
}

// LabelOf resolves a textual code, as carried by filters and aggregate buckets
func (t StatusTable) LabelOf(code string) string {
	s, err := ParseStatus(code)
	if err != nil {
		return t.fallback.Label
	}
	return t.Label(s)
}
