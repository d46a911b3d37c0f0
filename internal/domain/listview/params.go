package listview

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Query string keys of list endpoints
const (
	ParamSearch   = "search"
	ParamDateMode = "date_mode"
	ParamMonth    = "month"
	ParamYear     = "year"
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamGroupBy  = "group_by"
)

// DayLayout is the wire format of custom window bounds
const DayLayout = "2006-01-02"

const filterPrefix = "filter["

// FilterParam returns the query key carrying the filter on field
func FilterParam(field string) string {
	return filterPrefix + field + "]"
}

// ParseQuery reads a Query from URL parameters. Unknown keys are ignored.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Search:  strings.TrimSpace(values.Get(ParamSearch)),
		Filters: map[string]string{},
		GroupBy: strings.TrimSpace(values.Get(ParamGroupBy)),
	}
	for key, vals := range values {
		if !strings.HasPrefix(key, filterPrefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		field := key[len(filterPrefix) : len(key)-1]
		if field == "" || len(vals) == 0 || vals[0] == "" {
			continue
		}
		q.Filters[field] = vals[0]
	}

	mode, err := ParseWindowMode(values.Get(ParamDateMode))
	if err != nil {
		return Query{}, err
	}
	q.Window.Mode = mode

	if raw := values.Get(ParamMonth); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return Query{}, fmt.Errorf("month must be between 1 and 12, got %q", raw)
		}
		q.Window.Month = time.Month(m)
	}
	if raw := values.Get(ParamYear); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			return Query{}, fmt.Errorf("invalid year %q", raw)
		}
		q.Window.Year = y
	}
	if q.Window.Start, err = parseDay(values.Get(ParamStart)); err != nil {
		return Query{}, err
	}
	if q.Window.End, err = parseDay(values.Get(ParamEnd)); err != nil {
		return Query{}, err
	}
	if !q.Window.Start.IsZero() && !q.Window.End.IsZero() && q.Window.End.Before(q.Window.Start) {
		return Query{}, fmt.Errorf("end %s precedes start %s", values.Get(ParamEnd), values.Get(ParamStart))
	}
	return q, nil
}

// Values encodes the query back into URL parameters; empty parts are omitted
func (q Query) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set(ParamSearch, s)
	}
	fields := make([]string, 0, len(q.Filters))
	for f := range q.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if q.Filters[f] != "" {
			v.Set(FilterParam(f), q.Filters[f])
		}
	}
	if q.GroupBy != "" {
		v.Set(ParamGroupBy, q.GroupBy)
	}

	w := q.Window
	if w.Mode == WindowNone {
		return v
	}
	v.Set(ParamDateMode, string(w.Mode))
	if w.Month != 0 {
		v.Set(ParamMonth, strconv.Itoa(int(w.Month)))
	}
	if w.Year != 0 {
		v.Set(ParamYear, strconv.Itoa(w.Year))
	}
	if !w.Start.IsZero() {
		v.Set(ParamStart, w.Start.Format(DayLayout))
	}
	if !w.End.IsZero() {
		v.Set(ParamEnd, w.End.Format(DayLayout))
	}
	return v
}

func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DayLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
