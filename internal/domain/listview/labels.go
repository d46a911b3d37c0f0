package listview

import (
	"fmt"
	"time"
)

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the French name of m
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return frenchMonths[m-1]
}

// MonthLabel renders t as "Mois Année", the label used by creation-date groupings
func MonthLabel(t time.Time) string {
	if t.IsZero() {
		return "Sans date"
	}
	return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
}

// MonthKey renders t as a sortable "YYYY-MM" key
func MonthKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01")
}
