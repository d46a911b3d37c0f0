package listview

import (
	"fmt"
	"strings"
	"time"
)

// WindowMode selects how a DateWindow is interpreted
type WindowMode string

const (
	WindowNone      WindowMode = ""
	WindowToday     WindowMode = "today"
	WindowLast7Days WindowMode = "week"
	WindowThisMonth WindowMode = "month"
	WindowMonth     WindowMode = "specific_month"
	WindowYear      WindowMode = "specific_year"
	WindowCustom    WindowMode = "custom"
)

// ParseWindowMode validates a raw mode string
func ParseWindowMode(raw string) (WindowMode, error) {
	mode := WindowMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case WindowNone, WindowToday, WindowLast7Days, WindowThisMonth, WindowMonth, WindowYear, WindowCustom:
		return mode, nil
	default:
		return WindowNone, fmt.Errorf("unknown date window %q", raw)
	}
}

// DateWindow restricts records to a time range relative to a reference "now"
type DateWindow struct {
	Mode  WindowMode
	Month time.Month // WindowMonth
	Year  int        // WindowMonth and WindowYear; 0 means the year of now
	Start time.Time  // WindowCustom, day precision
	End   time.Time  // WindowCustom, day precision
}

// Active reports whether the window restricts anything
func (w DateWindow) Active() bool {
	switch w.Mode {
	case WindowToday, WindowLast7Days, WindowThisMonth, WindowYear:
		return true
	case WindowMonth:
		return w.Month >= time.January && w.Month <= time.December
	case WindowCustom:
		return !w.Start.IsZero() || !w.End.IsZero()
	default:
		return false
	}
}

// Bounds returns the inclusive range for the window evaluated at now.
// A zero start or end means the side is unbounded.
func (w DateWindow) Bounds(now time.Time) (start, end time.Time, ok bool) {
	if !w.Active() {
		return time.Time{}, time.Time{}, false
	}
	loc := now.Location()
	today := startOfDay(now)

	switch w.Mode {
	case WindowToday:
		return today, endOfDay(today), true
	case WindowLast7Days:
		return today.AddDate(0, 0, -7), now, true
	case WindowThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), now, true
	case WindowMonth:
		year := w.yearOr(now)
		first := time.Date(year, w.Month, 1, 0, 0, 0, 0, loc)
		last := first.AddDate(0, 1, -1)
		return first, endOfDay(last), true
	case WindowYear:
		year := w.yearOr(now)
		first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return first, endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, loc)), true
	case WindowCustom:
		if !w.Start.IsZero() {
			start = startOfDay(w.Start.In(loc))
		}
		if !w.End.IsZero() {
			end = endOfDay(startOfDay(w.End.In(loc)))
		}
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

// Contains reports whether t falls inside the window evaluated at now.
// An inactive window contains everything; a zero t is never inside an active one.
func (w DateWindow) Contains(t, now time.Time) bool {
	start, end, ok := w.Bounds(now)
	if !ok {
		return true
	}
	if t.IsZero() {
		return false
	}
	if w.Mode == WindowToday {
		return startOfDay(t.In(now.Location())).Equal(start)
	}
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

func (w DateWindow) yearOr(now time.Time) int {
	if w.Year > 0 {
		return w.Year
	}
	return now.Year()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay is the last nanosecond of the day starting at day
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
