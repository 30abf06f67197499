// Package analytics projects the attempt history into activity series, the current
// day streak and achievement unlock state. Every function is a pure projection over
// the full history; nothing is cached between calls.
//
// Day boundaries follow the location of the reference instant passed as now: an
// attempt belongs to the calendar day its timestamp falls on in that location.
package analytics

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// startOfWeek returns the Monday on or before t.
func startOfWeek(t time.Time, loc *time.Location) time.Time {
	day := startOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func dayLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}
