package bills

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Kolkata must resolve on hosts without a zoneinfo database

	"github.com/araddon/dateparse"
)

// DefaultZone is the zone the source spreadsheet displays its dates in.
const DefaultZone = "Asia/Kolkata"

// Date is a calendar date without a zone. Values of this type are taken as-is
// by ParseDate, whereas time.Time values are converted to the report zone first.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date at midnight UTC, the representation used by Entry.
func (d Date) Time() time.Time { return civil(d.Year, d.Month, d.Day) }

// explicitLayouts are tried after the flexible parser; each is read as a naive date.
var explicitLayouts = []string{
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	isoLayout,
}

// ParseDate turns a raw cell into the calendar date a reader of the sheet sees
// in loc. The returned time is midnight UTC of that date; ok is false when
// nothing could be parsed.
func ParseDate(v any, loc *time.Location) (d time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case Date:
		return x.Time(), true
	case *Date:
		if x == nil {
			return time.Time{}, false
		}
		return x.Time(), true
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return dateOf(x.In(loc)), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return dateOf(x.In(loc)), true
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return time.Time{}, false
	}

	// Strings without a zone are read as UTC. Converting to loc rolls late
	// evening UTC timestamps over to the next day, as the sheet displays them.
	if t, err := flexibleParse(s); err == nil {
		return dateOf(t.In(loc)), true
	}

	for _, layout := range explicitLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), true
		}
	}

	if prefix, _, found := strings.Cut(s, "T"); found {
		if t, err := time.Parse(isoLayout, prefix); err == nil {
			return dateOf(t), true
		}
	}
	return time.Time{}, false
}

func flexibleParse(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dateparse %q: %v", s, r)
		}
	}()
	return dateparse.ParseIn(s, time.UTC)
}

// WeekStart returns the Monday on or before d. Sundays belong to the week that
// started six days earlier.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Saturday closing the week that starts on start.
func WeekEnd(start time.Time) time.Time { return start.AddDate(0, 0, 5) }

// MonthLabel returns the "January 2006" label of d.
func MonthLabel(d time.Time) string { return d.Format(monthLayout) }

// MonthBounds returns the first and last calendar day of a "January 2006" label.
func MonthBounds(label string) (first, last time.Time, err error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse month %q: %w", label, err)
	}
	first = civil(t.Year(), t.Month(), 1)
	// day 28 + 4 days always lands in the next month
	next := first.AddDate(0, 0, 27+4)
	next = civil(next.Year(), next.Month(), 1)
	return first, next.AddDate(0, 0, -1), nil
}

func civil(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func dateOf(t time.Time) time.Time { return civil(t.Year(), t.Month(), t.Day()) }
