package bills

import (
	"errors"
	"fmt"
	"sort"
	"time"

	lo "github.com/samber/lo"
)

var (
	// ErrUnknownMonth is returned by Render for a month with no data.
	ErrUnknownMonth = errors.New("unknown month")
	// ErrNoEntries is returned by Render when the filter leaves nothing to print.
	ErrNoEntries = errors.New("no entries for selection")
)

// Render is FilterAndAssign for callers that need a non-empty result, such
// as document export.
func Render(months Months, month, faculty string) ([]RenderedWeek, error) {
	if _, ok := months[month]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonth, month)
	}
	weeks := FilterAndAssign(months, month, faculty)
	if len(weeks) == 0 {
		return nil, fmt.Errorf("%w: %s / %s", ErrNoEntries, month, faculty)
	}
	return weeks, nil
}

// FilterAndAssign selects the weeks of month, keeps the entries inside the
// month that belong to faculty (AllFaculty keeps everyone), clips each week's
// display range to the month and numbers the result: weeks 1..n by display
// start, entries 1..m across the whole month by date and diary number.
//
// An unknown month yields an empty slice. months is not modified; the
// returned entries are copies.
func FilterAndAssign(months Months, month, faculty string) []RenderedWeek {
	weeks, ok := months[month]
	if !ok {
		return []RenderedWeek{}
	}
	first, last, err := MonthBounds(month)
	if err != nil {
		return []RenderedWeek{}
	}

	rendered := make([]RenderedWeek, 0, len(weeks))
	for _, w := range weeks {
		kept := lo.Filter(w.Entries, func(e Entry, _ int) bool {
			if e.Date.Before(first) || e.Date.After(last) {
				return false
			}
			return faculty == AllFaculty || e.FacultyName == faculty
		})
		if len(kept) == 0 {
			continue
		}
		rendered = append(rendered, RenderedWeek{
			WeekStart:     w.WeekStart,
			WeekEnd:       w.WeekEnd,
			DisplayStart:  latest(w.WeekStart, first),
			DisplayEnd:    earliest(w.WeekEnd, last),
			Entries:       kept,
			TotalActual:   round2(lo.SumBy(kept, func(e Entry) float64 { return e.ActualHours })),
			TotalClaiming: round2(lo.SumBy(kept, func(e Entry) float64 { return e.ClaimingHours })),
		})
	}

	sort.SliceStable(rendered, func(i, j int) bool { return rendered[i].DisplayStart.Before(rendered[j].DisplayStart) })
	for i := range rendered {
		rendered[i].WeekNumber = i + 1
	}

	// SL numbers run across week boundaries, so number a flat, sorted view
	// that points back into each week's entries.
	flat := make([]*Entry, 0)
	for i := range rendered {
		for j := range rendered[i].Entries {
			flat = append(flat, &rendered[i].Entries[j])
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		if !flat[i].Date.Equal(flat[j].Date) {
			return flat[i].Date.Before(flat[j].Date)
		}
		return flat[i].DiaryNumber < flat[j].DiaryNumber
	})
	for i, e := range flat {
		e.SLNumber = i + 1
	}
	return rendered
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
