package bills

import (
	"sort"
	"time"

	lo "github.com/samber/lo"
)

// Selection is the month/faculty pair a report view renders, together with
// the options offered to the user.
type Selection struct {
	Month       string   `json:"month"` // "" when nothing can be shown
	Faculty     string   `json:"faculty"`
	MonthKeys   []string `json:"months"`
	FacultyKeys []string `json:"faculty_list"`
}

// Totals sums the rendered weeks of a month.
type Totals struct {
	Actual   float64 `json:"total_actual"`
	Claiming float64 `json:"total_claiming"`
}

// MonthKeys returns the month labels newest first.
func MonthKeys(months Months) []string {
	keys := lo.Keys(months)
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := time.Parse(monthLayout, keys[i])
		b, errB := time.Parse(monthLayout, keys[j])
		if errA != nil || errB != nil {
			return keys[i] > keys[j]
		}
		return a.After(b)
	})
	return keys
}

// FacultyOptions returns the faculty choices with AllFaculty first.
func FacultyOptions(faculty []string) []string {
	if lo.Contains(faculty, AllFaculty) {
		out := append([]string{}, faculty...)
		sort.Strings(out)
		return out
	}
	return append([]string{AllFaculty}, faculty...)
}

// Select resolves the requested month and faculty against what the data
// offers. An empty month picks the newest one; a month that does not exist
// leaves Selection.Month empty. An unknown faculty falls back to AllFaculty.
func Select(months Months, faculty []string, month, wantFaculty string) Selection {
	sel := Selection{
		MonthKeys:   MonthKeys(months),
		FacultyKeys: FacultyOptions(faculty),
		Month:       month,
		Faculty:     wantFaculty,
	}
	if sel.Month == "" && len(sel.MonthKeys) > 0 {
		sel.Month = sel.MonthKeys[0]
	}
	if _, ok := months[sel.Month]; !ok {
		sel.Month = ""
	}
	if !lo.Contains(sel.FacultyKeys, sel.Faculty) {
		sel.Faculty = AllFaculty
	}
	return sel
}

// MonthTotals adds up the week totals of a rendered month.
func MonthTotals(weeks []RenderedWeek) Totals {
	return Totals{
		Actual:   round2(lo.SumBy(weeks, func(w RenderedWeek) float64 { return w.TotalActual })),
		Claiming: round2(lo.SumBy(weeks, func(w RenderedWeek) float64 { return w.TotalClaiming })),
	}
}
