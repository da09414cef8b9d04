package bills

import (
	"sort"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

// Aggregator normalizes raw rows and groups them into month and week buckets.
// The zero value uses UTC and the default header variants; use NewAggregator
// for the sheet's display zone.
type Aggregator struct {
	Location *time.Location
	Variants map[Role][]string
}

// NewAggregator returns an aggregator reading dates in DefaultZone with the
// default variants extended by extra.
func NewAggregator(extra map[Role][]string) *Aggregator {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		loc = time.UTC
	}
	return &Aggregator{Location: loc, Variants: MergeVariants(extra)}
}

// Aggregate runs the default aggregator over t and returns the month buckets
// and the sorted faculty names.
func Aggregate(t Table) (Months, []string) {
	res := NewAggregator(nil).Build(t)
	return res.Months, res.Faculty
}

// Build aggregates t. A table without a date column yields empty months and
// an empty faculty list; rows whose date cannot be parsed are counted in
// Result.Dropped and otherwise ignored.
func (a *Aggregator) Build(t Table) Result {
	res := Result{Months: Months{}, Faculty: []string{}, Rows: len(t)}

	variants := a.Variants
	if variants == nil {
		variants = DefaultVariants
	}
	cols := ResolveColumns(Labels(t), variants)
	if !cols.Has(RoleDate) {
		return res
	}

	faculty := map[string]struct{}{}
	for _, row := range t {
		e, ok := a.normalize(row, cols)
		if !ok {
			res.Dropped++
			continue
		}
		if e.FacultyName != "" {
			faculty[e.FacultyName] = struct{}{}
		}
		res.Months.add(e)
	}

	for label, weeks := range res.Months {
		sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.Before(weeks[j].WeekStart) })
		for i := range weeks {
			w := &weeks[i]
			sortEntries(w.Entries)
			for j := range w.Entries {
				w.Entries[j].ActualHours = round2(w.Entries[j].ActualHours)
				w.Entries[j].ClaimingHours = round2(w.Entries[j].ClaimingHours)
			}
			w.TotalActual = round2(w.TotalActual)
			w.TotalClaiming = round2(w.TotalClaiming)
		}
		res.Months[label] = weeks
	}

	res.Faculty = lo.Keys(faculty)
	sort.Strings(res.Faculty)
	return res
}

// normalize converts one raw row into an Entry; ok is false when the date
// does not parse.
func (a *Aggregator) normalize(row Row, cols Columns) (Entry, bool) {
	label := cols[RoleDate]
	d, ok := ParseDate(row[label], a.Location)
	if !ok {
		return Entry{}, false
	}

	topics := cell(row, cols, RoleTopicsCovered)
	class := cell(row, cols, RoleClassSection)
	subjectRaw := cell(row, cols, RoleSubjectChoice)
	subject, code := splitSubject(subjectRaw)

	e := Entry{
		DiaryNumber:         cell(row, cols, RoleDiaryNumber),
		Date:                d,
		CombinedParticulars: joinNonEmpty(" - ", class, subject, topics),
		SubjectCode:         code,
		FacultyName:         facultyName(cell(row, cols, RoleFacultyNameEmail)),
		IsLab:               containsLab(topics, subjectRaw, class),
	}

	hours, _ := number(row, cols, RoleDuration)
	actual := capHours(hours)
	override, hasOverride := number(row, cols, RoleClaimingHoursOverride)
	e.ActualHours = round2(actual)
	e.ClaimingHours = ClaimingHours(actual, e.IsLab, override, hasOverride)
	return e, true
}

// ClaimingHours applies the claim policy: lab periods are always reduced to
// LabClaimRatio of the actual hours, even when the sheet carries an explicit
// claim; other sessions use the explicit claim when present.
func ClaimingHours(actual float64, isLab bool, override float64, hasOverride bool) float64 {
	switch {
	case isLab:
		return round2(actual * LabClaimRatio)
	case hasOverride:
		return round2(override)
	default:
		return round2(actual)
	}
}

// add files e under its own month and the week starting on its Monday.
func (m Months) add(e Entry) {
	label := MonthLabel(e.Date)
	start := WeekStart(e.Date)
	weeks := m[label]
	idx := -1
	for i := range weeks {
		if weeks[i].WeekStart.Equal(start) {
			idx = i
			break
		}
	}
	if idx < 0 {
		weeks = append(weeks, WeekBucket{WeekStart: start, WeekEnd: WeekEnd(start)})
		idx = len(weeks) - 1
	}
	w := &weeks[idx]
	w.Entries = append(w.Entries, e)
	w.TotalActual += e.ActualHours
	w.TotalClaiming += e.ClaimingHours
	m[label] = weeks
}

// sortEntries orders entries by date, then by diary number as text.
func sortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].DiaryNumber < es[j].DiaryNumber
	})
}

// splitSubject splits "Data Structures - DS101" at the last separator.
func splitSubject(raw string) (name, code string) {
	i := strings.LastIndex(raw, " - ")
	if i < 0 {
		return raw, ""
	}
	return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+len(" - "):])
}

// facultyName keeps the name part of "Dr. X - x@mail.com".
func facultyName(raw string) string {
	name, _, found := strings.Cut(raw, " - ")
	if !found {
		return raw
	}
	return strings.TrimSpace(name)
}

func containsLab(texts ...string) bool {
	return lo.SomeBy(texts, func(t string) bool { return strings.Contains(strings.ToLower(t), "lab ") })
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(lo.Compact(parts), sep)
}
