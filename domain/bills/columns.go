package bills

import (
	"sort"
	"strings"

	lo "github.com/samber/lo"
)

// Role is a canonical column meaning, independent of the header used by a sheet.
type Role string

const (
	RoleDate                  Role = "date"
	RoleDiaryNumber           Role = "diary_number"
	RoleClassSection          Role = "class_section"
	RoleSubjectChoice         Role = "subject"
	RoleTopicsCovered         Role = "topics"
	RoleDuration              Role = "duration"
	RoleClaimingHoursOverride Role = "claiming_hours"
	RoleFacultyNameEmail      Role = "faculty"
)

// Roles lists every role in resolution order.
var Roles = []Role{
	RoleDate,
	RoleDiaryNumber,
	RoleClassSection,
	RoleSubjectChoice,
	RoleTopicsCovered,
	RoleDuration,
	RoleClaimingHoursOverride,
	RoleFacultyNameEmail,
}

// DefaultVariants are the header names seen across the historical sheets, most
// specific first. "CLAMING HOURS" is the misspelling used by the live sheet.
var DefaultVariants = map[Role][]string{
	RoleDate:                  {"Date", "date"},
	RoleDiaryNumber:           {"Diary Number", "Diary No", "Diary", "DiaryNumber"},
	RoleClassSection:          {"Select Class and Section", "Select Class", "Class"},
	RoleSubjectChoice:         {"Choose Subject", "Subject"},
	RoleTopicsCovered:         {"Topics Covered", "Topics", "Particulars"},
	RoleDuration:              {"Duration", "Actual hours"},
	RoleClaimingHoursOverride: {"CLAMING HOURS", "Claiming Hours", "Claiming"},
	RoleFacultyNameEmail:      {"Faculty Name - Email", "Faculty Name", "Faculty"},
}

// ParseRole maps a config key such as "date" or "faculty" to its Role.
func ParseRole(s string) (Role, bool) {
	return lo.Find(Roles, func(r Role) bool { return string(r) == strings.ToLower(strings.TrimSpace(s)) })
}

// Columns holds the resolved source label per role; a missing key means the
// role is absent from the table.
type Columns map[Role]string

// Has reports whether the role resolved to a column.
func (c Columns) Has(r Role) bool {
	_, ok := c[r]
	return ok
}

// Labels returns the distinct column labels used across the table, sorted.
func Labels(t Table) []string {
	seen := map[string]struct{}{}
	for _, row := range t {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	labels := lo.Keys(seen)
	sort.Strings(labels)
	return labels
}

// ResolveColumns picks, for each role, the first variant that matches one of
// the labels case-insensitively. When two labels fold to the same key the one
// spelled exactly like the variant wins, otherwise the first in sorted order.
func ResolveColumns(labels []string, variants map[Role][]string) Columns {
	folded := map[string][]string{}
	for _, l := range labels {
		k := foldLabel(l)
		folded[k] = append(folded[k], l)
	}

	cols := Columns{}
	for _, role := range Roles {
		for _, v := range variants[role] {
			candidates := folded[foldLabel(v)]
			if len(candidates) == 0 {
				continue
			}
			exact, ok := lo.Find(candidates, func(l string) bool { return strings.TrimSpace(l) == v })
			if !ok {
				exact = candidates[0]
			}
			cols[role] = exact
			break
		}
	}
	return cols
}

// MergeVariants appends extra header variants after the defaults, keeping the
// defaults' priority.
func MergeVariants(extra map[Role][]string) map[Role][]string {
	out := make(map[Role][]string, len(DefaultVariants))
	for role, vs := range DefaultVariants {
		merged := append(append([]string{}, vs...), extra[role]...)
		out[role] = lo.Uniq(merged)
	}
	return out
}

func foldLabel(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
