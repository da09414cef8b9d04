package bills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(date any, hours any, topics, subject, class, faculty string) Row {
	return Row{
		"Date":                     date,
		"Duration":                 hours,
		"Topics Covered":           topics,
		"Choose Subject":           subject,
		"Select Class and Section": class,
		"Faculty Name - Email":     faculty,
	}
}

func onlyEntry(t *testing.T, months Months) Entry {
	t.Helper()
	require.Len(t, months, 1)
	for _, weeks := range months {
		require.Len(t, weeks, 1)
		require.Len(t, weeks[0].Entries, 1)
		return weeks[0].Entries[0]
	}
	return Entry{}
}

func TestAggregate_EndToEnd(t *testing.T) {
	rows := Table{
		session("2025-08-04T10:00:00.000Z", 5, "Intro", "DS - DS101", "BCA-3A", "Dr. X - x@mail.com"),
		session("2025-08-04", 14, "Lab session", "DS - DS101", "BCA-3A Lab ", "Dr. X - x@mail.com"),
	}

	months, faculty := Aggregate(rows)
	assert.Equal(t, []string{"Dr. X"}, faculty)
	require.Contains(t, months, "August 2025")

	weeks := FilterAndAssign(months, "August 2025", AllFaculty)
	require.Len(t, weeks, 1)
	w := weeks[0]
	assert.Equal(t, 1, w.WeekNumber)
	assert.Equal(t, civil(2025, 8, 4), w.WeekStart)
	assert.Equal(t, civil(2025, 8, 9), w.WeekEnd)
	require.Len(t, w.Entries, 2)

	a, b := w.Entries[0], w.Entries[1]
	assert.Equal(t, 1, a.SLNumber)
	assert.Equal(t, 5.0, a.ActualHours)
	assert.Equal(t, 5.0, a.ClaimingHours)
	assert.False(t, a.IsLab)
	assert.Equal(t, "BCA-3A - DS - Intro", a.CombinedParticulars)
	assert.Equal(t, "DS101", a.SubjectCode)
	assert.Equal(t, "04-08-2025", a.DateDisplay())

	assert.Equal(t, 2, b.SLNumber)
	assert.Equal(t, 2.0, b.ActualHours)
	assert.True(t, b.IsLab)
	assert.Equal(t, 1.5, b.ClaimingHours)

	assert.Equal(t, 7.0, w.TotalActual)
	assert.Equal(t, 6.5, w.TotalClaiming)
}

func TestAggregate_ModuloCap(t *testing.T) {
	cases := []struct {
		name  string
		hours any
		want  float64
	}{
		{"zero", 0, 0},
		{"plain", 5, 5},
		{"exactly twelve", 12, 0},
		{"thirteen wraps", 13, 1},
		{"fraction", 25.5, 1.5},
		{"rounds up to twelve", 11.999, 0},
		{"just below twelve", 11.99, 11.99},
		{"negative floors", -3, 9},
		{"numeric string", " 7.25 ", 7.25},
		{"garbage", "abc", 0},
		{"missing", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			months, _ := Aggregate(Table{session("2025-08-05", tc.hours, "Intro", "", "", "")})
			e := onlyEntry(t, months)
			assert.GreaterOrEqual(t, e.ActualHours, 0.0)
			assert.Less(t, e.ActualHours, MaxEntryHours)
			assert.Equal(t, tc.want, e.ActualHours)
		})
	}
}

func TestAggregate_LabIgnoresOverride(t *testing.T) {
	with := session("2025-08-05", 3, "Lab work", "", "", "")
	with["CLAMING HOURS"] = 10
	without := session("2025-08-05", 3, "Lab work", "", "", "")

	m1, _ := Aggregate(Table{with})
	m2, _ := Aggregate(Table{without})
	e1, e2 := onlyEntry(t, m1), onlyEntry(t, m2)

	assert.True(t, e1.IsLab)
	assert.Equal(t, round2(e1.ActualHours*LabClaimRatio), e1.ClaimingHours)
	assert.Equal(t, 2.25, e1.ClaimingHours)
	assert.Equal(t, e1.ClaimingHours, e2.ClaimingHours)
}

func TestAggregate_ClaimRoundsHalfToEven(t *testing.T) {
	cases := []struct {
		name     string
		hours    any
		topics   string
		override any
		want     float64
	}{
		{"lab 1.5h", 1.5, "Lab work", nil, 1.12},
		{"lab 3.5h", 3.5, "Lab work", nil, 2.62},
		{"lab 5.5h", 5.5, "Lab work", nil, 4.12},
		{"lab 0.5h", 0.5, "Lab work", nil, 0.38},
		{"override 0.125", 2, "Theory", 0.125, 0.12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := session("2025-08-05", tc.hours, tc.topics, "", "", "")
			if tc.override != nil {
				row["Claiming Hours"] = tc.override
			}
			months, _ := Aggregate(Table{row})
			assert.Equal(t, tc.want, onlyEntry(t, months).ClaimingHours)
		})
	}
}

func TestAggregate_WeekTotalUsesRoundedClaims(t *testing.T) {
	months, _ := Aggregate(Table{
		session("2025-08-05", 1.5, "Lab work", "", "", ""),
		session("2025-08-06", 1.5, "Lab work", "", "", ""),
	})
	weeks := months["August 2025"]
	require.Len(t, weeks, 1)
	assert.Equal(t, 2.24, weeks[0].TotalClaiming)
	assert.Equal(t, 3.0, weeks[0].TotalActual)
}

func TestAggregate_NonLabOverride(t *testing.T) {
	with := session("2025-08-05", 3, "Theory", "", "", "")
	with["Claiming Hours"] = "4.567"
	blank := session("2025-08-05", 3, "Theory", "", "", "")
	blank["Claiming Hours"] = ""

	m1, _ := Aggregate(Table{with})
	assert.Equal(t, 4.57, onlyEntry(t, m1).ClaimingHours)

	m2, _ := Aggregate(Table{blank})
	assert.Equal(t, 3.0, onlyEntry(t, m2).ClaimingHours)
}

func TestAggregate_LabKeywordNeedsTrailingSpace(t *testing.T) {
	cases := []struct {
		name    string
		topics  string
		subject string
		class   string
		want    bool
	}{
		{"topics", "LAB practice", "", "", true},
		{"subject", "", "Lab 2 - CS2", "", true},
		{"class keeps inner space", "", "", "BCA Lab A", true},
		{"trailing space trimmed away", "", "", "BCA-3A Lab ", false},
		{"word without space", "Syllabus", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			months, _ := Aggregate(Table{session("2025-08-05", 2, tc.topics, tc.subject, tc.class, "")})
			assert.Equal(t, tc.want, onlyEntry(t, months).IsLab)
		})
	}
}

func TestAggregate_WeekBucketing(t *testing.T) {
	months, _ := Aggregate(Table{
		session("2025-08-06", 1, "Wednesday", "", "", ""),
		session("2025-08-10", 1, "Sunday", "", "", ""),
	})
	weeks := months["August 2025"]
	require.Len(t, weeks, 1)
	assert.Equal(t, civil(2025, 8, 4), weeks[0].WeekStart)
	assert.Equal(t, civil(2025, 8, 9), weeks[0].WeekEnd)
	assert.Len(t, weeks[0].Entries, 2)
}

func TestAggregate_NoDateColumn(t *testing.T) {
	months, faculty := Aggregate(Table{{"Day": "2025-08-04", "Duration": 2, "Faculty": "Dr. X"}})
	assert.Empty(t, months)
	assert.Empty(t, faculty)

	months, faculty = Aggregate(nil)
	assert.NotNil(t, months)
	assert.Empty(t, months)
	assert.Empty(t, faculty)
}

func TestAggregate_DropsUnparseableDates(t *testing.T) {
	res := NewAggregator(nil).Build(Table{
		session("not a date", 2, "", "", "", "Dr. Y"),
		session("", 2, "", "", "", "Dr. Y"),
		session("2025-08-05", 2, "", "", "", "Dr. X - x@mail.com"),
	})
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, []string{"Dr. X"}, res.Faculty)
}

func TestAggregate_SortsAndRounds(t *testing.T) {
	rows := Table{
		{"date": "2025-08-12", "Diary No": "9", "Actual hours": 0.1},
		{"date": "2025-08-05", "Diary No": 3, "Actual hours": 0.2},
		{"date": "2025-08-12", "Diary No": "10", "Actual hours": 0.2},
		{"date": "2025-08-12", "Diary No": "2", "Actual hours": 0.1},
	}
	months, _ := Aggregate(rows)
	weeks := months["August 2025"]
	require.Len(t, weeks, 2)
	assert.True(t, weeks[0].WeekStart.Before(weeks[1].WeekStart))

	diaries := []string{}
	for _, e := range weeks[1].Entries {
		diaries = append(diaries, e.DiaryNumber)
	}
	assert.Equal(t, []string{"10", "2", "9"}, diaries)
	assert.Equal(t, "3", weeks[0].Entries[0].DiaryNumber)
	assert.Equal(t, 0.4, weeks[1].TotalActual)
}

func TestAggregate_SubjectAndFacultyExtraction(t *testing.T) {
	months, faculty := Aggregate(Table{
		session("2025-08-05", 1, "", "Data Structures - Part 2 - DS102", "", "Prof. Rao"),
	})
	e := onlyEntry(t, months)
	assert.Equal(t, "DS102", e.SubjectCode)
	assert.Equal(t, "Data Structures - Part 2", e.CombinedParticulars)
	assert.Equal(t, "Prof. Rao", e.FacultyName)
	assert.Equal(t, []string{"Prof. Rao"}, faculty)
}

func TestAggregate_ExtraVariants(t *testing.T) {
	agg := NewAggregator(map[Role][]string{RoleDate: {"Session Date"}})
	res := agg.Build(Table{{"Session Date": "2025-08-05", "Duration": 2}})
	require.Contains(t, res.Months, "August 2025")
}
