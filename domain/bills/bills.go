package bills

import "time"

// Row is one raw record as delivered by the sheet endpoint. Column labels vary
// between historical sheets, so nothing is assumed about the keys.
type Row map[string]any

// Table is an ordered sequence of raw rows.
type Table []Row

// Entry is one normalized teaching session.
type Entry struct {
	SLNumber            int       `json:"sl_number,omitempty"` // 0 until FilterAndAssign numbers it
	DiaryNumber         string    `json:"diary_number"`
	Date                time.Time `json:"date"`
	CombinedParticulars string    `json:"particulars"`
	ActualHours         float64   `json:"actual_hours"`
	ClaimingHours       float64   `json:"claiming_hours"`
	SubjectCode         string    `json:"subject_code"`
	FacultyName         string    `json:"faculty"`
	IsLab               bool      `json:"is_lab"`
}

// DateISO returns the entry date as YYYY-MM-DD.
func (e Entry) DateISO() string { return e.Date.Format(isoLayout) }

// DateDisplay returns the entry date as dd-mm-yyyy.
func (e Entry) DateDisplay() string { return e.Date.Format(displayLayout) }

// WeekBucket groups the entries of one month that share a Monday week start.
type WeekBucket struct {
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"` // Saturday
	Entries       []Entry   `json:"entries"`
	TotalActual   float64   `json:"week_total_actual"`
	TotalClaiming float64   `json:"week_total_claiming"`
}

// Months maps a "January 2006" label to its weeks in ascending order.
type Months map[string][]WeekBucket

// RenderedWeek is a week bucket clipped to the selected month, filtered and numbered.
type RenderedWeek struct {
	WeekNumber    int       `json:"week_number"`
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"`
	DisplayStart  time.Time `json:"display_start"`
	DisplayEnd    time.Time `json:"display_end"`
	Entries       []Entry   `json:"entries"`
	TotalActual   float64   `json:"week_total_actual"`
	TotalClaiming float64   `json:"week_total_claiming"`
}

// Result is the output of an aggregation pass.
type Result struct {
	Months  Months
	Faculty []string
	Rows    int // rows seen
	Dropped int // rows without a parseable date
}

const (
	// AllFaculty disables the faculty filter.
	AllFaculty = "All"
	// LabClaimRatio is the share of a lab period that may be claimed.
	LabClaimRatio = 0.75
	// MaxEntryHours caps a single entry: durations are reduced modulo this value.
	MaxEntryHours = 12.0

	// CombinedHeader is the printed title of the particulars column.
	CombinedHeader = "Particulars / chapter / lectures (as per Time Table) I / II / III / IV / V / VI Sem"

	monthLayout   = "January 2006"
	isoLayout     = "2006-01-02"
	displayLayout = "02-01-2006"
)
