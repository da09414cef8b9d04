package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"faculty-bills/connectors/config"
	"faculty-bills/domain/bills"
)

const (
	firstCol = 1
	lastCol  = 7
	weekSpan = "02 Jan 2006"
)

// sheetWriter lays out the claim sheet top to bottom. The first error sticks
// and every later call becomes a no-op.
type sheetWriter struct {
	f   *excelize.File
	st  styles
	row int
	err error
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (sw *sheetWriter) set(col int, v any, style int) {
	if sw.err != nil {
		return
	}
	axis := cellName(col, sw.row)
	if err := sw.f.SetCellValue(sheetName, axis, v); err != nil {
		sw.err = fmt.Errorf("set %s: %w", axis, err)
		return
	}
	if style != 0 {
		if err := sw.f.SetCellStyle(sheetName, axis, axis, style); err != nil {
			sw.err = fmt.Errorf("style %s: %w", axis, err)
		}
	}
}

// merged writes v across columns from..to of the current row.
func (sw *sheetWriter) merged(from, to int, v any, style int) {
	sw.set(from, v, style)
	if sw.err != nil || from == to {
		return
	}
	if err := sw.f.MergeCell(sheetName, cellName(from, sw.row), cellName(to, sw.row)); err != nil {
		sw.err = fmt.Errorf("merge row %d: %w", sw.row, err)
	}
}

func (sw *sheetWriter) next(n int) { sw.row += n }

func (sw *sheetWriter) header(cfg config.Export, rep Report) {
	sw.merged(firstCol, lastCol, cfg.Institution, sw.st.title)
	sw.next(1)
	sw.merged(1, 3, "Department: "+cfg.Department, sw.st.bold)
	sw.merged(4, lastCol, "ANNEXURE (time table need to be attached)", sw.st.boldRight)
	sw.next(1)
	sw.merged(firstCol, lastCol, fmt.Sprintf("Workload allotted per Week . . . %d hours . . .", cfg.WorkloadHours), sw.st.boldRight)
	sw.next(1)
	sw.merged(1, 3, "Month: "+rep.Month, sw.st.bold)
	sw.merged(4, lastCol, "Guest Faculty: "+rep.Faculty, sw.st.bold)
	sw.next(2)
}

func (sw *sheetWriter) week(wk bills.RenderedWeek) {
	label := fmt.Sprintf("Week %d: %s - %s", wk.WeekNumber, wk.DisplayStart.Format(weekSpan), wk.DisplayEnd.Format(weekSpan))
	sw.merged(firstCol, lastCol, label, sw.st.bold)
	sw.next(1)

	for i, h := range tableHeaders {
		sw.set(firstCol+i, h, sw.st.head)
	}
	sw.next(1)

	for _, e := range wk.Entries {
		sw.set(1, e.SLNumber, sw.st.cellCenter)
		sw.set(2, e.DiaryNumber, sw.st.cellCenter)
		sw.set(3, e.DateDisplay(), sw.st.cellCenter)
		sw.set(4, e.CombinedParticulars, sw.st.cell)
		sw.set(5, e.ActualHours, sw.st.hours)
		sw.set(6, e.ClaimingHours, sw.st.hours)
		sw.set(7, e.SubjectCode, sw.st.cellCenter)
		sw.next(1)
	}

	sw.merged(1, 4, "Weekly Total", sw.st.totalLabel)
	sw.set(5, wk.TotalActual, sw.st.totalHours)
	sw.set(6, wk.TotalClaiming, sw.st.totalHours)
	sw.set(7, "", sw.st.totalLabel)
	sw.next(2)
}

func (sw *sheetWriter) footer(cfg config.Export, rep Report) {
	totals := bills.MonthTotals(rep.Weeks)
	sw.merged(1, 4, "Total monthly working hours", sw.st.bold)
	sw.set(6, totals.Claiming, sw.st.totalHours)
	sw.next(1)
	sw.merged(1, 4, "Total remuneration claiming", sw.st.bold)
	sw.set(6, fmt.Sprintf("%.0f/-", Remuneration(totals.Claiming, cfg.RatePerHour)), sw.st.bold)
	sw.next(3)

	sw.merged(1, 3, "Date: "+rep.GeneratedAt.Format("02 / 01 / 2006"), sw.st.bold)
	sw.merged(5, lastCol, "Signature of the Guest Faculty", sw.st.boldRight)
	sw.next(2)

	sw.merged(firstCol, lastCol, cfg.Certification, sw.st.wrap)
	if sw.err == nil {
		if err := sw.f.SetRowHeight(sheetName, sw.row, 48); err != nil {
			sw.err = err
		}
	}
	sw.next(4)
	sw.merged(5, lastCol, cfg.Signatory, sw.st.boldRight)
}
