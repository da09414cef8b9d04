package xlsx

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"faculty-bills/connectors/config"
	"faculty-bills/domain/bills"
)

const sheetName = "Claim"

// Report is one month of rendered weeks for one faculty selection.
type Report struct {
	ID          string // doc identifier; generated when empty
	Month       string
	Faculty     string
	Weeks       []bills.RenderedWeek
	GeneratedAt time.Time
}

// Exporter writes the monthly claim document as a workbook.
type Exporter struct {
	cfg config.Export
}

// NewExporter creates an exporter printing the letterhead and rate of cfg.
func NewExporter(cfg config.Export) *Exporter {
	return &Exporter{cfg: cfg}
}

var tableHeaders = []string{
	"Sl. No",
	"Diary No.",
	"Date",
	bills.CombinedHeader,
	"Actual hours",
	"Claiming hours (Lab period reduced by 3/4)",
	"Subject code",
}

var colWidths = map[string]float64{"A": 6, "B": 9, "C": 12, "D": 52, "E": 9, "F": 16, "G": 11}

// Remuneration is the amount claimed for the month, in whole currency units.
func Remuneration(totalClaiming, ratePerHour float64) float64 {
	return math.Round(totalClaiming * ratePerHour)
}

// FileName returns the download name for a month/faculty export.
func FileName(month, faculty string) string {
	return fmt.Sprintf("report_%s_%s.xlsx", strings.ReplaceAll(month, " ", "_"), strings.ReplaceAll(faculty, " ", "_"))
}

// Write renders rep into a workbook on w and returns the document identifier.
func (e *Exporter) Write(w io.Writer, rep Report) (string, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Identifier:  rep.ID,
		Title:       fmt.Sprintf("Guest faculty claim %s", rep.Month),
		Subject:     rep.Faculty,
		Creator:     e.cfg.Institution,
		Created:     rep.GeneratedAt.UTC().Format(time.RFC3339),
		Description: "Monthly teaching hours and remuneration claim",
	}); err != nil {
		return "", err
	}

	st, err := newStyles(f)
	if err != nil {
		return "", err
	}
	sw := &sheetWriter{f: f, st: st, row: 1}
	sw.header(e.cfg, rep)
	for _, wk := range rep.Weeks {
		sw.week(wk)
	}
	sw.footer(e.cfg, rep)
	if sw.err != nil {
		return "", sw.err
	}

	for col, width := range colWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return "", err
		}
	}
	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}
	return rep.ID, nil
}

type styles struct {
	title, bold, boldRight, head, cell, cellCenter, hours, totalLabel, totalHours, wrap int
}

type styleDef struct {
	dst   *int
	style *excelize.Style
}

func newStyles(f *excelize.File) (styles, error) {
	font := func(bold bool, size float64) *excelize.Font {
		return &excelize.Font{Bold: bold, Size: size, Family: "Times New Roman"}
	}
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	oneDecimal := "0.0"
	titleFont := font(true, 14)
	titleFont.Underline = "single"

	var st styles
	defs := []styleDef{
		{&st.title, &excelize.Style{Font: titleFont, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&st.bold, &excelize.Style{Font: font(true, 11)}},
		{&st.boldRight, &excelize.Style{Font: font(true, 11), Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&st.head, &excelize.Style{Font: font(true, 9), Border: border, Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}}},
		{&st.cell, &excelize.Style{Font: font(false, 9), Border: border, Alignment: &excelize.Alignment{Vertical: "top", WrapText: true}}},
		{&st.cellCenter, &excelize.Style{Font: font(false, 9), Border: border, Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"}}},
		{&st.hours, &excelize.Style{Font: font(false, 9), Border: border, CustomNumFmt: &oneDecimal, Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"}}},
		{&st.totalLabel, &excelize.Style{Font: font(true, 9), Border: border}},
		{&st.totalHours, &excelize.Style{Font: font(true, 9), Border: border, CustomNumFmt: &oneDecimal, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&st.wrap, &excelize.Style{Font: font(false, 11), Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return styles{}, fmt.Errorf("new style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}
