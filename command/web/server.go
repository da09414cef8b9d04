package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	lo "github.com/samber/lo"

	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/connectors/sheets"
	"faculty-bills/connectors/xlsx"
	"faculty-bills/domain/bills"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const weekSpan = "02 Jan 2006"

type server struct {
	agg      *bills.Aggregator
	src      sheets.Fetcher
	cache    *sheets.Cache // nil when serving the snapshot
	exporter *xlsx.Exporter
	rate     float64
	dataDir  string
}

// snapshotSource reads the import snapshot on every call.
type snapshotSource string

func (p snapshotSource) FetchRows(context.Context) (bills.Table, error) {
	return ccsv.ReadRows(string(p))
}

func (s *server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.GET("/api/bills/months", s.months)
	e.GET("/api/bills/report", s.report)
	e.GET("/api/bills/report/xlsx", s.reportXLSX)
	e.POST("/api/bills/refresh", s.refresh)

	// Helper to register a GET endpoint serving a calculated CSV file
	serveCSV := func(route string, filename string) {
		e.GET(route, func(c echo.Context) error {
			path := filepath.Join(s.dataDir, filename)
			rows, err := ccsv.ReadCSV(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return c.JSON(http.StatusNotFound, map[string]any{
						"error":   "file not found",
						"path":    path,
						"message": "CSV file is missing, run calculate",
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]any{
					"error":   err.Error(),
					"path":    path,
					"message": "failed to read CSV",
				})
			}
			return c.JSON(http.StatusOK, rows)
		})
	}
	serveCSV("/api/bills/weeks", ccsv.WeeksFile)
	serveCSV("/api/bills/entries", ccsv.EntriesFile)

	return e
}

var errNoData = errors.New("no dated rows in source")

// load fetches the rows and aggregates them for one request. A source that
// yields no month at all counts as unavailable.
func (s *server) load(c echo.Context) (bills.Result, error) {
	rows, err := s.src.FetchRows(c.Request().Context())
	if err != nil {
		slog.Error("web.source.error", "path", c.Path(), "err", err)
		return bills.Result{}, err
	}
	res := s.agg.Build(rows)
	if len(res.Months) == 0 {
		slog.Warn("web.source.empty", "path", c.Path(), "rows", res.Rows, "dropped", res.Dropped)
		return bills.Result{}, errNoData
	}
	return res, nil
}

func unavailable(c echo.Context, err error) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]any{
		"error":   "data unavailable",
		"message": err.Error(),
	})
}

func (s *server) months(c echo.Context) error {
	res, err := s.load(c)
	if err != nil {
		return unavailable(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"months":  bills.MonthKeys(res.Months),
		"faculty": bills.FacultyOptions(res.Faculty),
	})
}

type entryView struct {
	SLNumber      int     `json:"sl_no"`
	DiaryNumber   string  `json:"diary_no"`
	Date          string  `json:"date"`
	Particulars   string  `json:"particulars"`
	ActualHours   float64 `json:"actual_hours"`
	ClaimingHours float64 `json:"claiming_hours"`
	SubjectCode   string  `json:"subject_code"`
	Faculty       string  `json:"faculty"`
	IsLab         bool    `json:"is_lab"`
}

type weekView struct {
	WeekNumber    int         `json:"week_number"`
	Start         string      `json:"start"`
	End           string      `json:"end"`
	Entries       []entryView `json:"entries"`
	TotalActual   float64     `json:"week_total_actual"`
	TotalClaiming float64     `json:"week_total_claiming"`
}

type reportView struct {
	bills.Selection
	Weeks        []weekView   `json:"weeks"`
	Totals       bills.Totals `json:"totals"`
	Remuneration float64      `json:"remuneration"`
}

func toWeekView(w bills.RenderedWeek, _ int) weekView {
	return weekView{
		WeekNumber: w.WeekNumber,
		Start:      w.DisplayStart.Format(weekSpan),
		End:        w.DisplayEnd.Format(weekSpan),
		Entries: lo.Map(w.Entries, func(e bills.Entry, _ int) entryView {
			return entryView{
				SLNumber:      e.SLNumber,
				DiaryNumber:   e.DiaryNumber,
				Date:          e.DateDisplay(),
				Particulars:   e.CombinedParticulars,
				ActualHours:   e.ActualHours,
				ClaimingHours: e.ClaimingHours,
				SubjectCode:   e.SubjectCode,
				Faculty:       e.FacultyName,
				IsLab:         e.IsLab,
			}
		}),
		TotalActual:   w.TotalActual,
		TotalClaiming: w.TotalClaiming,
	}
}

// report renders the selected month; an empty month picks the newest one and
// an unknown faculty falls back to everyone.
func (s *server) report(c echo.Context) error {
	res, err := s.load(c)
	if err != nil {
		return unavailable(c, err)
	}
	sel := bills.Select(res.Months, res.Faculty, strings.TrimSpace(c.QueryParam("month")), c.QueryParam("faculty"))
	weeks := bills.FilterAndAssign(res.Months, sel.Month, sel.Faculty)
	totals := bills.MonthTotals(weeks)
	return c.JSON(http.StatusOK, reportView{
		Selection:    sel,
		Weeks:        lo.Map(weeks, toWeekView),
		Totals:       totals,
		Remuneration: xlsx.Remuneration(totals.Claiming, s.rate),
	})
}

func (s *server) reportXLSX(c echo.Context) error {
	month := strings.TrimSpace(c.QueryParam("month"))
	if month == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "month is required"})
	}
	res, err := s.load(c)
	if err != nil {
		return unavailable(c, err)
	}
	// the requested name is used as is: a typo must not widen the claim to everyone
	faculty := strings.TrimSpace(c.QueryParam("faculty"))
	if faculty == "" {
		faculty = bills.AllFaculty
	}

	weeks, err := bills.Render(res.Months, month, faculty)
	switch {
	case errors.Is(err, bills.ErrUnknownMonth):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "unknown month", "month": month})
	case errors.Is(err, bills.ErrNoEntries):
		return c.JSON(http.StatusNotFound, map[string]any{"error": "no entries", "month": month, "faculty": faculty})
	case err != nil:
		return err
	}

	var buf bytes.Buffer
	id, err := s.exporter.Write(&buf, xlsx.Report{Month: month, Faculty: faculty, Weeks: weeks})
	if err != nil {
		slog.Error("web.export.error", "month", month, "faculty", faculty, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error(), "message": "failed to build workbook"})
	}
	slog.Info("web.export.done", "month", month, "faculty", faculty, "id", id, "bytes", buf.Len())

	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", xlsx.FileName(month, faculty)))
	h.Set("X-Report-Id", id)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (s *server) refresh(c echo.Context) error {
	if s.cache == nil {
		return c.JSON(http.StatusOK, map[string]any{"refreshed": false, "source": "snapshot"})
	}
	s.cache.Invalidate()
	slog.Info("web.cache.invalidate")
	return c.JSON(http.StatusOK, map[string]any{"refreshed": true, "source": "sheets"})
}
