package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	lo "github.com/samber/lo"

	"faculty-bills/domain/bills"
)

// Output file names written by the calculate command under the data directory.
const (
	RowsFile    = "bills_rows.csv"
	WeeksFile   = "bills_weeks.csv"
	EntriesFile = "bills_entries.csv"
)

// WriteRows writes a snapshot of raw rows. The header is the sorted union of
// all column labels; cells missing from a row are left blank.
func WriteRows(path string, rows bills.Table) error {
	headers := bills.Labels(rows)
	return writeFile(path, headers, func(w *csv.Writer) error {
		for _, r := range rows {
			rec := lo.Map(headers, func(h string, _ int) string { return cellText(r[h]) })
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadRows loads a snapshot written by WriteRows. Every value is a string;
// blank cells are omitted so the aggregator treats them as absent.
func ReadRows(path string) (bills.Table, error) {
	recs, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	rows := make(bills.Table, 0, len(recs))
	for _, rec := range recs {
		row := bills.Row{}
		for k, v := range rec {
			if v != "" {
				row[k] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteWeeks writes one line per rendered week of every month, all faculty.
func WriteWeeks(path string, months bills.Months) error {
	headers := []string{"month", "week_number", "week_start", "week_end", "display_start", "display_end", "entries", "week_total_actual", "week_total_claiming"}
	return writeFile(path, headers, func(w *csv.Writer) error {
		for _, month := range bills.MonthKeys(months) {
			for _, wk := range bills.FilterAndAssign(months, month, bills.AllFaculty) {
				row := []string{
					month,
					strconv.Itoa(wk.WeekNumber),
					wk.WeekStart.Format("2006-01-02"),
					wk.WeekEnd.Format("2006-01-02"),
					wk.DisplayStart.Format("2006-01-02"),
					wk.DisplayEnd.Format("2006-01-02"),
					strconv.Itoa(len(wk.Entries)),
					formatHours(wk.TotalActual),
					formatHours(wk.TotalClaiming),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteEntries writes one line per numbered entry of every month, all faculty.
func WriteEntries(path string, months bills.Months) error {
	headers := []string{"month", "week_number", "sl_no", "diary_no", "date", "particulars", "actual_hours", "claiming_hours", "subject_code", "faculty", "is_lab"}
	return writeFile(path, headers, func(w *csv.Writer) error {
		for _, month := range bills.MonthKeys(months) {
			for _, wk := range bills.FilterAndAssign(months, month, bills.AllFaculty) {
				for _, e := range wk.Entries {
					row := []string{
						month,
						strconv.Itoa(wk.WeekNumber),
						strconv.Itoa(e.SLNumber),
						e.DiaryNumber,
						e.DateDisplay(),
						e.CombinedParticulars,
						formatHours(e.ActualHours),
						formatHours(e.ClaimingHours),
						e.SubjectCode,
						e.FacultyName,
						strconv.FormatBool(e.IsLab),
					}
					if err := w.Write(row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// ReadCSV loads a CSV file and returns a slice of objects keyed by headers.
// Values are kept as strings to avoid lossy or incorrect type coercion.
func ReadCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res := []map[string]string{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		obj := make(map[string]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			obj[headers[j]] = row[j]
		}
		res = append(res, obj)
	}
	return res, nil
}

func writeFile(path string, headers []string, body func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatHours(h float64) string { return strconv.FormatFloat(h, 'f', 2, 64) }

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
