package export

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"faculty-bills/command/calculate"
	"faculty-bills/connectors/config"
	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/connectors/xlsx"
	"faculty-bills/domain/bills"
)

// Run executes the export subcommand: it renders one month of the snapshot,
// optionally for a single faculty member, into the claim workbook.
//
// Usage:
//
//	faculty-bills export -month "August 2025" [-faculty "Dr. X"] [-in data/bills_rows.csv] [-out report.xlsx]
func Run(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	month := fs.String("month", "", `month to export, e.g. "August 2025" (required)`)
	faculty := fs.String("faculty", bills.AllFaculty, "faculty name to export")
	in := fs.String("in", filepath.Join("data", ccsv.RowsFile), "row snapshot written by import")
	out := fs.String("out", "", "output file (default report_<month>_<faculty>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month == "" {
		return errors.New("export: -month is required")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	agg, err := cfg.Aggregator()
	if err != nil {
		return err
	}
	rows, err := ccsv.ReadRows(*in)
	if err != nil {
		return fmt.Errorf("read snapshot (run import first): %w", err)
	}

	res := calculate.Calculate(agg, rows)
	weeks, err := bills.Render(res.Months, *month, *faculty)
	if err != nil {
		if errors.Is(err, bills.ErrUnknownMonth) {
			slog.Error("export.month.unknown", "month", *month, "available", bills.MonthKeys(res.Months))
		}
		return err
	}

	path := *out
	if path == "" {
		path = xlsx.FileName(*month, *faculty)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	id, err := xlsx.NewExporter(cfg.Export).Write(f, xlsx.Report{Month: *month, Faculty: *faculty, Weeks: weeks})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	totals := bills.MonthTotals(weeks)
	slog.Info("export.done",
		"out", path,
		"id", id,
		"weeks", len(weeks),
		"total_claiming", totals.Claiming,
		"remuneration", xlsx.Remuneration(totals.Claiming, cfg.Export.RatePerHour),
	)
	return nil
}
