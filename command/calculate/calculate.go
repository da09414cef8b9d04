package calculate

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lo "github.com/samber/lo"

	"faculty-bills/connectors/config"
	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/domain/bills"
)

// Run executes the calculate command: it aggregates the row snapshot into
// monthly week buckets and writes bills_weeks.csv and bills_entries.csv.
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", filepath.Join("data", ccsv.RowsFile), "row snapshot written by import")
	base := fs.String("data", "data", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("calculate: unexpected arguments %v", fs.Args())
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
	res := Calculate(agg, rows)

	if err := ccsv.WriteWeeks(filepath.Join(*base, ccsv.WeeksFile), res.Months); err != nil {
		return err
	}
	if err := ccsv.WriteEntries(filepath.Join(*base, ccsv.EntriesFile), res.Months); err != nil {
		return err
	}
	slog.Info("calculate.done", "weeks", ccsv.WeeksFile, "entries", ccsv.EntriesFile, "dir", *base)
	return nil
}

// Calculate aggregates rows and logs a summary of what was kept.
func Calculate(agg *bills.Aggregator, rows bills.Table) bills.Result {
	res := agg.Build(rows)
	weeks := lo.SumBy(lo.Values(res.Months), func(ws []bills.WeekBucket) int { return len(ws) })
	slog.Info("bills.aggregate.done",
		"rows", res.Rows,
		"dropped", res.Dropped,
		"months", len(res.Months),
		"weeks", weeks,
		"faculty", len(res.Faculty),
	)
	if res.Dropped > 0 {
		slog.Warn("bills.aggregate.dropped", "rows", res.Dropped, "reason", "no parseable date")
	}
	return res
}
