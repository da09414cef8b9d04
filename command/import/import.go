package cmdimport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"faculty-bills/connectors/config"
	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/connectors/sheets"
	"faculty-bills/connectors/xlsx"
	"faculty-bills/domain/bills"
)

// Run executes the import subcommand: it pulls the teaching log rows either
// from the configured sheet endpoints or from a downloaded workbook (-xlsx)
// and stores them as the local snapshot used by calculate, export and web.
func Run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	xlsxPath := fs.String("xlsx", "", "read rows from this workbook instead of the sheet endpoints")
	sheet := fs.String("sheet", "", "worksheet to read with -xlsx (default: first sheet)")
	out := fs.String("out", filepath.Join("data", ccsv.RowsFile), "snapshot CSV to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	start := time.Now()
	var rows bills.Table
	if *xlsxPath != "" {
		rows, err = readWorkbook(*xlsxPath, *sheet)
	} else {
		rows, err = fetch(cfg)
	}
	if err != nil {
		slog.Error("import.fetch.error", "err", err)
		return err
	}
	slog.Info("import.fetch.done", "rows", len(rows), "columns", len(bills.Labels(rows)), "elapsed", time.Since(start))

	if err := ccsv.WriteRows(*out, rows); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("import.done", "out", *out)
	return nil
}

func fetch(cfg *config.Config) (bills.Table, error) {
	if len(cfg.Sources.URLs) == 0 {
		return nil, errors.New("import: no sources.urls configured (set BILLS_SOURCE_URLS or use -xlsx)")
	}
	slog.Info("import.start", "sources", len(cfg.Sources.URLs))
	return sheets.New(nil, cfg.Token(), cfg.Timeout(), cfg.Sources.URLs...).FetchRows(context.Background())
}

func readWorkbook(path, sheet string) (bills.Table, error) {
	slog.Info("import.start", "xlsx", path, "sheet", sheet)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xlsx.ReadRows(f, sheet)
}
