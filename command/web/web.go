package web

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"faculty-bills/connectors/config"
	ccsv "faculty-bills/connectors/csv"
	"faculty-bills/connectors/sheets"
	"faculty-bills/connectors/xlsx"
)

// Run starts a small Echo web server exposing the bills report as JSON, the
// claim workbook download and an optional SPA dashboard.
//
// Usage:
//
//	faculty-bills web [-addr :8080] [-data ./data] [-snapshot ./data/bills_rows.csv] [-ui ./ui/dist]
//
// Endpoints:
//
//	GET  /api/bills/months         -> months (newest first) and faculty options
//	GET  /api/bills/report         -> ?month=&faculty= rendered weeks and totals
//	GET  /api/bills/report/xlsx    -> ?month=&faculty= claim workbook attachment
//	GET  /api/bills/weeks          -> <data>/bills_weeks.csv
//	GET  /api/bills/entries        -> <data>/bills_entries.csv
//	POST /api/bills/refresh        -> drop cached sheet rows
//
// Rows come from the configured sheet URLs through a TTL cache; without URLs
// the snapshot written by import is read on every request.
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	dataDir := fs.String("data", "./data", "directory containing CSV files")
	snapshot := fs.String("snapshot", "", "row snapshot used when no sources are configured (default <data>/bills_rows.csv)")
	uiDir := fs.String("ui", "./ui/dist", "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	agg, err := cfg.Aggregator()
	if err != nil {
		return err
	}

	var src sheets.Fetcher
	var cache *sheets.Cache
	if len(cfg.Sources.URLs) > 0 {
		cache = sheets.NewCache(sheets.New(nil, cfg.Token(), cfg.Timeout(), cfg.Sources.URLs...), cfg.CacheTTL())
		src = cache
		slog.Info("web.source", "kind", "sheets", "urls", len(cfg.Sources.URLs), "ttl", cfg.CacheTTL())
	} else {
		path := *snapshot
		if path == "" {
			path = filepath.Join(*dataDir, ccsv.RowsFile)
		}
		src = snapshotSource(path)
		slog.Info("web.source", "kind", "snapshot", "path", path)
	}

	s := &server{
		agg:      agg,
		src:      src,
		cache:    cache,
		exporter: xlsx.NewExporter(cfg.Export),
		rate:     cfg.Export.RatePerHour,
		dataDir:  *dataDir,
	}
	e := s.routes()

	// Static UI (optional)
	indexPath := filepath.Join(*uiDir, "index.html")
	if fi, err := os.Stat(indexPath); err == nil && !fi.IsDir() {
		e.Static("/", *uiDir)
		e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

		// Non-API 404s fall back to index.html for SPA routing
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api") {
				_ = c.File(indexPath)
				return
			}
			e.DefaultHTTPErrorHandler(err, c)
		}
	}

	return e.Start(*addr)
}
