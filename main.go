package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	cmdcalculate "faculty-bills/command/calculate"
	cmdexport "faculty-bills/command/export"
	cmdimport "faculty-bills/command/import"
	cmdweb "faculty-bills/command/web"
	"faculty-bills/connectors/config"
)

// Guest faculty teaching log to monthly claim.
// Usage:
//   faculty-bills import [-xlsx log.xlsx] [-sheet name] [-out data/bills_rows.csv]
//   faculty-bills calculate [-in data/bills_rows.csv] [-data data]
//   faculty-bills export -month "August 2025" [-faculty "Dr. X"] [-out report.xlsx]
//   faculty-bills web [-addr :8080] [-data ./data]
// Notes:
// - Sources, timezone, extra column names and the claim letterhead come from
//   CONFIG_PATH (YAML or TOML, default ./config.yml); a .env file is loaded first.
// - LOG_LEVEL selects debug|info|warn|error (default info).

const usage = `usage: faculty-bills import [-xlsx <file>] [-sheet <name>] [-out <csv>] | calculate [-in <csv>] [-data <dir>] | export -month "<Month YYYY>" [-faculty <name>] [-out <file>] | web [-addr :8080] [-data ./data]
ENV: CONFIG_PATH points to a YAML/TOML config (default ./config.yml); BILLS_SOURCE_URLS, BILLS_SOURCE_TOKEN, BILLS_TIMEZONE, BILLS_RATE_PER_HOUR override it; LOG_LEVEL sets verbosity`

func logLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// setupLogging loads .env and installs the default text logger on stderr.
// .env may carry LOG_LEVEL, so it is loaded before the level is read.
func setupLogging() slog.Level {
	config.LoadEnv()
	lvl := logLevel()
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return lvl
}

func main() {
	args := os.Args
	setupLogging()

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		var run func([]string) error
		switch sub {
		case "import":
			run = cmdimport.Run
		case "calculate":
			run = cmdcalculate.Run
		case "export":
			run = cmdexport.Run
		case "web":
			run = cmdweb.Run
		}
		if run != nil {
			if err := run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(2)
}
