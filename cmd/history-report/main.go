package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ducminhle1904/crypto-signal-bot/cmd/common"
	"github.com/ducminhle1904/crypto-signal-bot/internal/state"
	"github.com/ducminhle1904/crypto-signal-bot/pkg/reporting"
)

const appName = "history-report"

func main() {
	var (
		historyFile = flag.String("history", state.DefaultHistoryFile, "Signal history file")
		out         = flag.String("out", "", "Export the full history to .csv, .xlsx or .json")
		tail        = flag.Int("tail", 20, "Records shown in the console table (0 = all)")
		version     = flag.Bool("version", false, "Show version information")
	)

	common.NewUsageFormatter(appName, "Show and export the persisted signal history").
		AddExample(appName+" -tail 50", "Last 50 signals").
		AddExample(appName+" -out results/signals.xlsx", "Workbook with a summary sheet").
		Install()
	flag.Parse()

	if *version {
		common.PrintVersion(appName)
		return
	}

	records, err := reporting.LoadHistory(*historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	reporting.PrintHistory(os.Stdout, records, *tail)
	fmt.Println()
	reporting.PrintSummary(os.Stdout, reporting.Summarize(records))

	if *out != "" {
		if err := reporting.Export(records, *out); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n📄 Exported %d records to %s\n", len(records), *out)
	}
}
