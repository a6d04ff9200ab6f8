package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// PrintHistory renders the last tail records as a table, newest last
func (r *DefaultConsoleReporter) PrintHistory(w io.Writer, records []signals.Record, tail int) {
	shown := Tail(records, tail)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("SIGNAL HISTORY %d/%d", len(shown), len(records)))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Symbol", "Signal", "Price", "RSI", "Strength", "Reason"})

	for _, rec := range shown {
		t.AppendRow(table.Row{
			rec.Timestamp.Format(time.DateTime),
			rec.Symbol,
			colorKind(rec.Kind),
			fmt.Sprintf("%.2f", rec.Indicators.Close),
			formatRSI(rec),
			fmt.Sprintf("%.1f", rec.Strength),
			rec.Reason,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 60},
	})
	t.Render()
}

// PrintSummary renders counts per kind and the replayed position
func (r *DefaultConsoleReporter) PrintSummary(w io.Writer, summary Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("SUMMARY")
	t.SetStyle(table.StyleRounded)

	for _, row := range summaryRows(summary) {
		t.AppendRow(table.Row{row[0], row[1]})
	}
	t.Render()
}

// summaryRows is shared by the console and the workbook
func summaryRows(s Summary) [][2]string {
	rows := [][2]string{
		{"Symbol", orDash(s.Symbol)},
		{"Records", fmt.Sprintf("%d", s.Total)},
	}
	for _, k := range signals.Kinds {
		rows = append(rows, [2]string{k.String(), fmt.Sprintf("%d", s.Counts[k])})
	}
	first, last := "-", "-"
	if s.Total > 0 {
		first = s.First.Format(time.DateTime)
		last = s.Last.Format(time.DateTime)
	}
	return append(rows,
		[2]string{"Avg entry strength", fmt.Sprintf("%.2f", s.AvgStrength)},
		[2]string{"First", first},
		[2]string{"Last", last},
		[2]string{"Position", s.Position.String()},
	)
}

func colorKind(k signals.Kind) string {
	switch k {
	case signals.KindLong:
		return text.FgGreen.Sprint(k.String())
	case signals.KindShort:
		return text.FgRed.Sprint(k.String())
	case signals.KindExitLong, signals.KindExitShort:
		return text.FgYellow.Sprint(k.String())
	default:
		return k.String()
	}
}

func formatRSI(r signals.Record) string {
	if r.Indicators.RSI == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *r.Indicators.RSI)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Package-level convenience functions
func PrintHistory(w io.Writer, records []signals.Record, tail int) {
	NewDefaultConsoleReporter().PrintHistory(w, records, tail)
}

func PrintSummary(w io.Writer, summary Summary) {
	NewDefaultConsoleReporter().PrintSummary(w, summary)
}
