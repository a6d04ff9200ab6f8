package reporting

import (
	"io"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// Package reporting renders the persisted signal history

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	PrintHistory(w io.Writer, records []signals.Record, tail int)
	PrintSummary(w io.Writer, summary Summary)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteHistoryCSV(records []signals.Record, path string) error
	WriteHistoryXLSX(records []signals.Record, path string) error
}

// ExcelStyles holds the style ids of a workbook
type ExcelStyles struct {
	HeaderStyle  int
	BaseStyle    int
	NumberStyle  int
	LongStyle    int
	ShortStyle   int
	ExitStyle    int
	SummaryStyle int
}
