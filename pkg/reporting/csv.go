package reporting

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

var historyColumns = []string{
	"Timestamp", "Symbol", "Signal", "Strength", "Reason",
	"Close", "BB_Upper", "BB_Middle", "BB_Lower", "RSI",
}

// WriteHistoryCSV writes one row per record. Undefined indicators are left empty.
func (r *DefaultCSVReporter) WriteHistoryCSV(records []signals.Record, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(historyColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(historyRow(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func historyRow(r signals.Record) []string {
	row := []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Symbol,
		r.Kind.String(),
		formatFloat(r.Strength),
		r.Reason,
		formatFloat(r.Indicators.Close),
		"", "", "", "",
	}
	if band := r.Indicators.Band; band != nil {
		row[6] = formatFloat(band.Upper)
		row[7] = formatFloat(band.Middle)
		row[8] = formatFloat(band.Lower)
	}
	if r.Indicators.RSI != nil {
		row[9] = formatFloat(*r.Indicators.RSI)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
