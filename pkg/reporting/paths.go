package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
	"github.com/ducminhle1904/crypto-signal-bot/internal/state"
)

// EnsureDirectoryExists creates the parent directory of path if it doesn't exist
func EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Export writes records in the format named by the file extension: .csv, .xlsx or .json
func Export(records []signals.Record, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewDefaultCSVReporter().WriteHistoryCSV(records, path)
	case ".xlsx":
		return NewDefaultExcelReporter().WriteHistoryXLSX(records, path)
	case ".json":
		data, err := state.Encode(records)
		if err != nil {
			return err
		}
		if err := EnsureDirectoryExists(path); err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unsupported export format %q (use .csv, .xlsx or .json)", filepath.Ext(path))
	}
}
