package reporting

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

const (
	signalsSheet = "Signals"
	summarySheet = "Summary"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteHistoryXLSX writes a workbook with the full history and a summary sheet
func (r *DefaultExcelReporter) WriteHistoryXLSX(records []signals.Record, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), signalsSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSignalsSheet(fx, records, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, Summarize(records), styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: fill("2F4F4F"),
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	if styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: border}); err != nil {
		return styles, err
	}

	// Two decimals, right aligned
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    2,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	if styles.LongStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "008000"},
		Fill:   fill("E8F5E9"),
		Border: border,
	}); err != nil {
		return styles, err
	}
	if styles.ShortStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "C00000"},
		Fill:   fill("FDECEA"),
		Border: border,
	}); err != nil {
		return styles, err
	}
	if styles.ExitStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: "7F6000"},
		Fill:   fill("FFF8E1"),
		Border: border,
	}); err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   fill("E6F3FF"),
		Border: border,
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeSignalsSheet(fx *excelize.File, records []signals.Record, styles ExcelStyles) error {
	for i, name := range historyColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(signalsSheet, cell, name); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(historyColumns), 1)
	if err := fx.SetCellStyle(signalsSheet, "A1", last, styles.HeaderStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.Timestamp.UTC().Format(time.DateTime),
			rec.Symbol,
			rec.Kind.String(),
			rec.Strength,
			rec.Reason,
			rec.Indicators.Close,
			nil, nil, nil, nil,
		}
		if band := rec.Indicators.Band; band != nil {
			values[6], values[7], values[8] = band.Upper, band.Middle, band.Lower
		}
		if rec.Indicators.RSI != nil {
			values[9] = *rec.Indicators.RSI
		}

		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetSheetRow(signalsSheet, start, &values); err != nil {
			return err
		}

		end, _ := excelize.CoordinatesToCellName(len(historyColumns), row)
		if err := fx.SetCellStyle(signalsSheet, start, end, styles.BaseStyle); err != nil {
			return err
		}
		if err := fx.SetCellStyle(signalsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styles.NumberStyle); err != nil {
			return err
		}
		if err := fx.SetCellStyle(signalsSheet, fmt.Sprintf("F%d", row), end, styles.NumberStyle); err != nil {
			return err
		}
		if style, ok := kindStyle(rec.Kind, styles); ok {
			if err := fx.SetCellStyle(signalsSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), style); err != nil {
				return err
			}
		}
	}

	widths := map[string]float64{"A": 20, "B": 12, "C": 13, "D": 10, "E": 60, "F": 12, "G": 12, "H": 12, "I": 12, "J": 8}
	for col, width := range widths {
		if err := fx.SetColWidth(signalsSheet, col, col, width); err != nil {
			return err
		}
	}

	if len(records) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(historyColumns), len(records)+1)
		if err := fx.AutoFilter(signalsSheet, "A1:"+lastCell, nil); err != nil {
			return err
		}
	}

	return fx.SetPanes(signalsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, summary Summary, styles ExcelStyles) error {
	if err := fx.SetSheetRow(summarySheet, "A1", &[]interface{}{"Metric", "Value"}); err != nil {
		return err
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "B1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, row := range summaryRows(summary) {
		n := i + 2
		if err := fx.SetSheetRow(summarySheet, fmt.Sprintf("A%d", n), &[]interface{}{row[0], row[1]}); err != nil {
			return err
		}
		if err := fx.SetCellStyle(summarySheet, fmt.Sprintf("A%d", n), fmt.Sprintf("A%d", n), styles.SummaryStyle); err != nil {
			return err
		}
		if err := fx.SetCellStyle(summarySheet, fmt.Sprintf("B%d", n), fmt.Sprintf("B%d", n), styles.BaseStyle); err != nil {
			return err
		}
	}

	if err := fx.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	return fx.SetColWidth(summarySheet, "B", "B", 24)
}

func kindStyle(k signals.Kind, styles ExcelStyles) (int, bool) {
	switch k {
	case signals.KindLong:
		return styles.LongStyle, true
	case signals.KindShort:
		return styles.ShortStyle, true
	case signals.KindExitLong, signals.KindExitShort:
		return styles.ExitStyle, true
	default:
		return 0, false
	}
}

// Package-level convenience functions
func WriteHistoryXLSX(records []signals.Record, path string) error {
	return NewDefaultExcelReporter().WriteHistoryXLSX(records, path)
}

func WriteHistoryCSV(records []signals.Record, path string) error {
	return NewDefaultCSVReporter().WriteHistoryCSV(records, path)
}
