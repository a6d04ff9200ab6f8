package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// ErrNoData is returned when a file holds no usable rows
var ErrNoData = errors.New("no usable price data")

// CSVProvider loads price bars from CSV files
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadResult is the outcome of reading one file
type LoadResult struct {
	Data    []types.OHLCV
	Skipped int // rows dropped for bad columns, timestamps or prices
}

// LoadData reads a CSV file with a header row. Rows that cannot be parsed or fail the
// OHLC sanity checks are skipped; the result is sorted and de-duplicated.
func (p *CSVProvider) LoadData(filename string) (LoadResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	result, err := p.read(file)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", filename, err)
	}
	return result, nil
}

func (p *CSVProvider) read(r io.Reader) (LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return LoadResult{}, ErrNoData
		}
		return LoadResult{}, err
	}

	var result LoadResult
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return LoadResult{}, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		bar, ok := p.parseRow(record)
		if !ok {
			result.Skipped++
			continue
		}
		result.Data = append(result.Data, bar)
	}

	if len(result.Data) == 0 {
		return LoadResult{}, ErrNoData
	}

	result.Data = RemoveDuplicates(SortByTimestamp(result.Data))
	return result, nil
}

func (p *CSVProvider) parseRow(record []string) (types.OHLCV, bool) {
	format := p.format
	if len(record) < format.MinColumns {
		return types.OHLCV{}, false
	}

	timestamp, err := p.parseTimestamp(record[format.TimestampCol])
	if err != nil {
		return types.OHLCV{}, false
	}

	var values [5]float64
	for i, col := range []int{format.OpenCol, format.HighCol, format.LowCol, format.CloseCol, format.VolumeCol} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return types.OHLCV{}, false
		}
		values[i] = v
	}

	bar := types.OHLCV{
		Timestamp: timestamp,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}
	return bar, validBar(bar)
}

func (p *CSVProvider) parseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	if ms, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if ts, err := time.Parse(p.format.DateFormat, cell); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, cell)
}

func validBar(c types.OHLCV) bool {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return false
	}
	return c.High >= max(c.Open, c.Close, c.Low) && c.Low <= min(c.Open, c.Close, c.High)
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return ErrNoData
	}

	for i, candle := range data {
		if !validBar(candle) {
			return fmt.Errorf("invalid price data at index %d: open=%.4f high=%.4f low=%.4f close=%.4f",
				i, candle.Open, candle.High, candle.Low, candle.Close)
		}
	}
	return ValidateTimeSequence(data)
}
