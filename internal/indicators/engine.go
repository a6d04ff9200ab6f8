package indicators

import (
	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// Compute returns one snapshot per bar. The first RequiredPeriods()-1 snapshots carry
// no band and no RSI. The input is not modified.
func Compute(data []types.OHLCV, cfg Config) ([]Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	bb := NewBollingerBands(cfg.BandPeriod, cfg.BandStdDev)
	rsi := NewRSI(cfg.RSIPeriod)
	required := cfg.RequiredPeriods()

	snapshots := make([]Snapshot, len(data))
	for i, bar := range data {
		snapshots[i] = Snapshot{
			Timestamp: bar.Timestamp,
			Close:     bar.Close,
		}
		if i+1 < required {
			continue
		}

		window := closes[:i+1]
		band, err := bb.Calculate(window)
		if err != nil {
			continue
		}
		value, err := rsi.Calculate(window)
		if err != nil {
			continue
		}

		snapshots[i].Band = &band
		snapshots[i].RSI = &value
	}

	return snapshots, nil
}

// Latest computes the series and returns its last snapshot, or nil for an empty series
func Latest(data []types.OHLCV, cfg Config) (*Snapshot, error) {
	snapshots, err := Compute(data, cfg)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[len(snapshots)-1], nil
}
