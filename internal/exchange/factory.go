package exchange

import (
	"context"
	"fmt"
	"strings"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-bot/pkg/data"
	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// SourceConfig selects and configures a market data source
type SourceConfig struct {
	Name     string // bybit or csv
	Category string // Bybit category
	Testnet  bool
	DataFile string // CSV file
	Replay   bool   // CSV bar-by-bar replay
}

// SupportedSources lists the names accepted by NewMarketDataSource
func SupportedSources() []string {
	return []string{"bybit", "csv"}
}

// NewMarketDataSource creates the configured source. Every fetch failure it returns
// is a categorised market data error.
func NewMarketDataSource(config SourceConfig) (MarketDataSource, error) {
	switch strings.ToLower(strings.TrimSpace(config.Name)) {
	case "bybit":
		client := bybit.NewClient(bybit.Config{Category: config.Category, Testnet: config.Testnet})
		return categorized{bybit.NewSource(client)}, nil
	case "csv":
		if config.DataFile == "" {
			return nil, boterrors.NewConfigurationError("exchange", "new_source", "csv source requires a data file")
		}
		var opts []data.CSVSourceOption
		if config.Replay {
			opts = append(opts, data.WithReplay())
		}
		return categorized{data.NewCSVSource(config.DataFile, opts...)}, nil
	default:
		return nil, boterrors.NewConfigurationError("exchange", "new_source",
			fmt.Sprintf("market data source %q is not supported (supported: %s)",
				config.Name, strings.Join(SupportedSources(), ", ")))
	}
}

// categorized tags source errors so callers can tell network trouble from bad data
type categorized struct {
	MarketDataSource
}

func (c categorized) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	bars, err := c.MarketDataSource.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, boterrors.CategorizeError(err, c.GetName(), "get_klines").
			WithContext("symbol", symbol).
			WithContext("interval", interval)
	}
	return bars, nil
}

// Unwrap returns the underlying source
func (c categorized) Unwrap() MarketDataSource {
	return c.MarketDataSource
}

// Ping checks the underlying source when it supports a connectivity check
func (c categorized) Ping(ctx context.Context) error {
	pinger, ok := As[Pinger](c.MarketDataSource)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		return boterrors.CategorizeError(err, c.GetName(), "ping")
	}
	return nil
}
