package exchange

import (
	"context"

	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// MarketDataSource supplies closed and forming price bars, ordered oldest first
type MarketDataSource interface {
	GetName() string
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)
}

// Pinger is implemented by sources that can check connectivity without serving bars
type Pinger interface {
	Ping(ctx context.Context) error
}

// As finds the first source in a chain of wrappers that implements T. Wrappers expose
// the source they decorate through Unwrap.
func As[T any](src MarketDataSource) (T, bool) {
	for src != nil {
		if target, ok := src.(T); ok {
			return target, true
		}
		wrapper, ok := src.(interface{ Unwrap() MarketDataSource })
		if !ok {
			break
		}
		src = wrapper.Unwrap()
	}
	var zero T
	return zero, false
}
