package bybit

import (
	"context"

	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// Source serves price bars from Bybit's v5 kline endpoint
type Source struct {
	client *Client
}

func NewSource(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) GetName() string {
	return "bybit-" + s.client.GetEnvironment()
}

// Ping checks that the Bybit API answers
func (s *Source) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// GetKlines returns up to limit bars ordered oldest first. interval uses conventional
// names such as "15m" or "1h".
func (s *Source) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	code, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	klines, err := s.client.GetKlines(ctx, KlineParams{
		Symbol:   symbol,
		Interval: code,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return ToOHLCV(klines), nil
}
