package bybit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func klineResponse(rows ...[]string) *bybit_api.ServerResponse {
	list := make([]interface{}, len(rows))
	for i, r := range rows {
		list[i] = r
	}
	return &bybit_api.ServerResponse{
		RetCode: 0,
		RetMsg:  "OK",
		Result: map[string]interface{}{
			"symbol":   "ETHUSDT",
			"category": "linear",
			"list":     list,
		},
	}
}

func fastRetry() *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.JitterEnabled = false
	return &cfg
}

func testClient(fetch klineFetcher) *Client {
	c := NewClient(Config{Category: "linear", Retry: fastRetry()})
	c.fetch = fetch
	return c
}

func TestParseInterval(t *testing.T) {
	tests := map[string]KlineInterval{
		"1m":  Interval1m,
		"15m": Interval15m,
		"1h":  Interval1h,
		"4h":  Interval4h,
		"1d":  Interval1d,
		"1M":  Interval1M,
	}
	for name, want := range tests {
		got, err := ParseInterval(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseInterval("7m")
	assert.Error(t, err)
}

func TestParseKlineResponse_SortsAscending(t *testing.T) {
	resp := klineResponse(
		[]string{"1764238500000", "3010", "3020", "3000", "3015", "12.5", "37687.5"},
		[]string{"1764237600000", "3000", "3012", "2995", "3010", "10", "30100"},
		[]string{"bad"},
	)

	klines, err := parseKlineResponse(resp)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.True(t, klines[0].StartTime.Before(klines[1].StartTime))
	assert.Equal(t, 3010.0, klines[0].ClosePrice)
	assert.Equal(t, 3015.0, klines[1].ClosePrice)
	assert.Equal(t, time.UTC, klines[0].StartTime.Location())

	bars := ToOHLCV(klines)
	assert.Equal(t, 3015.0, bars[1].Close)
	assert.Equal(t, 12.5, bars[1].Volume)
}

func TestParseKlineResponse_APIError(t *testing.T) {
	_, err := parseKlineResponse(&bybit_api.ServerResponse{RetCode: ErrCodeParamsError, RetMsg: "params error"})

	var bybitErr *BybitError
	require.ErrorAs(t, err, &bybitErr)
	assert.Equal(t, ErrCodeParamsError, bybitErr.Code)

	_, err = parseKlineResponse("not a response")
	assert.Error(t, err)
}

func TestGetKlines_RetriesRateLimit(t *testing.T) {
	calls := 0
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		calls++
		assert.Equal(t, "linear", params["category"])
		assert.Equal(t, "15", params["interval"])
		if calls < 3 {
			return &bybit_api.ServerResponse{RetCode: ErrCodeRateLimitExceeded, RetMsg: "Too many visits!"}, nil
		}
		return klineResponse([]string{"1764237600000", "3000", "3012", "2995", "3010", "10", "30100"}), nil
	})

	klines, err := c.GetKlines(context.Background(), KlineParams{Symbol: "ETHUSDT", Interval: Interval15m, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, klines, 1)
	assert.Equal(t, 3, calls)
}

func TestGetKlines_DoesNotRetryParamsError(t *testing.T) {
	calls := 0
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		calls++
		return &bybit_api.ServerResponse{RetCode: ErrCodeSymbolNotFound, RetMsg: "symbol invalid"}, nil
	})

	_, err := c.GetKlines(context.Background(), KlineParams{Symbol: "NOPE", Interval: Interval15m})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetKlines_GivesUp(t *testing.T) {
	calls := 0
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		calls++
		return nil, NewBybitError(503, "Service Unavailable")
	})

	_, err := c.GetKlines(context.Background(), KlineParams{Symbol: "ETHUSDT", Interval: Interval15m})
	assert.Error(t, err)
	assert.Equal(t, DefaultRetryConfig().MaxRetries+1, calls)
}

func TestGetKlines_ClampsLimit(t *testing.T) {
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		assert.Equal(t, 1000, params["limit"])
		return klineResponse(), nil
	})

	klines, err := c.GetKlines(context.Background(), KlineParams{Symbol: "ETHUSDT", Interval: Interval1h, Limit: 5000})
	require.NoError(t, err)
	assert.Empty(t, klines)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryWithConfig(ctx, func() error {
		calls++
		return errors.New("x")
	}, *fastRetry())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, calculateDelay(0, cfg))
	assert.Equal(t, 2*time.Second, calculateDelay(1, cfg))
	assert.Equal(t, 4*time.Second, calculateDelay(2, cfg))
	assert.Equal(t, 5*time.Second, calculateDelay(3, cfg))
}

func TestSource(t *testing.T) {
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		assert.Equal(t, "60", params["interval"])
		return klineResponse([]string{"1764237600000", "3000", "3012", "2995", "3010", "10", "30100"}), nil
	})
	s := NewSource(c)

	assert.Equal(t, "bybit-mainnet", s.GetName())

	bars, err := s.GetKlines(context.Background(), "ETHUSDT", "1h", 50)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 3010.0, bars[0].Close)

	_, err = s.GetKlines(context.Background(), "ETHUSDT", "2d", 50)
	assert.Error(t, err)
}

func TestGetKlineHistory_Pages(t *testing.T) {
	from := time.UnixMilli(0).UTC()
	end := from.Add(1500 * time.Minute)

	// one bar per minute, newest first like the API
	var pages int
	c := testClient(func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		pages++
		assert.Equal(t, 1000, params["limit"])
		endMs := params["end"].(int64)
		startMs := params["start"].(int64)

		var rows [][]string
		for ms := endMs - endMs%60000; ms >= startMs && len(rows) < 1000; ms -= 60000 {
			p := strconv.FormatInt(1000+ms/60000, 10)
			rows = append(rows, []string{strconv.FormatInt(ms, 10), p, p, p, p, "1", "1"})
		}
		return klineResponse(rows...), nil
	})

	klines, err := c.GetKlineHistory(context.Background(), KlineParams{
		Symbol:   "ETHUSDT",
		Interval: Interval1m,
		End:      &end,
	}, from)
	require.NoError(t, err)

	assert.Equal(t, 2, pages)
	require.Len(t, klines, 1501)
	assert.Equal(t, from, klines[0].StartTime)
	assert.Equal(t, end, klines[len(klines)-1].StartTime)
	for i := 1; i < len(klines); i++ {
		assert.Equal(t, time.Minute, klines[i].StartTime.Sub(klines[i-1].StartTime))
	}
}

func TestClient_Ping(t *testing.T) {
	c := testClient(nil)
	c.serverTime = func(ctx context.Context) (interface{}, error) {
		return &bybit_api.ServerResponse{RetCode: 0, RetMsg: "OK"}, nil
	}
	assert.NoError(t, NewSource(c).Ping(context.Background()))

	c.serverTime = func(ctx context.Context) (interface{}, error) {
		return &bybit_api.ServerResponse{RetCode: ErrCodeServerTimeout, RetMsg: "Server Timeout"}, nil
	}
	var bybitErr *BybitError
	require.ErrorAs(t, c.Ping(context.Background()), &bybitErr)
	assert.Equal(t, ErrCodeServerTimeout, bybitErr.Code)

	c.serverTime = func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")
}
