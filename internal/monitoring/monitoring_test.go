package monitoring

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestHealthChecker_Lifecycle(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 11, 27, 10, 0, 0, 0, time.UTC)}
	h := newHealthChecker(time.Minute, clock.now)

	assert.Equal(t, "degraded", h.Status().Status, "not connected before the first cycle")

	h.RecordSuccess(3000, "LONG")
	st := h.Status()
	assert.Equal(t, "healthy", st.Status)
	assert.Equal(t, 3000.0, st.LastPrice)
	assert.Equal(t, "LONG", st.LastSignal)

	clock.t = clock.t.Add(4 * time.Minute)
	assert.Equal(t, "degraded", h.Status().Status)

	for i := 0; i < unhealthyAfter; i++ {
		h.RecordFailure(errors.New("timeout"))
	}
	st = h.Status()
	assert.Equal(t, "unhealthy", st.Status)
	assert.Len(t, st.Errors, unhealthyAfter)

	h.RecordSuccess(3010, "NEUTRAL")
	assert.Equal(t, "healthy", h.Status().Status)
}

func TestHealthChecker_KeepsRecentErrors(t *testing.T) {
	h := NewHealthChecker(time.Minute)
	for i := 0; i < maxRecentErrors+5; i++ {
		h.RecordFailure(errors.New("boom"))
	}
	assert.Len(t, h.Status().Errors, maxRecentErrors)
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthChecker(time.Minute)
	srv := httptest.NewServer(NewMux(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	h.RecordSuccess(2950.5, "NEUTRAL")
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "healthy", st.Status)
	assert.Equal(t, 2950.5, st.LastPrice)
}

func TestMetrics(t *testing.T) {
	rsi := 25.0
	snap := &indicators.Snapshot{
		Close: 2950,
		Band:  &indicators.Band{Upper: 3100, Middle: 3000, Lower: 2900},
		RSI:   &rsi,
	}

	UpdatePrice("TESTUSDT", 2950)
	UpdateIndicators("TESTUSDT", snap)
	UpdateIndicators("TESTUSDT", &indicators.Snapshot{Close: 1})
	RecordSignal("TESTUSDT", signals.KindLong, signals.PositionLong)
	RecordSignal("TESTUSDT", signals.KindLong, signals.PositionLong)
	RecordError("market_data")

	assert.Equal(t, 2950.0, testutil.ToFloat64(currentPrice.WithLabelValues("TESTUSDT")))
	assert.Equal(t, 25.0, testutil.ToFloat64(currentRSI.WithLabelValues("TESTUSDT")))
	assert.Equal(t, 25.0, testutil.ToFloat64(bandPosition.WithLabelValues("TESTUSDT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(signalsTotal.WithLabelValues("TESTUSDT", "LONG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(positionState.WithLabelValues("TESTUSDT")))

	srv := httptest.NewServer(NewMux(NewHealthChecker(time.Minute)))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `signal_bot_signals_total{kind="LONG",symbol="TESTUSDT"} 2`)
}
