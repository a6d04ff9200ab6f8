package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

var (
	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_bot_current_price",
			Help: "Close price of the latest bar",
		},
		[]string{"symbol"},
	)

	// Indicator metrics
	currentRSI = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_bot_rsi",
			Help: "RSI of the latest bar",
		},
		[]string{"symbol"},
	)

	bandPosition = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_bot_band_position",
			Help: "Position of the close inside the Bollinger Bands (0 = lower, 100 = upper)",
		},
		[]string{"symbol"},
	)

	// Signal metrics
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_signals_total",
			Help: "Total number of signals detected",
		},
		[]string{"symbol", "kind"},
	)

	positionState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_bot_position",
			Help: "Tracked position (1 = long, -1 = short, 0 = none)",
		},
		[]string{"symbol"},
	)

	cycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_bot_cycle_duration_seconds",
			Help:    "Duration of detection cycles",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(currentRSI)
	prometheus.MustRegister(bandPosition)
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(positionState)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct {
	next http.Handler
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{next: promhttp.Handler()}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.next.ServeHTTP(w, r)
}

// UpdatePrice updates the current price metric
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateIndicators publishes the readings of a ready snapshot. Unready snapshots are ignored.
func UpdateIndicators(symbol string, snap *indicators.Snapshot) {
	if !snap.Ready() {
		return
	}
	currentRSI.WithLabelValues(symbol).Set(*snap.RSI)
	if pos, ok := snap.BandPosition(); ok {
		bandPosition.WithLabelValues(symbol).Set(pos)
	}
}

// RecordSignal counts a detected signal and publishes the resulting position
func RecordSignal(symbol string, kind signals.Kind, position signals.Position) {
	signalsTotal.WithLabelValues(symbol, kind.String()).Inc()
	positionState.WithLabelValues(symbol).Set(float64(position.Sign()))
}

// ObserveCycle records how long a detection cycle took
func ObserveCycle(symbol string, seconds float64) {
	cycleDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
