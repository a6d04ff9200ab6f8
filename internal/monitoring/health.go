package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	maxRecentErrors = 10
	// failures in a row that mark the monitor unhealthy
	unhealthyAfter = 3
)

// HealthChecker tracks the outcome of detection cycles for the /health endpoint
type HealthChecker struct {
	mu          sync.RWMutex
	startTime   time.Time
	staleAfter  time.Duration
	lastSuccess time.Time
	lastPrice   float64
	lastSignal  string
	isConnected bool
	failures    int
	errors      []string
	now         func() time.Time
}

type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	LastSuccess time.Time `json:"last_success"`
	LastPrice   float64   `json:"last_price"`
	LastSignal  string    `json:"last_signal,omitempty"`
	IsConnected bool      `json:"is_connected"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

// NewHealthChecker reports degraded when no cycle succeeded for three check intervals
func NewHealthChecker(checkInterval time.Duration) *HealthChecker {
	return newHealthChecker(checkInterval, time.Now)
}

func newHealthChecker(checkInterval time.Duration, now func() time.Time) *HealthChecker {
	return &HealthChecker{
		startTime:  now(),
		staleAfter: 3 * checkInterval,
		errors:     make([]string, 0),
		now:        now,
	}
}

// RecordSuccess notes a completed cycle
func (h *HealthChecker) RecordSuccess(price float64, signal string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSuccess = h.now()
	h.lastPrice = price
	h.lastSignal = signal
	h.isConnected = true
	h.failures = 0
}

// RecordFailure notes a failed cycle
func (h *HealthChecker) RecordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures++
	h.errors = append(h.errors, h.now().UTC().Format(time.RFC3339)+" "+err.Error())
	if len(h.errors) > maxRecentErrors {
		h.errors = h.errors[len(h.errors)-maxRecentErrors:]
	}
}

// SetConnected records the outcome of the startup connection check
func (h *HealthChecker) SetConnected(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isConnected = connected
}

// Status returns the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	status := "healthy"
	switch {
	case h.failures >= unhealthyAfter:
		status = "unhealthy"
	case !h.isConnected:
		status = "degraded"
	case h.staleAfter > 0 && now.Sub(h.lastSuccess) > h.staleAfter:
		status = "degraded"
	}

	return HealthStatus{
		Status:      status,
		Timestamp:   now,
		LastSuccess: h.lastSuccess,
		LastPrice:   h.lastPrice,
		LastSignal:  h.lastSignal,
		IsConnected: h.isConnected,
		Uptime:      now.Sub(h.startTime).Truncate(time.Second).String(),
		Errors:      append([]string(nil), h.errors...),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	code := http.StatusOK
	switch health.Status {
	case "degraded":
		code = http.StatusServiceUnavailable
	case "unhealthy":
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}

// NewMux serves /metrics and /health
func NewMux(health *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewMetricsHandler())
	mux.Handle("/health", health)
	return mux
}
