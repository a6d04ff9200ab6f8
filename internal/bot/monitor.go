package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/internal/config"
	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/exchange"
	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-bot/internal/logger"
	"github.com/ducminhle1904/crypto-signal-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-bot/internal/notifications"
	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// cycleTimeout bounds the market data fetch of one cycle
const cycleTimeout = 30 * time.Second

// Dependencies are the collaborators a Monitor drives. Source is required.
type Dependencies struct {
	Source   exchange.MarketDataSource
	Store    signals.HistoryStore // nil disables persistence
	Notifier notifications.Notifier
	Logger   *logger.Logger
	Health   *monitoring.HealthChecker
	Output   io.Writer        // banner output, os.Stdout when nil
	Clock    func() time.Time // record timestamps, time.Now when nil
}

// Monitor runs the detection cycle: fetch bars, compute indicators, detect, alert and
// persist.
type Monitor struct {
	cfg       *config.MonitorConfig
	source    exchange.MarketDataSource
	engine    *signals.Engine
	alerter   *notifications.SignalAlerter
	logger    *logger.Logger
	health    *monitoring.HealthChecker
	out       io.Writer
	indicator indicators.Config

	mu     sync.Mutex
	cycles int
}

// NewMonitor validates the configuration and wires the engine
func NewMonitor(cfg *config.MonitorConfig, deps Dependencies) (*Monitor, error) {
	if cfg == nil {
		return nil, boterrors.NewConfigurationError("monitor", "new", "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Source == nil {
		return nil, boterrors.NewConfigurationError("monitor", "new", "market data source is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewConsoleNotifier(log)
	}
	health := deps.Health
	if health == nil {
		health = monitoring.NewHealthChecker(cfg.CheckEvery())
	}
	out := deps.Output
	if out == nil {
		out = os.Stdout
	}

	var opts []signals.EngineOption
	if deps.Clock != nil {
		opts = append(opts, signals.WithClock(deps.Clock))
	}
	engine, err := signals.NewEngine(cfg.Symbol, cfg.Thresholds(), deps.Store, opts...)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:       cfg,
		source:    deps.Source,
		engine:    engine,
		alerter:   notifications.NewSignalAlerter(notifier, cfg.TelegramTimeout(), cfg.NotifyNeutral),
		logger:    log,
		health:    health,
		out:       out,
		indicator: cfg.IndicatorConfig(),
	}, nil
}

// Engine exposes the signal engine, mainly for inspection
func (m *Monitor) Engine() *signals.Engine {
	return m.engine
}

// Start restores the persisted history, checks the market data connection and prints
// the banner. A history that cannot be loaded is logged and the monitor starts flat. A
// failed connection check is returned after the banner; the caller decides whether it
// is fatal.
func (m *Monitor) Start(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, m.cfg.HistoryTimeout())
	defer cancel()

	if err := m.engine.Recover(loadCtx); err != nil {
		m.logger.LogError("recover history", err)
		monitoring.RecordError(errorType(err))
	}

	connErr := m.CheckConnection(ctx)

	m.printStartupInfo()
	m.logger.Info("Recovered %d records, position %s", m.engine.Len(), m.engine.Position())
	if path := m.logger.GetLogPath(); path != "" {
		fmt.Fprintf(m.out, "📝 Logs: %s\n", path)
	}
	return connErr
}

// CheckConnection pings the source when it supports it and records the outcome on the
// health checker. Sources without a connectivity check are left to the first cycle.
func (m *Monitor) CheckConnection(ctx context.Context) error {
	pinger, ok := exchange.As[exchange.Pinger](m.source)
	if !ok {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	if err := pinger.Ping(pingCtx); err != nil {
		m.health.SetConnected(false)
		m.health.RecordFailure(err)
		m.logger.LogError("connect "+m.source.GetName(), err)
		monitoring.RecordError(errorType(err))
		return err
	}

	m.health.SetConnected(true)
	m.logger.Info("Connected to %s", m.source.GetName())
	return nil
}

// Stop saves the history a final time. It is safe to call after a cancelled ctx.
func (m *Monitor) Stop(ctx context.Context) {
	m.persist(ctx)
	m.logger.Info("Saved %d records", m.engine.Len())
}

// RunOnce performs one detection cycle and returns its record. Only a market data
// failure fails the cycle; notification and persistence failures are logged.
func (m *Monitor) RunOnce(ctx context.Context) (signals.Record, error) {
	started := time.Now()
	defer func() {
		monitoring.ObserveCycle(m.cfg.Symbol, time.Since(started).Seconds())
	}()

	snap, err := m.latestSnapshot(ctx)
	if err != nil {
		m.logger.LogError("fetch market data", err)
		monitoring.RecordError(errorType(err))
		m.health.RecordFailure(err)
		return signals.Record{}, err
	}

	record := m.engine.Process(snap)
	m.report(record)

	if _, err := m.alerter.Alert(ctx, record); err != nil {
		m.logger.LogError("send alert", err)
		monitoring.RecordError(errorType(err))
	}

	m.mu.Lock()
	m.cycles++
	due := m.cycles%m.cfg.History.SaveEvery == 0
	m.mu.Unlock()
	if due {
		m.persist(ctx)
	}

	m.health.RecordSuccess(snap.Close, record.Kind.String())
	return record, nil
}

// Run executes a cycle immediately and then every check interval until ctx is cancelled
// or a replayed source runs out of bars. Stop runs on exit.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckEvery())
	defer ticker.Stop()

	defer m.Stop(ctx)

	m.logger.Info("Monitoring %s %s every %s", m.cfg.Symbol, m.cfg.Interval, m.cfg.CheckEvery())
	for {
		m.RunOnce(ctx)
		if m.exhausted() {
			m.logger.Info("Data source %s exhausted - stopping", m.source.GetName())
			return nil
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Stop signal received - ending monitor loop")
			return nil
		case <-ticker.C:
		}
	}
}

// latestSnapshot fetches bars and computes the indicators of the newest one
func (m *Monitor) latestSnapshot(ctx context.Context) (*indicators.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	bars, err := m.source.GetKlines(fetchCtx, m.cfg.Symbol, m.cfg.Interval, m.cfg.KlineLimit)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, boterrors.NewMarketDataError(m.source.GetName(), "get_klines",
			errors.New("no price data returned"))
	}

	snap, err := indicators.Latest(bars, m.indicator)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// persist saves the history with a bounded timeout. Every caller continues on failure.
func (m *Monitor) persist(ctx context.Context) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.HistoryTimeout())
	defer cancel()

	if err := m.engine.Persist(saveCtx); err != nil {
		m.logger.LogError("persist history", err)
		monitoring.RecordError(errorType(err))
	}
}

// report logs the cycle status and publishes metrics
func (m *Monitor) report(r signals.Record) {
	snap := r.Indicators
	position := m.engine.Position()

	monitoring.UpdatePrice(m.cfg.Symbol, snap.Close)
	monitoring.UpdateIndicators(m.cfg.Symbol, &snap)
	monitoring.RecordSignal(m.cfg.Symbol, r.Kind, position)

	m.logger.Status("%s", formatStatus(r, position))
	if r.Kind != signals.KindNeutral {
		m.logger.Signal("%s %s strength=%.1f reason=%s",
			notifications.KindEmoji(r.Kind), r.Kind, r.Strength, r.Reason)
	}
}

func (m *Monitor) exhausted() bool {
	e, ok := exchange.As[interface{ Exhausted() bool }](m.source)
	return ok && e.Exhausted()
}

// errorType is the metrics label of an error
func errorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if category, ok := boterrors.CategoryOf(err); ok {
		return strings.ToLower(string(category))
	}
	return "unknown"
}
