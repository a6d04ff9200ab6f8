package signals

import (
	"context"
	"slices"
	"sync"
	"time"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
)

// HistoryStore persists the whole signal history as one unit
type HistoryStore interface {
	// Save overwrites the stored history. A failed or cancelled save must leave the
	// previously stored history readable.
	Save(ctx context.Context, records []Record) error
	// Load returns the stored history, or nil when nothing has been stored yet
	Load(ctx context.Context) ([]Record, error)
}

// Engine couples a Detector with an append-only history. All methods are safe for
// concurrent use; one mutex covers detect, record and persist so history order is
// always detection order.
type Engine struct {
	mu       sync.Mutex
	symbol   string
	detector *Detector
	history  []Record
	store    HistoryStore
	now      func() time.Time
}

// EngineOption customises an Engine
type EngineOption func(*Engine)

// WithClock overrides the clock used to stamp records
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine for one symbol stream. store may be nil, in which case
// Persist and Recover are no-ops.
func NewEngine(symbol string, thresholds Thresholds, store HistoryStore, opts ...EngineOption) (*Engine, error) {
	if symbol == "" {
		return nil, boterrors.NewConfigurationError("signals", "new_engine", "symbol is required")
	}

	detector, err := NewDetector(thresholds)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		symbol:   symbol,
		detector: detector,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Symbol returns the stream the engine evaluates
func (e *Engine) Symbol() string {
	return e.symbol
}

// Detect evaluates a snapshot and updates the position without recording it
func (e *Engine) Detect(snap *indicators.Snapshot) Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Detect(e.symbol, snap, e.now())
}

// Record appends a record to the history unconditionally
func (e *Engine) Record(r Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, r)
}

// Process detects and records in one step
func (e *Engine) Process(snap *indicators.Snapshot) Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.detector.Detect(e.symbol, snap, e.now())
	e.history = append(e.history, r)
	return r
}

// Step detects, records and persists under one lock. The record is always kept in
// memory; a persistence failure is returned alongside it.
func (e *Engine) Step(ctx context.Context, snap *indicators.Snapshot) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.detector.Detect(e.symbol, snap, e.now())
	e.history = append(e.history, r)
	return r, e.persistLocked(ctx)
}

// Persist writes the whole in-memory history to the store
func (e *Engine) Persist(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked(ctx)
}

func (e *Engine) persistLocked(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.history); err != nil {
		return boterrors.NewPersistenceError("signals", "persist", err).
			WithContext("records", len(e.history))
	}
	return nil
}

// Recover replaces the in-memory history with the stored one and rebuilds the position
// by replaying it forward. On a load failure the engine starts empty and flat.
func (e *Engine) Recover(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = nil
	e.detector.restore(PositionNone)

	if e.store == nil {
		return nil
	}

	records, err := e.store.Load(ctx)
	if err != nil {
		return boterrors.NewPersistenceError("signals", "recover", err)
	}

	e.history = records
	e.detector.restore(Replay(records))
	return nil
}

// History returns a copy of the recorded history in detection order
func (e *Engine) History() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

// Len returns the number of recorded signals
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// Position returns the currently held position
func (e *Engine) Position() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Position()
}

// Thresholds returns the detector's RSI levels
func (e *Engine) Thresholds() Thresholds {
	return e.detector.Thresholds()
}
