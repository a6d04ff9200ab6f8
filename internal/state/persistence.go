package state

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

// DefaultHistoryFile is used when no path is configured
const DefaultHistoryFile = "signals_history.json"

// HistoryFile stores the signal history as one indented JSON array. Every save replaces
// the whole file through a temp file and an atomic rename, so a reader only ever sees
// the previous or the new complete history.
type HistoryFile struct {
	path string

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	hasHash  bool
	now      func() time.Time
}

// NewHistoryFile creates a store at path
func NewHistoryFile(path string) *HistoryFile {
	if path == "" {
		path = DefaultHistoryFile
	}
	return &HistoryFile{path: path, now: time.Now}
}

// Path returns the history file location
func (h *HistoryFile) Path() string {
	return h.path
}

// Encode renders records the way they are stored on disk
func Encode(records []signals.Record) ([]byte, error) {
	if records == nil {
		records = []signals.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a stored history
func Decode(data []byte) ([]signals.Record, error) {
	var records []signals.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return records, nil
}

// Save overwrites the history file. Unchanged content is not rewritten.
func (h *HistoryFile) Save(ctx context.Context, records []signals.Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sum := sha256.Sum256(data)
	if h.hasHash && sum == h.lastHash {
		if _, err := os.Stat(h.path); err == nil {
			return nil
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := h.writeAtomic(ctx, data); err != nil {
		return err
	}

	h.lastHash = sum
	h.hasHash = true
	return nil
}

func (h *HistoryFile) writeAtomic(ctx context.Context, data []byte) error {
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(h.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp history file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set history file mode: %w", err)
	}

	// Last chance to abandon the write with the old file untouched
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, h.path); err != nil {
		return fmt.Errorf("failed to move history file: %w", err)
	}
	committed = true
	return nil
}

// Load reads the history file. A missing file yields an empty history. A file that
// cannot be parsed is moved aside to <path>.corrupt-<timestamp> so the next save does
// not overwrite it, and an error is returned.
func (h *HistoryFile) Load(ctx context.Context) ([]signals.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		h.hasHash = false
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	records, err := Decode(data)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%s", h.path, h.now().UTC().Format("20060102T150405Z"))
		if renameErr := os.Rename(h.path, aside); renameErr != nil {
			return nil, fmt.Errorf("%w (could not move it aside: %v)", err, renameErr)
		}
		h.hasHash = false
		return nil, fmt.Errorf("%w (moved to %s)", err, aside)
	}

	h.lastHash = sha256.Sum256(data)
	h.hasHash = true
	return records, nil
}

// ReadHistory loads a history file without a store, for read-only tools
func ReadHistory(path string) ([]signals.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return Decode(data)
}
