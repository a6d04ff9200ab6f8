package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

// CSVSource serves price bars from a CSV file as if it were an exchange. The file is
// re-read when its modification time changes so a file that is appended to behaves
// like a live feed.
//
// In replay mode every call moves the window forward by one bar, which walks a
// recorded session through the monitor one cycle at a time.
type CSVSource struct {
	path     string
	provider *CSVProvider
	cache    DataCache
	replay   bool

	mu     sync.Mutex
	cursor int
	loaded string // cache key of the current file version
}

// CSVSourceOption customises a CSVSource
type CSVSourceOption func(*CSVSource)

// WithReplay enables bar-by-bar replay
func WithReplay() CSVSourceOption {
	return func(s *CSVSource) {
		s.replay = true
	}
}

// WithCache shares a cache between sources
func WithCache(cache DataCache) CSVSourceOption {
	return func(s *CSVSource) {
		s.cache = cache
	}
}

func NewCSVSource(path string, opts ...CSVSourceOption) *CSVSource {
	s := &CSVSource{
		path:     path,
		provider: NewCSVProvider(),
		cache:    NewMemoryCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVSource) GetName() string {
	return "csv:" + filepath.Base(s.path)
}

// GetKlines returns the trailing limit bars. symbol and interval are not checked
// against the file contents.
func (s *CSVSource) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	bars, err := s.load()
	if err != nil {
		return nil, err
	}

	end := len(bars)
	if s.replay {
		s.mu.Lock()
		if s.cursor == 0 {
			s.cursor = min(limit, len(bars))
		} else if s.cursor < len(bars) {
			s.cursor++
		}
		end = s.cursor
		s.mu.Unlock()
	}

	start := max(0, end-limit)
	return bars[start:end], nil
}

// Exhausted reports whether a replay has reached the last bar
func (s *CSVSource) Exhausted() bool {
	if !s.replay {
		return false
	}
	bars, err := s.load()
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= len(bars)
}

// Ping checks that the data file is readable without moving a replay forward
func (s *CSVSource) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	return f.Close()
}

func (s *CSVSource) load() ([]types.OHLCV, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	key := fmt.Sprintf("%s@%d", s.path, info.ModTime().UnixNano())
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err := s.provider.LoadData(s.path)
	if err != nil {
		return nil, err
	}

	// one version per file: drop the entry of the previous modification
	s.mu.Lock()
	if s.loaded != "" && s.loaded != key {
		s.cache.Delete(s.loaded)
	}
	s.loaded = key
	s.mu.Unlock()

	s.cache.Set(key, result.Data)
	return result.Data, nil
}
