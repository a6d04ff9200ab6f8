package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes one JSON line per entry into a daily log file and mirrors every entry
// to a human readable console stream
type Logger struct {
	symbol   string
	interval string
	logDir   string
	logFile  *os.File
	log      zerolog.Logger
	mu       sync.RWMutex
}

// Tag marks domain entries that sit next to the usual levels
type Tag string

const (
	TagSignal Tag = "SIGNAL"
	TagStatus Tag = "STATUS"
)

// Options configures a file logger
type Options struct {
	Dir     string    // defaults to "logs"
	Level   string    // zerolog level name, defaults to info
	Console io.Writer // defaults to stdout, io.Discard silences it
}

// ParseLevel maps a level name to a zerolog level, falling back to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger creates a file logger for the specified symbol and interval
func NewLogger(symbol, interval string, opts Options) (*Logger, error) {
	logDir := opts.Dir
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := logFilePath(logDir, symbol, interval, time.Now())
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	writer := zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime})

	l := &Logger{
		symbol:   symbol,
		interval: interval,
		logDir:   logDir,
		logFile:  file,
		log:      newZerolog(writer, opts.Level, symbol, interval),
	}

	l.log.Info().Str("log_file", logPath).Msg("signal monitor session started")
	return l, nil
}

// New creates a logger writing JSON lines to w only
func New(w io.Writer, level, symbol, interval string) *Logger {
	return &Logger{
		symbol:   symbol,
		interval: interval,
		log:      newZerolog(w, level, symbol, interval),
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func newZerolog(w io.Writer, level, symbol, interval string) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()
	if symbol != "" {
		ctx = ctx.Str("symbol", symbol)
	}
	if interval != "" {
		ctx = ctx.Str("interval", interval)
	}
	return ctx.Logger().Level(ParseLevel(level))
}

func logFilePath(dir, symbol, interval string, at time.Time) string {
	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, at.Format(time.DateOnly))
	return filepath.Join(dir, filename)
}

// Zerolog exposes the underlying logger for components that log structured fields
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Info().Msgf(format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Error().Msgf(format, args...)
}

// Signal logs a detected signal
func (l *Logger) Signal(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Info().Str("tag", string(TagSignal)).Msgf(format, args...)
}

// Status logs per-cycle market status
func (l *Logger) Status(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Info().Str("tag", string(TagStatus)).Msgf(format, args...)
}

// LogError logs error with context as a single line
func (l *Logger) LogError(context string, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Error().Err(err).Str("context", context).Msg(context + " failed")
}

// LogWarning logs warning with context
func (l *Logger) LogWarning(context string, message string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.log.Warn().Str("context", context).Msgf(message, args...)
}

// Close writes the session footer and closes the log file. Entries logged afterwards
// are discarded.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	l.log.Info().Msg("signal monitor session ended")
	err := l.logFile.Close()
	l.logFile = nil
	l.log = zerolog.Nop()
	return err
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	if l.logDir == "" {
		return ""
	}
	return logFilePath(l.logDir, l.symbol, l.interval, time.Now())
}
