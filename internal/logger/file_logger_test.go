package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "ETHUSDT", "15m")

	l.Signal("%s strength=%.2f", "LONG", 15.0)
	l.Status("price=%.2f", 3000.0)
	l.LogError("persist history", errors.New("disk full"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "SIGNAL", entries[0]["tag"])
	assert.Equal(t, "LONG strength=15.00", entries[0]["message"])
	assert.Equal(t, "ETHUSDT", entries[0]["symbol"])
	assert.Equal(t, "15m", entries[0]["interval"])
	assert.Equal(t, "STATUS", entries[1]["tag"])
	assert.Equal(t, "error", entries[2]["level"])
	assert.Equal(t, "disk full", entries[2]["error"])
	assert.Equal(t, "persist history", entries[2]["context"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "ETHUSDT", "15m")

	l.Debug("hidden")
	l.Info("hidden")
	l.Warning("shown %d", 1)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown 1", entries[0]["message"])
}

func TestNewLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger("ETHUSDT", "15m", Options{Dir: dir, Console: io.Discard})
	require.NoError(t, err)

	l.Info("cycle %d", 1)
	path := l.GetLogPath()
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"cycle 1"`)
	assert.Contains(t, string(data), "session ended")
}

func TestLogger_CloseWhileLogging(t *testing.T) {
	l, err := NewLogger("ETHUSDT", "15m", Options{Dir: t.TempDir(), Console: io.Discard})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Info("cycle %d", j)
				l.LogError("fetch", errors.New("timeout"))
			}
		}()
	}
	require.NoError(t, l.Close())
	wg.Wait()

	assert.NotPanics(t, func() { l.Status("after close") })
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("x")
		l.LogError("x", errors.New("y"))
		assert.NoError(t, l.Close())
	})
	assert.Empty(t, l.GetLogPath())
}
