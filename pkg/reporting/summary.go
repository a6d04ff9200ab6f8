package reporting

import (
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
	"github.com/ducminhle1904/crypto-signal-bot/internal/state"
)

// Summary aggregates a signal history
type Summary struct {
	Symbol      string
	Total       int
	Counts      map[signals.Kind]int
	First       time.Time
	Last        time.Time
	AvgStrength float64 // mean strength of entry signals
	Position    signals.Position
}

// Summarize counts records per kind and replays the history to the position it implies
func Summarize(records []signals.Record) Summary {
	s := Summary{
		Total:    len(records),
		Counts:   make(map[signals.Kind]int, len(signals.Kinds)),
		Position: signals.Replay(records),
	}
	for _, k := range signals.Kinds {
		s.Counts[k] = 0
	}
	if len(records) == 0 {
		return s
	}

	s.Symbol = records[len(records)-1].Symbol
	s.First = records[0].Timestamp
	s.Last = records[len(records)-1].Timestamp

	var entries int
	var strength float64
	for _, r := range records {
		s.Counts[r.Kind]++
		if r.Kind.IsEntry() {
			entries++
			strength += r.Strength
		}
	}
	if entries > 0 {
		s.AvgStrength = strength / float64(entries)
	}
	return s
}

// LoadHistory reads a history file with the same decoder recovery uses
func LoadHistory(path string) ([]signals.Record, error) {
	return state.ReadHistory(path)
}

// Tail returns the last n records, or all of them when n <= 0
func Tail(records []signals.Record, n int) []signals.Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
