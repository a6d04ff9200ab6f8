package indicators

import (
	"math/rand"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/pkg/types"
)

var testStart = time.Date(2025, 11, 27, 10, 0, 0, 0, time.UTC)

func barsFromCloses(closes ...float64) []types.OHLCV {
	data := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return data
}

// Helper function for trending data
func generateTestData(count int) []types.OHLCV {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = 100.0 + float64(i)*0.5 + float64(i%3)
	}
	return barsFromCloses(closes...)
}

// Helper function for flat data
func generateFlatData(count int) []types.OHLCV {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = 100.0
	}
	return barsFromCloses(closes...)
}

// Helper function for a seeded random walk
func generateRandomWalk(count int, seed int64) []types.OHLCV {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, count)
	price := 3000.0
	for i := range closes {
		price += (rng.Float64() - 0.5) * 40
		closes[i] = price
	}
	return barsFromCloses(closes...)
}
