package indicators

import (
	"testing"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero band period", Config{BandPeriod: 0, BandStdDev: 2, RSIPeriod: 14}, false},
		{"negative rsi period", Config{BandPeriod: 20, BandStdDev: 2, RSIPeriod: -1}, false},
		{"zero multiplier", Config{BandPeriod: 20, BandStdDev: 0, RSIPeriod: 14}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))
		})
	}
}

func TestCompute_RejectsInvalidConfig(t *testing.T) {
	_, err := Compute(generateTestData(30), Config{BandPeriod: -5, BandStdDev: 2, RSIPeriod: 14})
	require.Error(t, err)
	assert.True(t, boterrors.IsFatal(err))
}

func TestCompute_WarmupInvariant(t *testing.T) {
	cfg := Config{BandPeriod: 5, BandStdDev: 2, RSIPeriod: 3}
	data := generateTestData(10)

	snapshots, err := Compute(data, cfg)
	require.NoError(t, err)
	require.Len(t, snapshots, len(data))

	for i, s := range snapshots {
		assert.Equal(t, data[i].Timestamp, s.Timestamp)
		assert.Equal(t, data[i].Close, s.Close)
		if i < cfg.RequiredPeriods()-1 {
			assert.False(t, s.Ready(), "bar %d should still be warming up", i)
			assert.Nil(t, s.Band)
			assert.Nil(t, s.RSI)
		} else {
			assert.True(t, s.Ready(), "bar %d should be defined", i)
		}
	}
}

func TestCompute_ShortSeriesNeverReady(t *testing.T) {
	cfg := DefaultConfig()

	for n := 0; n < cfg.RequiredPeriods(); n++ {
		snapshots, err := Compute(generateRandomWalk(n, int64(n)), cfg)
		require.NoError(t, err)
		for _, s := range snapshots {
			assert.False(t, s.Ready())
		}
	}
}

func TestCompute_Invariants(t *testing.T) {
	cfg := DefaultConfig()

	for seed := int64(1); seed <= 5; seed++ {
		snapshots, err := Compute(generateRandomWalk(200, seed), cfg)
		require.NoError(t, err)

		for _, s := range snapshots {
			if !s.Ready() {
				continue
			}
			assert.GreaterOrEqual(t, *s.RSI, 0.0)
			assert.LessOrEqual(t, *s.RSI, 100.0)
			assert.GreaterOrEqual(t, s.Band.Upper, s.Band.Middle)
			assert.GreaterOrEqual(t, s.Band.Middle, s.Band.Lower)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	data := generateRandomWalk(120, 7)

	first, err := Compute(data, DefaultConfig())
	require.NoError(t, err)
	second, err := Compute(data, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_MatchesStandaloneIndicators(t *testing.T) {
	cfg := Config{BandPeriod: 4, BandStdDev: 1.5, RSIPeriod: 6}
	data := generateRandomWalk(30, 3)

	snapshots, err := Compute(data, cfg)
	require.NoError(t, err)

	closes := make([]float64, 0, len(data))
	for i, bar := range data {
		closes = append(closes, bar.Close)
		if !snapshots[i].Ready() {
			continue
		}
		band, err := NewBollingerBands(cfg.BandPeriod, cfg.BandStdDev).Calculate(closes)
		require.NoError(t, err)
		rsi, err := NewRSI(cfg.RSIPeriod).Calculate(closes)
		require.NoError(t, err)

		assert.Equal(t, band, *snapshots[i].Band)
		assert.Equal(t, rsi, *snapshots[i].RSI)
	}
}

func TestLatest(t *testing.T) {
	latest, err := Latest(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, latest)

	data := generateTestData(40)
	latest, err = Latest(data, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, data[len(data)-1].Timestamp, latest.Timestamp)
	assert.True(t, latest.Ready())
}

func TestSnapshot_BandPosition(t *testing.T) {
	rsi := 50.0
	s := &Snapshot{Close: 3100, Band: &Band{Upper: 3200, Middle: 3100, Lower: 3000}, RSI: &rsi}

	pos, ok := s.BandPosition()
	require.True(t, ok)
	assert.InDelta(t, 50.0, pos, 1e-9)

	s.Close = 3000
	pos, ok = s.BandPosition()
	require.True(t, ok)
	assert.InDelta(t, 0.0, pos, 1e-9)

	flat := &Snapshot{Close: 100, Band: &Band{Upper: 100, Middle: 100, Lower: 100}}
	_, ok = flat.BandPosition()
	assert.False(t, ok)

	_, ok = (&Snapshot{Close: 100}).BandPosition()
	assert.False(t, ok)

	var missing *Snapshot
	assert.False(t, missing.Ready())
}
