package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvTelegramToken, EnvTelegramChatID, EnvSymbol, EnvInterval, EnvProxyURL,
		EnvLogLevel, EnvMonitoringPort, EnvCheckInterval, EnvRSIOverbought, EnvRSIOversold,
		"TELEGRAM_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, "15m", cfg.Interval)
	assert.Equal(t, time.Minute, cfg.CheckEvery())
	assert.Equal(t, 20, cfg.IndicatorConfig().BandPeriod)
	assert.Equal(t, 70.0, cfg.Thresholds().Overbought)
	assert.Equal(t, 1, cfg.History.SaveEvery)
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.False(t, cfg.Telegram.Enabled)
}

func TestLoad_JSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{
  "symbol": "btcusdt",
  "interval": "1h",
  "check_interval": 30,
  "bollinger": {"period": 10, "std_dev": 2.5},
  "rsi": {"period": 7, "overbought": 80, "oversold": 0},
  "telegram": {"enabled": true, "bot_token": "123:abc", "chat_id": "42"},
  "proxy": "http://127.0.0.1:10808",
  "history": {"file": "data/history.json", "save_every": 10}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, "1h", cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.CheckEvery())
	assert.Equal(t, 2.5, cfg.Bollinger.StdDev)
	assert.Equal(t, 0.0, cfg.RSI.Oversold, "explicit zero oversold is kept")
	assert.Equal(t, 100, cfg.KlineLimit)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, 10*time.Second, cfg.TelegramTimeout())
	assert.Equal(t, "data/history.json", cfg.History.File)
	assert.Equal(t, 10, cfg.History.SaveEvery)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
symbol: SOLUSDT
interval: 5m
category: spot
rsi:
  period: 14
  overbought: 75
  oversold: 25
exchange:
  name: csv
  data_file: data/sol.csv
monitoring:
  enabled: true
  port: 9100
notify_neutral: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, "spot", cfg.Category)
	assert.Equal(t, 75.0, cfg.RSI.Overbought)
	assert.Equal(t, "csv", cfg.Exchange.Name)
	assert.Equal(t, 9100, cfg.Monitoring.Port)
	assert.True(t, cfg.NotifyNeutral)
}

func TestLoad_UnknownField(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "config.json", `{"symbol": "ETHUSDT", "timeframe": "15m"}`))
	assert.True(t, boterrors.IsCategory(err, boterrors.ErrorCategoryConfiguration))

	_, err = Load(writeFile(t, "config.yml", "symbol: ETHUSDT\nboll:\n  period: 20\n"))
	assert.True(t, boterrors.IsFatal(err))
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, boterrors.IsFatal(err))
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSymbol, "xrpusdt")
	t.Setenv(EnvInterval, "4h")
	t.Setenv(EnvTelegramToken, "999:token")
	t.Setenv(EnvTelegramChatID, "-100")
	t.Setenv(EnvProxyURL, "http://proxy:3128")
	t.Setenv(EnvCheckInterval, "2m")
	t.Setenv(EnvRSIOversold, "20")

	cfg, err := Load(writeFile(t, "config.json", `{"symbol": "ETHUSDT"}`))
	require.NoError(t, err)

	assert.Equal(t, "XRPUSDT", cfg.Symbol)
	assert.Equal(t, "4h", cfg.Interval)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, "999:token", cfg.Telegram.BotToken)
	assert.Equal(t, "http://proxy:3128", cfg.Proxy)
	assert.Equal(t, 2*time.Minute, cfg.CheckEvery())
	assert.Equal(t, 20.0, cfg.RSI.Oversold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*MonitorConfig)
	}{
		{"empty symbol", func(c *MonitorConfig) { c.Symbol = "" }},
		{"bad interval", func(c *MonitorConfig) { c.Interval = "7m" }},
		{"bad category", func(c *MonitorConfig) { c.Category = "futures" }},
		{"zero check interval", func(c *MonitorConfig) { c.CheckInterval = 0 }},
		{"zero band period", func(c *MonitorConfig) { c.Bollinger.Period = 0 }},
		{"negative std dev", func(c *MonitorConfig) { c.Bollinger.StdDev = -1 }},
		{"zero rsi period", func(c *MonitorConfig) { c.RSI.Period = 0 }},
		{"overbought too low", func(c *MonitorConfig) { c.RSI.Overbought = 50 }},
		{"oversold too high", func(c *MonitorConfig) { c.RSI.Oversold = 55 }},
		{"limit below warm-up", func(c *MonitorConfig) { c.KlineLimit = 19 }},
		{"limit above page", func(c *MonitorConfig) { c.KlineLimit = 5000 }},
		{"telegram without token", func(c *MonitorConfig) { c.Telegram.Enabled = true }},
		{"save every zero", func(c *MonitorConfig) { c.History.SaveEvery = 0 }},
		{"unknown exchange", func(c *MonitorConfig) { c.Exchange.Name = "kraken" }},
		{"csv without file", func(c *MonitorConfig) { c.Exchange.Name = "csv" }},
		{"monitoring bad port", func(c *MonitorConfig) { c.Monitoring = MonitoringConfig{Enabled: true, Port: 70000} }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, boterrors.IsFatal(err))
		})
	}
}

func TestSummary(t *testing.T) {
	rows := Default().Summary()
	require.NotEmpty(t, rows)
	assert.Equal(t, [2]string{"Symbol", "ETHUSDT"}, rows[0])
}
