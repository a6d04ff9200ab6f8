package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables that override file settings
const (
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvSymbol         = "SIGNAL_SYMBOL"
	EnvInterval       = "SIGNAL_INTERVAL"
	EnvProxyURL       = "HTTPS_PROXY_URL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvMonitoringPort = "MONITORING_PORT"
	EnvCheckInterval  = "SIGNAL_CHECK_INTERVAL"
	EnvRSIOverbought  = "RSI_OVERBOUGHT"
	EnvRSIOversold    = "RSI_OVERSOLD"
)

// applyEnv overlays non-empty environment values onto c
func (c *MonitorConfig) applyEnv() {
	c.Symbol = getEnv(EnvSymbol, c.Symbol)
	c.Interval = getEnv(EnvInterval, c.Interval)
	c.Proxy = getEnv(EnvProxyURL, c.Proxy)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Monitoring.Port = getEnvInt(EnvMonitoringPort, c.Monitoring.Port)
	c.RSI.Overbought = getEnvFloat(EnvRSIOverbought, c.RSI.Overbought)
	c.RSI.Oversold = getEnvFloat(EnvRSIOversold, c.RSI.Oversold)
	if d := getEnvDuration(EnvCheckInterval, 0); d > 0 {
		c.CheckInterval = max(1, int(d.Seconds()))
	}

	c.Telegram.BotToken = getEnv(EnvTelegramToken, c.Telegram.BotToken)
	c.Telegram.ChatID = getEnv(EnvTelegramChatID, c.Telegram.ChatID)
	if os.Getenv(EnvTelegramToken) != "" && os.Getenv(EnvTelegramChatID) != "" {
		c.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	}
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
