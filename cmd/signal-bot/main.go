package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/cmd/common"
	"github.com/ducminhle1904/crypto-signal-bot/internal/bot"
	"github.com/ducminhle1904/crypto-signal-bot/internal/config"
	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/exchange"
	"github.com/ducminhle1904/crypto-signal-bot/internal/logger"
	"github.com/ducminhle1904/crypto-signal-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-bot/internal/notifications"
	"github.com/ducminhle1904/crypto-signal-bot/internal/state"
)

const appName = "signal-bot"

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (.json, .yaml or .yml); defaults and environment when empty")
		envFile    = flag.String("env", ".env", "Environment file path")
		once       = flag.Bool("once", false, "Run a single detection cycle and exit")
		replay     = flag.Bool("replay", false, "Replay the csv data file one bar per cycle")
		testNotify = flag.Bool("test-notify", false, "Send a Telegram test message and exit")
		version    = flag.Bool("version", false, "Show version information")
	)

	common.NewUsageFormatter(appName, "Bollinger Bands / RSI signal monitor").
		AddExample(appName+" -config configs/ethusdt.yaml", "Monitor with a config file").
		AddExample(appName+" -once", "One cycle with defaults and environment (CI mode)").
		AddExample(appName+" -config configs/replay.yaml -replay", "Replay a recorded CSV session").
		Install()
	flag.Parse()

	if *version {
		common.PrintVersion(appName)
		return
	}

	if _, err := common.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ %v\n", err)
	}

	os.Exit(run(*configFile, *once, *replay, *testNotify))
}

func run(configFile string, once, replay, testNotify bool) int {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	if testNotify {
		return sendTestMessage(cfg)
	}

	log, err := logger.NewLogger(cfg.Symbol, cfg.Interval, logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create logger: %v\n", err)
		return 1
	}
	defer log.Close()

	monitor, health, err := buildMonitor(cfg, log, replay)
	if err != nil {
		log.LogError("startup", err)
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor.Start(ctx); err != nil {
		if once {
			fmt.Fprintf(os.Stderr, "❌ Cannot connect to market data: %v\n", err)
			return 1
		}
		log.LogWarning("startup", "connection check failed, the loop keeps retrying: %v", err)
	}

	if once {
		record, err := monitor.RunOnce(ctx)
		monitor.Stop(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		fmt.Printf("%s %s strength=%.1f reason=%s\n",
			notifications.KindEmoji(record.Kind), record.Kind, record.Strength, record.Reason)
		return 0
	}

	if cfg.Monitoring.Enabled {
		srv := startMonitoringServer(cfg.Monitoring.Port, health, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Printf("🔄 Monitoring %s %s... (Ctrl+C to stop)\n\n", cfg.Symbol, cfg.Interval)
	if err := monitor.Run(ctx); err != nil {
		log.LogError("monitor loop", err)
		return 1
	}
	fmt.Println("✅ Stopped")
	return 0
}

func buildMonitor(cfg *config.MonitorConfig, log *logger.Logger, replay bool) (*bot.Monitor, *monitoring.HealthChecker, error) {
	source, err := exchange.NewMarketDataSource(exchange.SourceConfig{
		Name:     cfg.Exchange.Name,
		Category: cfg.Category,
		Testnet:  cfg.Exchange.Testnet,
		DataFile: cfg.Exchange.DataFile,
		Replay:   replay,
	})
	if err != nil {
		return nil, nil, err
	}
	if replay && cfg.Exchange.Name != "csv" {
		return nil, nil, boterrors.NewConfigurationError("main", "startup", "-replay requires the csv exchange")
	}

	var notifier notifications.Notifier = notifications.NewConsoleNotifier(log)
	if cfg.Telegram.Enabled {
		notifier, err = notifications.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.TelegramTimeout(), cfg.Proxy)
		if err != nil {
			return nil, nil, err
		}
	}

	health := monitoring.NewHealthChecker(cfg.CheckEvery())
	monitor, err := bot.NewMonitor(cfg, bot.Dependencies{
		Source:   source,
		Store:    state.NewHistoryFile(cfg.History.File),
		Notifier: notifier,
		Logger:   log,
		Health:   health,
	})
	if err != nil {
		return nil, nil, err
	}
	return monitor, health, nil
}

func startMonitoringServer(port int, health *monitoring.HealthChecker, log *logger.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           monitoring.NewMux(health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Serving /metrics and /health on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError("monitoring server", err)
		}
	}()
	return srv
}

func sendTestMessage(cfg *config.MonitorConfig) int {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		fmt.Fprintf(os.Stderr, "❌ %s and %s are required for -test-notify\n",
			config.EnvTelegramToken, config.EnvTelegramChatID)
		return 1
	}

	notifier, err := notifications.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
		cfg.TelegramTimeout(), cfg.Proxy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TelegramTimeout())
	defer cancel()
	if err := notifier.SendTestMessage(ctx, cfg.Proxy); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Telegram test failed: %v\n", err)
		return 1
	}
	fmt.Println("✅ Telegram test message sent")
	return 0
}
