package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/cmd/common"
	"github.com/ducminhle1904/crypto-signal-bot/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-bot/pkg/data"
)

const appName = "fetch-klines"

func main() {
	var (
		symbol   = flag.String("symbol", "ETHUSDT", "Trading symbol")
		interval = flag.String("interval", "15m", "Kline interval (1m, 5m, 15m, 1h, 4h, 1d, ...)")
		category = flag.String("category", "linear", "Market category (linear, inverse, spot)")
		days     = flag.Int("days", 7, "Days of history to download")
		output   = flag.String("output", "", "Output CSV (default data/bybit/<category>/<SYMBOL>-<interval>.csv)")
		testnet  = flag.Bool("testnet", false, "Use the Bybit testnet")
		version  = flag.Bool("version", false, "Show version information")
	)

	common.NewUsageFormatter(appName, "Download Bybit klines into a CSV the csv source can replay").
		AddExample(appName+" -symbol BTCUSDT -interval 1h -days 30", "30 days of hourly BTC bars").
		Install()
	flag.Parse()

	if *version {
		common.PrintVersion(appName)
		return
	}

	code, err := bybit.ParseInterval(*interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if *days <= 0 {
		fmt.Fprintf(os.Stderr, "❌ -days must be positive\n")
		os.Exit(1)
	}

	sym := strings.ToUpper(*symbol)
	path := *output
	if path == "" {
		path = filepath.Join("data", "bybit", *category, fmt.Sprintf("%s-%s.csv", sym, *interval))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := bybit.NewClient(bybit.Config{Category: *category, Testnet: *testnet})
	from := time.Now().UTC().AddDate(0, 0, -*days)

	fmt.Printf("📥 Downloading %s %s (%s) since %s from %s...\n",
		sym, *interval, *category, from.Format(time.DateOnly), client.GetEnvironment())
	klines, err := client.GetKlineHistory(ctx, bybit.KlineParams{Symbol: sym, Interval: code}, from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Download failed: %v\n", err)
		os.Exit(1)
	}
	if len(klines) == 0 {
		fmt.Fprintf(os.Stderr, "❌ No klines returned for %s\n", sym)
		os.Exit(1)
	}

	if err := data.WriteCSV(path, bybit.ToOHLCV(klines)); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Wrote %d bars (%s to %s) to %s\n", len(klines),
		klines[0].StartTime.Format(time.DateTime), klines[len(klines)-1].StartTime.Format(time.DateTime), path)
}
