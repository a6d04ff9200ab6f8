package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-signal-bot/internal/signals"
)

const defaultAlertTimeout = 10 * time.Second

// SignalAlerter turns signal records into alerts. NEUTRAL records are never pushed
// unless diagnostics are enabled.
type SignalAlerter struct {
	notifier      Notifier
	timeout       time.Duration
	notifyNeutral bool
}

func NewSignalAlerter(notifier Notifier, timeout time.Duration, notifyNeutral bool) *SignalAlerter {
	if timeout <= 0 {
		timeout = defaultAlertTimeout
	}
	return &SignalAlerter{notifier: notifier, timeout: timeout, notifyNeutral: notifyNeutral}
}

// ShouldNotify reports whether a record is pushed to the notifier
func (a *SignalAlerter) ShouldNotify(r signals.Record) bool {
	switch r.Kind {
	case signals.KindLong, signals.KindShort, signals.KindExitLong, signals.KindExitShort:
		return true
	case signals.KindNeutral:
		return a.notifyNeutral
	default:
		panic(fmt.Sprintf("notifications: unhandled signal kind %d", uint8(r.Kind)))
	}
}

// Alert makes one delivery attempt bounded by the alerter timeout. It reports whether
// the record was eligible for delivery.
func (a *SignalAlerter) Alert(ctx context.Context, r signals.Record) (bool, error) {
	if !a.ShouldNotify(r) {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return true, a.notifier.SendAlert(ctx, alertLevel(r.Kind), FormatSignal(r))
}

func alertLevel(k signals.Kind) string {
	switch k {
	case signals.KindLong, signals.KindShort:
		return LevelSuccess
	case signals.KindExitLong, signals.KindExitShort, signals.KindNeutral:
		return LevelInfo
	default:
		panic(fmt.Sprintf("notifications: unhandled signal kind %d", uint8(k)))
	}
}

// KindEmoji returns the marker shown next to a signal kind
func KindEmoji(k signals.Kind) string {
	switch k {
	case signals.KindLong:
		return "🟢"
	case signals.KindShort:
		return "🔴"
	case signals.KindExitLong:
		return "⬆️"
	case signals.KindExitShort:
		return "⬇️"
	case signals.KindNeutral:
		return "⚪"
	default:
		panic(fmt.Sprintf("notifications: unhandled signal kind %d", uint8(k)))
	}
}

// FormatSignal renders a record as a Telegram HTML message
func FormatSignal(r signals.Record) string {
	rsi := "n/a"
	if r.Indicators.RSI != nil {
		rsi = fmt.Sprintf("%.2f", *r.Indicators.RSI)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s signal</b>\n", KindEmoji(r.Kind), r.Kind)
	fmt.Fprintf(&b, "Symbol: %s\n", escape(r.Symbol))
	fmt.Fprintf(&b, "Price: $%.2f\n", r.Indicators.Close)
	fmt.Fprintf(&b, "RSI: %s\n", rsi)
	fmt.Fprintf(&b, "Strength: %.1f%%\n", r.Strength)
	fmt.Fprintf(&b, "Reason: %s\n", escape(r.Reason))
	fmt.Fprintf(&b, "Time: %s", r.Timestamp.Format(time.DateTime))
	return b.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}
