package signals

import (
	"fmt"
	"math"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
	"github.com/ducminhle1904/crypto-signal-bot/internal/indicators"
)

const (
	// RSI midline used by the exit rules
	rsiNeutral = 50.0

	exitStrength = 50.0

	ReasonInsufficientData = "insufficient data"
	ReasonNoSignal         = "no clear signal"
	ReasonInvalidData      = "invalid indicator data"
)

// Thresholds holds the RSI levels used by the entry rules
type Thresholds struct {
	Overbought float64 `json:"overbought" yaml:"overbought"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
}

// DefaultThresholds returns the classic 70/30 levels
func DefaultThresholds() Thresholds {
	return Thresholds{Overbought: 70, Oversold: 30}
}

// Validate requires overbought in (50, 100] and oversold in [0, 50)
func (t Thresholds) Validate() error {
	if t.Overbought <= rsiNeutral || t.Overbought > 100 {
		return boterrors.NewConfigurationError("signals", "validate",
			fmt.Sprintf("overbought threshold must be in (50, 100], got %g", t.Overbought))
	}
	if t.Oversold < 0 || t.Oversold >= rsiNeutral {
		return boterrors.NewConfigurationError("signals", "validate",
			fmt.Sprintf("oversold threshold must be in [0, 50), got %g", t.Oversold))
	}
	return nil
}

// Record is one detection result. Records are never modified after creation.
type Record struct {
	Timestamp  time.Time           `json:"timestamp"`
	Symbol     string              `json:"symbol"`
	Kind       Kind                `json:"signal_kind"`
	Strength   float64             `json:"strength"`
	Reason     string              `json:"reason"`
	Indicators indicators.Snapshot `json:"indicators"`
}

// Decision is the outcome of the detection policy before it is stamped into a Record
type Decision struct {
	Kind     Kind
	Strength float64
	Reasons  []string
}

// Reason joins the fired sub-conditions
func (d Decision) Reason() string {
	if len(d.Reasons) == 0 {
		return ReasonNoSignal
	}
	return strings.Join(d.Reasons, " + ")
}

// Evaluate applies the detection policy to one snapshot. Entry rules are checked first
// regardless of the current position; exits are only considered while holding.
func Evaluate(t Thresholds, position Position, snap *indicators.Snapshot) Decision {
	if !snap.Ready() {
		return Decision{Kind: KindNeutral, Reasons: []string{ReasonInsufficientData}}
	}

	close := snap.Close
	rsi := *snap.RSI
	band := *snap.Band
	if !finite(close, rsi, band.Upper, band.Middle, band.Lower) || close <= 0 {
		return Decision{Kind: KindNeutral, Reasons: []string{ReasonInvalidData}}
	}

	if rsi < t.Oversold && close <= band.Lower {
		strength := (t.Oversold-rsi)*3 + ((band.Lower-close)/close*100)*10
		return Decision{
			Kind:     KindLong,
			Strength: clampStrength(strength),
			Reasons: []string{
				fmt.Sprintf("RSI oversold(%.1f)", rsi),
				fmt.Sprintf("touched lower band(%.2f <= %.2f)", close, band.Lower),
			},
		}
	}

	if rsi > t.Overbought && close >= band.Upper {
		strength := (rsi-t.Overbought)*3 + ((close-band.Upper)/close*100)*10
		return Decision{
			Kind:     KindShort,
			Strength: clampStrength(strength),
			Reasons: []string{
				fmt.Sprintf("RSI overbought(%.1f)", rsi),
				fmt.Sprintf("touched upper band(%.2f >= %.2f)", close, band.Upper),
			},
		}
	}

	switch position {
	case PositionLong:
		var reasons []string
		if rsi > rsiNeutral {
			reasons = append(reasons, fmt.Sprintf("RSI back to neutral(%.1f)", rsi))
		}
		if close >= band.Middle {
			reasons = append(reasons, fmt.Sprintf("price back to middle band(%.2f >= %.2f)", close, band.Middle))
		}
		if len(reasons) > 0 {
			return Decision{Kind: KindExitLong, Strength: exitStrength, Reasons: reasons}
		}
	case PositionShort:
		var reasons []string
		if rsi < rsiNeutral {
			reasons = append(reasons, fmt.Sprintf("RSI back to neutral(%.1f)", rsi))
		}
		if close <= band.Middle {
			reasons = append(reasons, fmt.Sprintf("price back to middle band(%.2f <= %.2f)", close, band.Middle))
		}
		if len(reasons) > 0 {
			return Decision{Kind: KindExitShort, Strength: exitStrength, Reasons: reasons}
		}
	case PositionNone:
	default:
		panic(fmt.Sprintf("signals: unhandled position %d", uint8(position)))
	}

	return Decision{Kind: KindNeutral}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// clampStrength bounds a score to [0, 100] and rounds it to two decimals
func clampStrength(v float64) float64 {
	v = min(100, max(0, v))
	return math.Round(v*100) / 100
}

// Detector owns the position state of one symbol stream. It is not safe for
// concurrent use; Engine serialises access.
type Detector struct {
	thresholds Thresholds
	position   Position
}

// NewDetector creates a detector starting flat
func NewDetector(t Thresholds) (*Detector, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Detector{thresholds: t, position: PositionNone}, nil
}

// Position returns the currently held position
func (d *Detector) Position() Position {
	return d.position
}

// Thresholds returns the configured RSI levels
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// Detect evaluates one snapshot, updates the position and returns the resulting record.
// A missing, warming-up or non-finite snapshot yields NEUTRAL and leaves the position
// untouched.
func (d *Detector) Detect(symbol string, snap *indicators.Snapshot, at time.Time) Record {
	decision := Evaluate(d.thresholds, d.position, snap)
	d.position = Transition(d.position, decision.Kind)

	reading := snap.Clone()
	if decision.Reason() == ReasonInvalidData {
		// non-finite readings cannot be encoded into the history
		reading = indicators.Snapshot{Timestamp: snap.Timestamp}
	}

	return Record{
		Timestamp:  at,
		Symbol:     symbol,
		Kind:       decision.Kind,
		Strength:   decision.Strength,
		Reason:     decision.Reason(),
		Indicators: reading,
	}
}

// restore sets the position after a history replay
func (d *Detector) restore(p Position) {
	d.position = p
}
