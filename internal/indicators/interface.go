package indicators

import (
	"errors"
	"fmt"
	"time"

	boterrors "github.com/ducminhle1904/crypto-signal-bot/internal/errors"
)

// ErrInsufficientData is returned when a window is shorter than the indicator period
var ErrInsufficientData = errors.New("insufficient data")

// Config holds the Bollinger Bands and RSI parameters
type Config struct {
	BandPeriod int     `json:"band_period" yaml:"band_period"`
	BandStdDev float64 `json:"band_std_dev" yaml:"band_std_dev"`
	RSIPeriod  int     `json:"rsi_period" yaml:"rsi_period"`
}

// DefaultConfig returns the classic BB(20, 2) + RSI(14) setup
func DefaultConfig() Config {
	return Config{
		BandPeriod: 20,
		BandStdDev: 2.0,
		RSIPeriod:  14,
	}
}

// Validate rejects non-positive periods and multipliers
func (c Config) Validate() error {
	if c.BandPeriod <= 0 {
		return boterrors.NewConfigurationError("indicators", "validate",
			fmt.Sprintf("band period must be positive, got %d", c.BandPeriod))
	}
	if c.BandStdDev <= 0 {
		return boterrors.NewConfigurationError("indicators", "validate",
			fmt.Sprintf("band std dev multiplier must be positive, got %g", c.BandStdDev))
	}
	if c.RSIPeriod <= 0 {
		return boterrors.NewConfigurationError("indicators", "validate",
			fmt.Sprintf("rsi period must be positive, got %d", c.RSIPeriod))
	}
	return nil
}

// RequiredPeriods returns the number of bars needed before the first defined snapshot
func (c Config) RequiredPeriods() int {
	return max(c.BandPeriod, c.RSIPeriod)
}

// Band is one Bollinger Bands reading
type Band struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Width returns upper minus lower
func (b Band) Width() float64 {
	return b.Upper - b.Lower
}

// Snapshot is the indicator state of one bar. Band and RSI are nil during warm-up.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Band      *Band     `json:"band,omitempty"`
	RSI       *float64  `json:"rsi,omitempty"`
}

// Ready reports whether both the band and the RSI are defined
func (s *Snapshot) Ready() bool {
	return s != nil && s.Band != nil && s.RSI != nil
}

// BandPosition returns where the close sits inside the band, 0 at the lower band and
// 100 at the upper band. It is undefined for a missing or zero-width band.
func (s *Snapshot) BandPosition() (float64, bool) {
	if s == nil || s.Band == nil || s.Band.Width() == 0 {
		return 0, false
	}
	return (s.Close - s.Band.Lower) / s.Band.Width() * 100, true
}

// Clone returns a deep copy so records never share band or RSI storage with the series
func (s *Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	c := Snapshot{Timestamp: s.Timestamp, Close: s.Close}
	if s.Band != nil {
		band := *s.Band
		c.Band = &band
	}
	if s.RSI != nil {
		rsi := *s.RSI
		c.RSI = &rsi
	}
	return c
}
