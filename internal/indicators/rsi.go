package indicators

// RSI calculates the Relative Strength Index with simple (not Wilder) averaging
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Calculate computes the RSI of the trailing window of period bars ending at the last
// price. The first bar of a series has no previous close, so its change counts as zero.
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if r.period <= 0 || len(prices) < r.period {
		return 0, ErrInsufficientData
	}

	var gainSum, lossSum float64
	for i := len(prices) - r.period; i < len(prices); i++ {
		if i == 0 {
			continue
		}
		change := prices[i] - prices[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}

	avgGain := gainSum / float64(r.period)
	avgLoss := lossSum / float64(r.period)

	return relativeStrengthIndex(avgGain, avgLoss), nil
}

// GetRequiredPeriods returns the minimum number of prices needed
func (r *RSI) GetRequiredPeriods() int {
	return r.period
}

// relativeStrengthIndex maps average gain and loss to [0, 100]. No losses in the
// window means an unbounded ratio, which saturates to 100.
func relativeStrengthIndex(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	return min(100, max(0, rsi))
}
