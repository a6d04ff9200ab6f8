package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// BollingerBands represents the Bollinger Bands indicator
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Calculate computes the bands over the trailing window ending at the last price.
// The deviation is the population (not sample) standard deviation of the window.
func (bb *BollingerBands) Calculate(prices []float64) (Band, error) {
	if bb.period <= 0 || len(prices) < bb.period {
		return Band{}, ErrInsufficientData
	}

	recent := prices[len(prices)-bb.period:]
	middle, stdDev := stat.PopMeanStdDev(recent, nil)
	// rounding can push the variance of an equal-valued window just below zero
	if math.IsNaN(stdDev) || stdDev < 0 {
		stdDev = 0
	}

	return Band{
		Upper:  middle + bb.stdDevMultiple*stdDev,
		Middle: middle,
		Lower:  middle - bb.stdDevMultiple*stdDev,
	}, nil
}

// GetRequiredPeriods returns the minimum number of prices needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}
