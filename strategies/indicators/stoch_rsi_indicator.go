package indicators

import (
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

type stochasticRelativeStrengthIndicator struct {
	rsi    techan.Indicator
	minRSI techan.Indicator
	maxRSI techan.Indicator
}

func NewStochasticRelativeStrengthIndicator(baseIndicator techan.Indicator, window int) techan.Indicator {
	return stochasticRelativeStrengthIndicator{
		rsi:    baseIndicator,
		minRSI: techan.NewMinimumValueIndicator(baseIndicator, window),
		maxRSI: techan.NewMaximumValueIndicator(baseIndicator, window),
	}
}

func (srs stochasticRelativeStrengthIndicator) Calculate(index int) big.Decimal {
	dividend := srs.rsi.Calculate(index).Float() - srs.minRSI.Calculate(index).Float()
	divisor := srs.maxRSI.Calculate(index).Float() - srs.minRSI.Calculate(index).Float()

	if divisor == 0.0 {
		return big.NewDecimal(0.0)
	}

	return big.NewDecimal(dividend / divisor)
}
