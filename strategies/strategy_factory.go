package strategies

import (
	"fmt"

	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
)

func StrategyFactory(strategyName string, pair string, timeframe string, quantity float64) (interfaces.Strategy, error) {

	switch strategyName {
	case "smaCrossStrategy":
		return NewSMACrossStrategy(pair, timeframe, quantity), nil
	case "stochRSIStrategy":
		return NewStochRSIStrategy(pair, timeframe, quantity), nil
	default:
		return nil, fmt.Errorf("%s is not a known strategy", strategyName)
	}

}
