package data

import (
	"fmt"

	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// aggregatorSet is the aggregation machinery shared by every data source. The
// source's own timeframe is always aggregated too, so partial updates and
// ticks are handled the same way as higher timeframes.
type aggregatorSet struct {
	sourceID    string
	timeframe   string
	order       []string
	aggregators map[string]*OHLCVAggregator
}

func newAggregatorSet(sourceID string, timeframe string, aggregations []string) (*aggregatorSet, error) {
	set := &aggregatorSet{
		sourceID:    sourceID,
		timeframe:   timeframe,
		aggregators: make(map[string]*OHLCVAggregator),
	}

	for _, aggregation := range aggregations {
		if aggregation == timeframe {
			return nil, fmt.Errorf("aggregations for %s must not include the source timeframe %s",
				sourceID, timeframe)
		}
		aggregator, err := NewOHLCVAggregator(sourceID, aggregation)
		if err != nil {
			return nil, err
		}
		set.aggregators[aggregation] = aggregator
		set.order = append(set.order, aggregation)
	}

	own, err := NewOHLCVAggregator(sourceID, timeframe)
	if err != nil {
		return nil, err
	}
	set.aggregators[timeframe] = own
	set.order = append(set.order, timeframe)
	return set, nil
}

func (s *aggregatorSet) SourceID() string {
	return s.sourceID
}

func (s *aggregatorSet) Timeframe() string {
	return s.timeframe
}

func (s *aggregatorSet) Aggregations() []string {
	return s.order
}

func (s *aggregatorSet) UpdateAggregates(ohlcv models.OHLCV) []interfaces.AggregationUpdate {
	updates := make([]interfaces.AggregationUpdate, 0, len(s.order))
	for _, timeframe := range s.order {
		updates = append(updates, interfaces.AggregationUpdate{
			SourceID:  s.sourceID,
			Timeframe: timeframe,
			Result:    s.aggregators[timeframe].Update(ohlcv),
		})
	}
	return updates
}
