package strategies

import (
	"context"
	"fmt"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
	"gitlab.com/aoterocom/AOAlgoRuntime/strategies/indicators"
)

// StochRSIStrategy trades the smoothed stochastic RSI K/D cross: it opens a
// long when K pulls away from D in oversold territory and closes it when K
// drops back under D.
type StochRSIStrategy struct {
	Pair      string
	Timeframe string
	Quantity  float64

	timeSeries *techan.TimeSeries
	barPeriod  time.Duration
}

func NewStochRSIStrategy(pair string, timeframe string, quantity float64) *StochRSIStrategy {
	return &StochRSIStrategy{
		Pair:      pair,
		Timeframe: timeframe,
		Quantity:  quantity,
	}
}

func (s *StochRSIStrategy) Init(session interfaces.StrategySession) error {
	barPeriod, err := str2duration.ParseDuration(s.Timeframe)
	if err != nil {
		return err
	}
	s.barPeriod = barPeriod
	s.timeSeries = techan.NewTimeSeries()

	session.OnBar(s.Timeframe, func(bar models.Bar) {
		s.onCompletedBar(session, bar)
	})
	return nil
}

func (s *StochRSIStrategy) OnTick(ctx context.Context, session interfaces.StrategySession, bar models.Bar) error {
	return nil
}

func (s *StochRSIStrategy) smoothedKD(lastIndex int) (float64, float64, float64, float64, float64) {
	myRSI := techan.NewRelativeStrengthIndexIndicator(techan.NewClosePriceIndicator(s.timeSeries), 12)
	stochRSI := indicators.NewStochasticRelativeStrengthIndicator(myRSI, 12)
	smoothK := techan.NewSimpleMovingAverage(stochRSI, 3)
	smoothD := techan.NewSimpleMovingAverage(smoothK, 3)

	return smoothK.Calculate(lastIndex).Float(), smoothD.Calculate(lastIndex).Float(),
		smoothK.Calculate(lastIndex - 1).Float(), smoothD.Calculate(lastIndex - 1).Float(),
		smoothK.Calculate(lastIndex - 2).Float()
}

func (s *StochRSIStrategy) onCompletedBar(session interfaces.StrategySession, bar models.Bar) {
	if bar.SourceID != s.Pair {
		return
	}

	period := techan.NewTimePeriod(time.Unix(bar.Timestamp/1000, 0), s.barPeriod)
	candle := techan.NewCandle(period)
	candle.OpenPrice = big.NewDecimal(bar.OHLCV.Open)
	candle.ClosePrice = big.NewDecimal(bar.OHLCV.Close)
	candle.MaxPrice = big.NewDecimal(bar.OHLCV.High)
	candle.MinPrice = big.NewDecimal(bar.OHLCV.Low)
	candle.Volume = big.NewDecimal(bar.OHLCV.Volume)
	s.timeSeries.AddCandle(candle)

	lastIndex := len(s.timeSeries.Candles) - 1
	if lastIndex < 15 {
		return
	}

	kNow, dNow, kPrev, dPrev, kPrev2 := s.smoothedKD(lastIndex)
	distanceNow := kNow - dNow
	distancePrev := kPrev - dPrev
	kRising := helpers.AllValuesPositive([]float64{kNow - kPrev, kPrev - kPrev2})

	position := session.Position(s.Pair, models.PositionTypeLong)

	shouldEnter := ((kNow > dNow+0.1 && distanceNow > distancePrev+0.15) || distanceNow > 0.16) &&
		kNow < 0.40 && kRising
	shouldExit := kNow < dNow && distanceNow < distancePrev

	if shouldEnter && position.Balance() == 0 {
		if _, err := session.Open(context.Background(), s.Pair, models.PositionTypeLong,
			s.Quantity, models.OrderTypeMarket, 0); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("open failed on %s: %v", s.Pair, err))
		}
		return
	}

	if shouldExit && position.Balance() > 0 {
		if _, err := session.Close(context.Background(), s.Pair, models.PositionTypeLong,
			position.Balance(), models.OrderTypeMarket, 0); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("close failed on %s: %v", s.Pair, err))
		}
	}
}
