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
)

// SMACrossStrategy goes long when the fast moving average crosses above the
// slow one and flattens the position on the cross down. It trades one pair on
// completed bars of a single timeframe.
type SMACrossStrategy struct {
	Pair       string
	Timeframe  string
	Quantity   float64
	FastWindow int
	SlowWindow int

	timeSeries *techan.TimeSeries
	barPeriod  time.Duration
}

func NewSMACrossStrategy(pair string, timeframe string, quantity float64) *SMACrossStrategy {
	return &SMACrossStrategy{
		Pair:       pair,
		Timeframe:  timeframe,
		Quantity:   quantity,
		FastWindow: 9,
		SlowWindow: 21,
	}
}

func (s *SMACrossStrategy) Init(session interfaces.StrategySession) error {
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

func (s *SMACrossStrategy) OnTick(ctx context.Context, session interfaces.StrategySession, bar models.Bar) error {
	return nil
}

func (s *SMACrossStrategy) onCompletedBar(session interfaces.StrategySession, bar models.Bar) {
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
	if lastIndex < s.SlowWindow {
		return
	}

	closePrices := techan.NewClosePriceIndicator(s.timeSeries)
	fast := techan.NewSimpleMovingAverage(closePrices, s.FastWindow)
	slow := techan.NewSimpleMovingAverage(closePrices, s.SlowWindow)

	fastNow := fast.Calculate(lastIndex).Float()
	slowNow := slow.Calculate(lastIndex).Float()
	fastPrev := fast.Calculate(lastIndex - 1).Float()
	slowPrev := slow.Calculate(lastIndex - 1).Float()

	position := session.Position(s.Pair, models.PositionTypeLong)

	if fastPrev <= slowPrev && fastNow > slowNow && position.Balance() == 0 {
		if _, err := session.Open(context.Background(), s.Pair, models.PositionTypeLong,
			s.Quantity, models.OrderTypeMarket, 0); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("open failed on %s: %v", s.Pair, err))
		}
		return
	}

	if fastPrev >= slowPrev && fastNow < slowNow && position.Balance() > 0 {
		if _, err := session.Close(context.Background(), s.Pair, models.PositionTypeLong,
			position.Balance(), models.OrderTypeMarket, 0); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("close failed on %s: %v", s.Pair, err))
		}
	}
}
