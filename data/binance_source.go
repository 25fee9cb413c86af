package data

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// BinanceDataSource streams candles for one symbol from Binance. Connect
// preloads recent history over REST; Read replays it and then follows the
// websocket kline stream, reconnecting with backoff when it drops.
type BinanceDataSource struct {
	*aggregatorSet
	binanceClient *binance.Client
	preloadLimit  int
	history       []models.OHLCV
}

func NewBinanceDataSource(binanceClient *binance.Client, pair string, timeframe string,
	aggregations []string, preloadLimit int) (*BinanceDataSource, error) {
	set, err := newAggregatorSet(pair, timeframe, aggregations)
	if err != nil {
		return nil, err
	}
	if preloadLimit <= 0 {
		preloadLimit = 1000
	}
	return &BinanceDataSource{
		aggregatorSet: set,
		binanceClient: binanceClient,
		preloadLimit:  preloadLimit,
	}, nil
}

func (s *BinanceDataSource) Connect(ctx context.Context) error {
	klines, err := s.binanceClient.NewKlinesService().Symbol(s.sourceID).
		Interval(s.timeframe).Limit(s.preloadLimit).Do(ctx)
	if err != nil {
		return fmt.Errorf("preloading klines for %s: %w", s.sourceID, err)
	}

	s.history = make([]models.OHLCV, 0, len(klines))
	for _, k := range klines {
		s.history = append(s.history, models.OHLCV{
			Timestamp: k.OpenTime,
			Open:      parsePrice(k.Open),
			High:      parsePrice(k.High),
			Low:       parsePrice(k.Low),
			Close:     parsePrice(k.Close),
			Volume:    parsePrice(k.Volume),
		})
	}
	helpers.Logger.Infoln(fmt.Sprintf("preloaded %d %s candles for %s",
		len(s.history), s.timeframe, s.sourceID))
	return nil
}

func (s *BinanceDataSource) Read(ctx context.Context, out chan<- interfaces.DataUpdate) error {
	for _, ohlcv := range s.history {
		bar := &models.Bar{
			Timestamp: ohlcv.Timestamp,
			SourceID:  s.sourceID,
			Timeframe: s.timeframe,
			OHLCV:     ohlcv,
		}
		select {
		case out <- interfaces.DataUpdate{Bar: bar}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.serveKlines(ctx, out); err != nil {
			delay := helpers.BackoffDelay(attempt, time.Second, time.Minute)
			helpers.Logger.Errorln(fmt.Sprintf("kline stream for %s interrupted, reconnecting in %s: %v",
				s.sourceID, delay, err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
	}
}

func (s *BinanceDataSource) serveKlines(ctx context.Context, out chan<- interfaces.DataUpdate) error {
	updates := make(chan models.OHLCV, 64)
	wsErrs := make(chan error, 1)

	wsHandler := func(event *binance.WsKlineEvent) {
		ohlcv := models.OHLCV{
			Timestamp: event.Kline.StartTime,
			Open:      parsePrice(event.Kline.Open),
			High:      parsePrice(event.Kline.High),
			Low:       parsePrice(event.Kline.Low),
			Close:     parsePrice(event.Kline.Close),
			Volume:    parsePrice(event.Kline.Volume),
		}
		select {
		case updates <- ohlcv:
		default:
			helpers.Logger.Warnln(fmt.Sprintf("dropping kline update for %s, consumer too slow", s.sourceID))
		}
	}
	errHandler := func(err error) {
		select {
		case wsErrs <- err:
		default:
		}
	}

	doneC, stopC, err := binance.WsKlineServe(s.sourceID, s.timeframe, wsHandler, errHandler)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			stopC <- struct{}{}
			<-doneC
			return nil
		case <-doneC:
			select {
			case err := <-wsErrs:
				return err
			default:
				return fmt.Errorf("kline stream closed")
			}
		case ohlcv := <-updates:
			bar := &models.Bar{
				Timestamp: ohlcv.Timestamp,
				SourceID:  s.sourceID,
				Timeframe: s.timeframe,
				OHLCV:     ohlcv,
			}
			select {
			case out <- interfaces.DataUpdate{Bar: bar, Live: true}:
			case <-ctx.Done():
				stopC <- struct{}{}
				<-doneC
				return nil
			}
		}
	}
}

func (s *BinanceDataSource) Disconnect() error {
	return nil
}

func parsePrice(value string) float64 {
	parsed, _ := strconv.ParseFloat(value, 64)
	return parsed
}
