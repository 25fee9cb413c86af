package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// CSVDataSource replays historical candles from a CSV file, for backtests.
// Files live in csvDataFolder and are named {pair}_{timeframe}.csv with "/"
// replaced by "_", rows being timestamp,open,high,low,close,volume.
type CSVDataSource struct {
	*aggregatorSet
	csvDataFolder string
	sinceTS       int64
	history       []models.OHLCV
}

func NewCSVDataSource(pair string, timeframe string, aggregations []string,
	csvDataFolder string, sinceTS int64) (*CSVDataSource, error) {
	set, err := newAggregatorSet(pair, timeframe, aggregations)
	if err != nil {
		return nil, err
	}
	return &CSVDataSource{
		aggregatorSet: set,
		csvDataFolder: csvDataFolder,
		sinceTS:       sinceTS,
	}, nil
}

func (s *CSVDataSource) Connect(ctx context.Context) error {
	history, err := LoadHistoricalData(s.sourceID, s.timeframe, s.csvDataFolder)
	if err != nil {
		return err
	}
	if s.sinceTS > 0 {
		filtered := history[:0]
		for _, ohlcv := range history {
			if ohlcv.Timestamp > s.sinceTS {
				filtered = append(filtered, ohlcv)
			}
		}
		history = filtered
	}
	s.history = history
	return nil
}

func (s *CSVDataSource) Read(ctx context.Context, out chan<- interfaces.DataUpdate) error {
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

	// nil bar marks the end of the historical stream
	select {
	case out <- interfaces.DataUpdate{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *CSVDataSource) Disconnect() error {
	return nil
}

func historyFilePath(pair string, timeframe string, csvDataFolder string) string {
	name := fmt.Sprintf("%s_%s.csv", strings.ReplaceAll(pair, "/", "_"), timeframe)
	return filepath.Join(csvDataFolder, name)
}

// LoadHistoricalData reads every candle of a pair and timeframe from its CSV
// file.
func LoadHistoricalData(pair string, timeframe string, csvDataFolder string) ([]models.OHLCV, error) {
	file, err := os.Open(historyFilePath(pair, timeframe, csvDataFolder))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	history := make([]models.OHLCV, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d of %s_%s.csv has %d columns, expected 6",
				i+1, pair, timeframe, len(row))
		}
		timestamp, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s_%s.csv: %w", i+1, pair, timeframe, err)
		}
		values := make([]float64, 5)
		for j := 0; j < 5; j++ {
			values[j], err = strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d of %s_%s.csv: %w", i+1, pair, timeframe, err)
			}
		}
		history = append(history, models.OHLCV{
			Timestamp: timestamp,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}
	return history, nil
}

// AppendToCSV appends candles to the history file of a pair and timeframe,
// creating the folder and file when missing.
func AppendToCSV(pair string, timeframe string, csvDataFolder string, candles []models.OHLCV) error {
	if err := os.MkdirAll(csvDataFolder, 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(historyFilePath(pair, timeframe, csvDataFolder),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, candle := range candles {
		row := []string{
			strconv.FormatInt(candle.Timestamp, 10),
			strconv.FormatFloat(candle.Open, 'f', -1, 64),
			strconv.FormatFloat(candle.High, 'f', -1, 64),
			strconv.FormatFloat(candle.Low, 'f', -1, 64),
			strconv.FormatFloat(candle.Close, 'f', -1, 64),
			strconv.FormatFloat(candle.Volume, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
