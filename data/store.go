package data

import (
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// Store holds the candle history per source and timeframe. The last element
// of each series is the bar currently forming; Update keeps rewriting it
// until a new bar starts and Append adds the next one.
type Store struct {
	mu    sync.RWMutex
	store map[string]map[string][]models.OHLCV
}

func NewStore() *Store {
	return &Store{store: make(map[string]map[string][]models.OHLCV)}
}

func (s *Store) series(sourceID string, timeframe string) []models.OHLCV {
	byTimeframe, ok := s.store[sourceID]
	if !ok {
		return nil
	}
	return byTimeframe[timeframe]
}

// Append adds a candle to the end of a series.
func (s *Store) Append(sourceID string, timeframe string, ohlcv models.OHLCV) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTimeframe, ok := s.store[sourceID]
	if !ok {
		byTimeframe = make(map[string][]models.OHLCV)
		s.store[sourceID] = byTimeframe
	}
	byTimeframe[timeframe] = append(byTimeframe[timeframe], ohlcv)
}

// Update replaces the most recent candle of a series. No-op when the series
// is empty.
func (s *Store) Update(sourceID string, timeframe string, ohlcv models.OHLCV) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.series(sourceID, timeframe)
	if len(series) > 0 {
		series[len(series)-1] = ohlcv
	}
}

// Last returns the most recent candle of a series.
func (s *Store) Last(sourceID string, timeframe string) (models.OHLCV, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series(sourceID, timeframe)
	if len(series) == 0 {
		return models.OHLCV{}, false
	}
	return series[len(series)-1], true
}

// List returns a copy of the whole series.
func (s *Store) List(sourceID string, timeframe string) []models.OHLCV {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series(sourceID, timeframe)
	result := make([]models.OHLCV, len(series))
	copy(result, series)
	return result
}

// Len returns the number of candles in a series.
func (s *Store) Len(sourceID string, timeframe string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series(sourceID, timeframe))
}
