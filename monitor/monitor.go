package monitor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// Monitor collects everything a session wants to expose for analysis: named
// gauges, chart series, annotations, log lines, plus the orders, trades and
// positions as they happen. During live trading a background loop ships the
// collected batch to the analysis endpoint; for backtests the whole batch is
// uploaded once at the end.
//
// Chart points, annotations, trades and orders are stamped with the session
// tracker's highest timestamp, so backtest uploads line up with the
// historical data instead of the wall clock.
type Monitor struct {
	client         *APIClient
	tracker        *exchange.StatusTracker
	sessionID      string
	strategyID     string
	uploadInterval time.Duration

	mu          sync.Mutex
	monitoring  map[string]models.MonitoringPoint
	chartSchema map[string]models.ChartSchema
	schemaOrder []string
	chartPoints []models.ChartPoint
	annotations []models.AnnotationPoint
	logLines    []models.LogMessagePoint
	trades      []*models.Trade
	orders      []*models.Order
	positions   []*models.Position
}

func NewMonitor(client *APIClient, tracker *exchange.StatusTracker) *Monitor {
	return &Monitor{
		client:         client,
		tracker:        tracker,
		sessionID:      helpers.GUID(),
		strategyID:     os.Getenv("monitorStrategyID"),
		uploadInterval: 10 * time.Second,
		monitoring:     make(map[string]models.MonitoringPoint),
		chartSchema:    make(map[string]models.ChartSchema),
	}
}

func (m *Monitor) SetUploadInterval(interval time.Duration) {
	m.uploadInterval = interval
}

// AddChartSchema declares a chart series. Points for undeclared series are
// dropped at serialization time.
func (m *Monitor) AddChartSchema(schema models.ChartSchema) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chartSchema[schema.Name]; !exists {
		m.schemaOrder = append(m.schemaOrder, schema.Name)
	}
	m.chartSchema[schema.Name] = schema
}

// AddMonitoringPoint sets a named gauge. Same-name points overwrite.
func (m *Monitor) AddMonitoringPoint(point models.MonitoringPoint) {
	if point.Timestamp == 0 {
		point.Timestamp = helpers.NowTS()
	}
	m.mu.Lock()
	m.monitoring[point.Name] = point
	m.mu.Unlock()
}

func (m *Monitor) AddChartPoint(point models.ChartPoint) {
	if point.Timestamp == 0 {
		point.Timestamp = m.tracker.HighestTimestamp()
	}
	m.mu.Lock()
	m.chartPoints = append(m.chartPoints, point)
	m.mu.Unlock()
}

func (m *Monitor) AddAnnotation(point models.AnnotationPoint) {
	if point.Timestamp == 0 {
		point.Timestamp = m.tracker.HighestTimestamp()
	}
	m.mu.Lock()
	m.annotations = append(m.annotations, point)
	m.mu.Unlock()
}

func (m *Monitor) AddLogMessage(point models.LogMessagePoint) {
	if point.Timestamp == 0 {
		point.Timestamp = helpers.NowTS()
	}
	m.mu.Lock()
	m.logLines = append(m.logLines, point)
	m.mu.Unlock()
}

func (m *Monitor) AddTrade(trade *models.Trade) {
	m.mu.Lock()
	m.trades = append(m.trades, trade)
	m.mu.Unlock()
}

func (m *Monitor) AddOrder(order *models.Order) {
	m.mu.Lock()
	m.orders = append(m.orders, order)
	m.mu.Unlock()
}

func (m *Monitor) AddPosition(position *models.Position) {
	m.mu.Lock()
	m.positions = append(m.positions, position)
	m.mu.Unlock()
}

// Start launches the periodic upload loop. Without full credentials it only
// warns and the monitor keeps collecting locally.
func (m *Monitor) Start(ctx context.Context) {
	if !m.client.Configured() || m.strategyID == "" {
		helpers.Logger.Warnln("monitorAPIKey, monitorAPISecret, monitorAPIEndpoint and monitorStrategyID are required to enable live monitoring")
		return
	}

	go func() {
		ticker := time.NewTicker(m.uploadInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.upload(ctx)
			}
		}
	}()
}

// upload ships the batch collected so far. Failures are logged and the data
// is kept for the next round.
func (m *Monitor) upload(ctx context.Context) {
	payload := map[string]interface{}{
		"session_id":  m.sessionID,
		"strategy_id": m.strategyID,
		"data":        m.Serialize(),
	}
	if err := m.client.Call(ctx, "v1-monitor", payload); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("monitoring upload failed: %v", err))
		return
	}
	m.clearShipped()
}

func (m *Monitor) clearShipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chartPoints = nil
	m.annotations = nil
	m.logLines = nil
	m.trades = nil
	m.orders = nil
	m.positions = nil
}

// Serialize flattens the collected data into a list of typed entries, the
// chart points folded into a single chart chunk.
func (m *Monitor) Serialize() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data []map[string]interface{}
	if len(m.chartPoints) > 0 {
		data = append(data, map[string]interface{}{
			"type":  "chart",
			"value": m.convertChartData(),
		})
	}
	for _, annotation := range m.annotations {
		data = append(data, map[string]interface{}{"type": "annotation", "value": annotation})
	}
	for _, line := range m.logLines {
		data = append(data, map[string]interface{}{"type": "log", "value": line})
	}
	for _, point := range m.monitoring {
		data = append(data, map[string]interface{}{"type": "variable", "value": point})
	}
	for _, trade := range m.trades {
		data = append(data, map[string]interface{}{"type": "trade", "value": trade})
	}
	for _, order := range m.orders {
		data = append(data, map[string]interface{}{"type": "order", "value": order})
	}
	for _, position := range m.positions {
		data = append(data, map[string]interface{}{
			"type": "position",
			"value": map[string]interface{}{
				"pair":          position.Pair,
				"position_type": position.PositionType,
				"balance":       position.Balance(),
				"average_open":  position.AverageOpen(),
				"total_pnl":     position.TotalPNL(),
			},
		})
	}
	return data
}

// convertChartData packs every chart point into one chunk: a schema with
// per-series offsets into a flat value array, and one such array per unique
// timestamp. Float series take one slot, OHLCV series five.
func (m *Monitor) convertChartData() map[string]interface{} {
	slotWidth := func(schema models.ChartSchema) int {
		if schema.DataType == models.ChartPointOHLCV {
			return 5
		}
		return 1
	}

	offsets := make(map[string]int, len(m.schemaOrder))
	rowLength := 0
	for _, name := range m.schemaOrder {
		offsets[name] = rowLength
		rowLength += slotWidth(m.chartSchema[name])
	}

	timestampSet := make(map[int64]bool)
	for _, point := range m.chartPoints {
		timestampSet[point.Timestamp] = true
	}
	timestamps := make([]int64, 0, len(timestampSet))
	for timestamp := range timestampSet {
		timestamps = append(timestamps, timestamp)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	rows := make(map[int64][]float64, len(timestamps))
	for _, timestamp := range timestamps {
		rows[timestamp] = make([]float64, rowLength)
	}

	for _, point := range m.chartPoints {
		schema, declared := m.chartSchema[point.Name]
		if !declared {
			continue
		}
		row := rows[point.Timestamp]
		offset := offsets[point.Name]
		switch schema.DataType {
		case models.ChartPointOHLCV:
			if ohlcv, ok := point.Value.(models.OHLCV); ok {
				row[offset] = ohlcv.Open
				row[offset+1] = ohlcv.High
				row[offset+2] = ohlcv.Low
				row[offset+3] = ohlcv.Close
				row[offset+4] = ohlcv.Volume
			}
		default:
			if value, ok := point.Value.(float64); ok {
				row[offset] = value
			}
		}
	}

	schemas := make(map[string]interface{}, len(m.chartSchema))
	for _, name := range m.schemaOrder {
		schemas[name] = map[string]interface{}{
			"name":        name,
			"data_type":   m.chartSchema[name].DataType,
			"chart_type":  m.chartSchema[name].ChartType,
			"chart_color": m.chartSchema[name].ChartColor,
			"y_axis":      m.chartSchema[name].YAxis,
			"visible":     m.chartSchema[name].Visible,
			"data_index":  offsets[name],
		}
	}

	var firstTimestamp int64
	if len(timestamps) > 0 {
		firstTimestamp = timestamps[0]
	}
	return map[string]interface{}{
		"timestamp": firstTimestamp,
		"schema":    schemas,
		"data":      rows,
	}
}
