package database

import (
	"os"

	"github.com/joho/godotenv"
	database "gitlab.com/aoterocom/AOAlgoRuntime/database/models"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DBService struct {
	DB *gorm.DB
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Order{}, &database.Trade{}, &database.PositionSnapshot{}, &database.Candle{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

// SaveOrder upserts an order keyed by its client order id.
func (dbs *DBService) SaveOrder(order *models.Order) error {
	dbOrder := database.Order{
		ClientOrderID: order.ClientOrderID,
		ServerOrderID: order.ServerOrderID,
		Pair:          order.Pair,
		PositionType:  string(order.PositionType),
		TradeType:     string(order.TradeType),
		OrderType:     string(order.OrderType),
		Status:        string(order.Status()),
		Quantity:      order.Quantity,
		Price:         order.Price,
		Filled:        order.Filled(),
		Timestamp:     order.Timestamp,
	}
	return dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"server_order_id", "status", "filled"}),
	}).Create(&dbOrder).Error
}

// SaveTrade inserts a trade, ignoring replays of an already stored trade id.
func (dbs *DBService) SaveTrade(trade *models.Trade) error {
	dbTrade := database.Trade{
		TradeID:       trade.TradeID,
		ServerOrderID: trade.ServerOrderID,
		Pair:          trade.Pair,
		PositionType:  string(trade.PositionType),
		TradeType:     string(trade.TradeType),
		Price:         trade.Price,
		Quantity:      trade.Quantity,
		PNL:           trade.PNL,
		Timestamp:     trade.Timestamp,
	}
	return dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_id"}},
		DoNothing: true,
	}).Create(&dbTrade).Error
}

func (dbs *DBService) SavePositionSnapshot(position *models.Position, timestamp int64) error {
	snapshot := database.PositionSnapshot{
		Pair:         position.Pair,
		PositionType: string(position.PositionType),
		Balance:      position.Balance(),
		AverageOpen:  position.AverageOpen(),
		TotalPNL:     position.TotalPNL(),
		Timestamp:    timestamp,
	}
	return dbs.DB.Create(&snapshot).Error
}

// AddOrUpdateCandle upserts a candle keyed by symbol, timeframe and bucket
// timestamp.
func (dbs *DBService) AddOrUpdateCandle(symbol string, timeframe string, ohlcv models.OHLCV) error {
	dbCandle := database.Candle{
		Symbol:    symbol,
		Timeframe: timeframe,
		Timestamp: ohlcv.Timestamp,
		Open:      ohlcv.Open,
		High:      ohlcv.High,
		Low:       ohlcv.Low,
		Close:     ohlcv.Close,
		Volume:    ohlcv.Volume,
	}
	return dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&dbCandle).Error
}

// GetTrades returns every stored trade of a pair, oldest first.
func (dbs *DBService) GetTrades(pair string) ([]database.Trade, error) {
	var trades []database.Trade
	err := dbs.DB.Where("pair = ?", pair).Order("timestamp asc").Find(&trades).Error
	return trades, err
}
