// Package domain defines the core data types shared across the backlab
// platform: price bars, trade signals, performance reports, and the result
// records produced by backtests and parameter optimization.
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// SignalAction is the direction of a trade signal.
type SignalAction string

// Signal actions.
const (
	SignalBuy  SignalAction = "BUY"
	SignalSell SignalAction = "SELL"
)

// Bar is a single OHLCV price observation. Date is a string-comparable
// timestamp ("2006-01-02" or "2006-01-02 15:04:05"); within a series dates
// are ascending and unique. Bars are immutable once produced.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Signal is a discrete trading event emitted by a strategy. Price is the
// close of the bar the signal fired on; ShortMA and LongMA are the moving
// average values that triggered it.
type Signal struct {
	Date    string       `json:"date"`
	Action  SignalAction `json:"action"`
	Price   float64      `json:"price"`
	ShortMA float64      `json:"short_ma"`
	LongMA  float64      `json:"long_ma"`
}

// PerformanceReport aggregates the outcome of simulating a signal sequence
// with a fixed starting capital. All fields are derived by the performance
// calculator and never set independently.
type PerformanceReport struct {
	TotalTrades        int     `json:"total_trades"`
	CompletedTrades    int     `json:"completed_trades"`
	ProfitableTrades   int     `json:"profitable_trades"`
	LosingTrades       int     `json:"losing_trades"`
	WinRate            float64 `json:"win_rate"`
	InitialCapital     float64 `json:"initial_capital"`
	FinalCapital       float64 `json:"final_capital"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnDollars float64 `json:"total_return_dollars"`
}

// PeriodRange holds the first and last date of a bar slice. Both are nil
// when the slice is empty.
type PeriodRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// DataSummary describes how a bar series was partitioned into training and
// validation slices.
type DataSummary struct {
	TotalDataPoints      int         `json:"total_data_points"`
	TrainDataPoints      int         `json:"train_data_points"`
	ValidationDataPoints int         `json:"validation_data_points"`
	TrainPeriod          PeriodRange `json:"train_period"`
	ValidationPeriod     PeriodRange `json:"validation_period"`
	TrainSplitPercentage float64     `json:"train_split_percentage"`
}

// Parameters are the strategy parameters a backtest ran with.
type Parameters struct {
	ShortPeriod    int     `json:"short_period"`
	LongPeriod     int     `json:"long_period"`
	InitialCapital float64 `json:"initial_capital"`
}

// SliceResult pairs the signals generated on one data slice with their
// simulated performance.
type SliceResult struct {
	Trades      []Signal          `json:"trades"`
	Performance PerformanceReport `json:"performance"`
}

// ReturnSummary compares training and validation returns.
type ReturnSummary struct {
	TrainReturn           float64 `json:"train_return"`
	ValidationReturn      float64 `json:"validation_return"`
	PerformanceDifference float64 `json:"performance_difference"`
}

// BacktestResult is the full outcome of one backtest: independent results
// for the training and validation slices plus the split summary and the
// train-vs-validation return gap.
type BacktestResult struct {
	Strategy          string        `json:"strategy"`
	Parameters        Parameters    `json:"parameters"`
	DataSummary       DataSummary   `json:"data_summary"`
	TrainingResults   SliceResult   `json:"training_results"`
	ValidationResults SliceResult   `json:"validation_results"`
	Summary           ReturnSummary `json:"summary"`
}

// ParamResult records the training performance of one grid-search
// parameter pair.
type ParamResult struct {
	ShortPeriod int     `json:"short_period"`
	LongPeriod  int     `json:"long_period"`
	Return      float64 `json:"return"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// BestParameters is the winning grid-search pair with its full training
// performance report.
type BestParameters struct {
	ShortPeriod int               `json:"short_period"`
	LongPeriod  int               `json:"long_period"`
	Performance PerformanceReport `json:"performance"`
}

// OptimizationResult is the outcome of a grid search: the best pair, every
// evaluated pair sorted descending by training return, and the data split
// the search ran against. BestParameters is nil when the grid was empty.
type OptimizationResult struct {
	BestParameters *BestParameters `json:"best_parameters"`
	AllResults     []ParamResult   `json:"all_results"`
	DataSummary    DataSummary     `json:"data_summary"`
}

// Dataset is the catalog metadata for a saved bar series.
type Dataset struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Duration   string    `json:"duration"`
	BarSize    string    `json:"bar_size"`
	DataPoints int       `json:"data_points"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDataset builds the catalog entry for a freshly fetched daily bar
// series, minting an id from the wall clock in milliseconds.
func NewDataset(symbol string, days, dataPoints int) *Dataset {
	created := time.Now().UTC()
	return &Dataset{
		ID:         strconv.FormatInt(created.UnixMilli(), 10),
		Symbol:     symbol,
		Duration:   fmt.Sprintf("%d days", days),
		BarSize:    "1 day",
		DataPoints: dataPoints,
		CreatedAt:  created,
	}
}

// Run is the persisted summary of one completed backtest.
type Run struct {
	ID               int64     `json:"id"`
	DatasetID        string    `json:"dataset_id"`
	Strategy         string    `json:"strategy"`
	ShortPeriod      int       `json:"short_period"`
	LongPeriod       int       `json:"long_period"`
	TrainSplit       float64   `json:"train_split"`
	InitialCapital   float64   `json:"initial_capital"`
	TrainReturn      float64   `json:"train_return"`
	ValidationReturn float64   `json:"validation_return"`
	CreatedAt        time.Time `json:"created_at"`
}
