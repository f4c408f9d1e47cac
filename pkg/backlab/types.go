package backlab

// Wire types for the backlab server API. These mirror the JSON the server
// emits so SDK users get typed results without importing server internals.

// Bar is a single OHLCV price observation.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Signal is a discrete trading event emitted by a strategy.
type Signal struct {
	Date    string  `json:"date"`
	Action  string  `json:"action"`
	Price   float64 `json:"price"`
	ShortMA float64 `json:"short_ma"`
	LongMA  float64 `json:"long_ma"`
}

// Performance aggregates the outcome of simulating a signal sequence.
type Performance struct {
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

// PeriodRange holds the first and last date of a bar slice.
type PeriodRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// DataSummary describes a train/validation partition.
type DataSummary struct {
	TotalDataPoints      int         `json:"total_data_points"`
	TrainDataPoints      int         `json:"train_data_points"`
	ValidationDataPoints int         `json:"validation_data_points"`
	TrainPeriod          PeriodRange `json:"train_period"`
	ValidationPeriod     PeriodRange `json:"validation_period"`
	TrainSplitPercentage float64     `json:"train_split_percentage"`
}

// SliceResult pairs generated signals with their simulated performance.
type SliceResult struct {
	Trades      []Signal    `json:"trades"`
	Performance Performance `json:"performance"`
}

// FileInfo identifies the dataset a result was computed from.
type FileInfo struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Duration string `json:"duration"`
	BarSize  string `json:"bar_size"`
}

// BacktestResult is the full outcome of one backtest.
type BacktestResult struct {
	FileInfo   FileInfo `json:"file_info"`
	Strategy   string   `json:"strategy"`
	Parameters struct {
		ShortPeriod    int     `json:"short_period"`
		LongPeriod     int     `json:"long_period"`
		InitialCapital float64 `json:"initial_capital"`
	} `json:"parameters"`
	DataSummary       DataSummary `json:"data_summary"`
	TrainingResults   SliceResult `json:"training_results"`
	ValidationResults SliceResult `json:"validation_results"`
	Summary           struct {
		TrainReturn           float64 `json:"train_return"`
		ValidationReturn      float64 `json:"validation_return"`
		PerformanceDifference float64 `json:"performance_difference"`
	} `json:"summary"`
}

// ParamResult records the training performance of one grid-search pair.
type ParamResult struct {
	ShortPeriod int     `json:"short_period"`
	LongPeriod  int     `json:"long_period"`
	Return      float64 `json:"return"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// BestParameters is the winning grid-search pair.
type BestParameters struct {
	ShortPeriod int         `json:"short_period"`
	LongPeriod  int         `json:"long_period"`
	Performance Performance `json:"performance"`
}

// OptimizationResult is the outcome of a parameter grid search.
type OptimizationResult struct {
	FileInfo       FileInfo        `json:"file_info"`
	BestParameters *BestParameters `json:"best_parameters"`
	AllResults     []ParamResult   `json:"all_results"`
	DataSummary    DataSummary     `json:"data_summary"`
}

// Dataset is the catalog metadata for a saved bar series.
type Dataset struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Duration   string `json:"duration"`
	BarSize    string `json:"bar_size"`
	DataPoints int    `json:"data_points"`
	CreatedAt  string `json:"created_at"`
}

// DatasetData is one catalog entry with its full bar series.
type DatasetData struct {
	Dataset Dataset `json:"dataset"`
	Data    []Bar   `json:"data"`
}

// SaveDatasetResult acknowledges a fetched and persisted dataset.
type SaveDatasetResult struct {
	Message    string `json:"message"`
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	DataPoints int    `json:"data_points"`
}

// Run is one entry in the backtest run history.
type Run struct {
	ID               int64   `json:"id"`
	DatasetID        string  `json:"dataset_id"`
	Strategy         string  `json:"strategy"`
	ShortPeriod      int     `json:"short_period"`
	LongPeriod       int     `json:"long_period"`
	TrainSplit       float64 `json:"train_split"`
	InitialCapital   float64 `json:"initial_capital"`
	TrainReturn      float64 `json:"train_return"`
	ValidationReturn float64 `json:"validation_return"`
	CreatedAt        string  `json:"created_at"`
}

// Health reports server liveness and the registered strategies.
type Health struct {
	Status     string   `json:"status"`
	Strategies []string `json:"strategies"`
}

type datasetsResponse struct {
	Count    int       `json:"count"`
	Datasets []Dataset `json:"datasets"`
}

type runsResponse struct {
	Count int   `json:"count"`
	Runs  []Run `json:"runs"`
}
