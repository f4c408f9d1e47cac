// Package httpapi provides the HTTP REST API for the backlab server:
// dataset management, backtests, parameter optimization, and run history,
// all in JSON.
package httpapi

import (
	"backlab/internal/domain"
)

// FileInfo identifies the dataset a backtest or optimization ran against.
type FileInfo struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Duration string `json:"duration"`
	BarSize  string `json:"bar_size"`
}

// SaveDatasetResponse acknowledges a fetched and persisted dataset.
type SaveDatasetResponse struct {
	Message    string `json:"message"`
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	DataPoints int    `json:"data_points"`
}

// DatasetsResponse lists the dataset catalog.
type DatasetsResponse struct {
	Count    int              `json:"count"`
	Datasets []domain.Dataset `json:"datasets"`
}

// DatasetResponse is one catalog entry together with its full bar series.
type DatasetResponse struct {
	Dataset domain.Dataset `json:"dataset"`
	Data    []domain.Bar   `json:"data"`
}

// BacktestResponse is a backtest result tagged with its source dataset.
type BacktestResponse struct {
	FileInfo FileInfo `json:"file_info"`
	*domain.BacktestResult
}

// OptimizeResponse is an optimization result tagged with its source dataset.
type OptimizeResponse struct {
	FileInfo FileInfo `json:"file_info"`
	*domain.OptimizationResult
}

// RunsResponse lists recent backtest runs, newest first.
type RunsResponse struct {
	Count int          `json:"count"`
	Runs  []domain.Run `json:"runs"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status     string   `json:"status"`
	Strategies []string `json:"strategies"`
}

// fileInfoFor builds the FileInfo tag for a dataset.
func fileInfoFor(ds *domain.Dataset) FileInfo {
	return FileInfo{
		ID:       ds.ID,
		Symbol:   ds.Symbol,
		Duration: ds.Duration,
		BarSize:  ds.BarSize,
	}
}
