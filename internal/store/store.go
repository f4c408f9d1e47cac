// Package store defines storage interfaces for persisting and retrieving
// saved bar datasets and backtest run history.
package store

import (
	"context"
	"errors"

	"backlab/internal/domain"
)

// ErrNotFound is returned when a requested dataset does not exist.
var ErrNotFound = errors.New("not found")

// BarStore persists and retrieves the bar payload of a saved dataset.
type BarStore interface {
	// WriteBars persists the full bar series for a dataset id, replacing
	// any previous payload.
	WriteBars(ctx context.Context, datasetID string, bars []domain.Bar) error

	// ReadBars returns the bar series saved under the dataset id, in date
	// order. Missing payloads return ErrNotFound.
	ReadBars(ctx context.Context, datasetID string) ([]domain.Bar, error)
}

// DatasetStore persists and retrieves dataset catalog metadata.
type DatasetStore interface {
	// SaveDataset inserts a dataset's metadata into the catalog.
	SaveDataset(ctx context.Context, ds *domain.Dataset) error

	// GetDataset retrieves catalog metadata by dataset id. Unknown ids
	// return ErrNotFound.
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)

	// ListDatasets returns all catalog entries, newest first.
	ListDatasets(ctx context.Context) ([]domain.Dataset, error)
}

// RunStore persists and retrieves backtest run summaries.
type RunStore interface {
	// SaveRun inserts a completed run into the history.
	SaveRun(ctx context.Context, run *domain.Run) error

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}
