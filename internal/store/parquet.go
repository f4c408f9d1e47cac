package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"backlab/internal/domain"
)

// Compile-time interface check.
var _ BarStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore using one Parquet file per dataset on
// disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// BarRecord is the Parquet schema for saved bar data.
type BarRecord struct {
	Date   string  `parquet:"date"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume int64   `parquet:"volume"`
}

// WriteBars writes the dataset's bar series to its Parquet file, sorted by
// date. Layout: <DataDir>/datasets/<ID>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, datasetID string, bars []domain.Bar) error {
	records := make([]BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, BarRecord{
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	path := s.barPath(datasetID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing bars for dataset %s: %w", datasetID, err)
	}
	return nil
}

// ReadBars reads the dataset's bar series from its Parquet file.
func (s *ParquetStore) ReadBars(_ context.Context, datasetID string) ([]domain.Bar, error) {
	path := s.barPath(datasetID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, ErrNotFound)
	}

	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading bars for dataset %s: %w", datasetID, err)
	}

	bars := make([]domain.Bar, 0, len(records))
	for _, r := range records {
		bars = append(bars, domain.Bar{
			Date:   r.Date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return bars, nil
}

// barPath returns the filesystem path for a dataset's Parquet file.
func (s *ParquetStore) barPath(datasetID string) string {
	return filepath.Join(s.DataDir, "datasets", datasetID+".parquet")
}
