package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"backlab/internal/domain"
)

func testBars() []domain.Bar {
	return []domain.Bar{
		{Date: "2024-01-02", Open: 185.0, High: 186.5, Low: 184.0, Close: 185.5, Volume: 50000000},
		{Date: "2024-01-03", Open: 185.5, High: 187.0, Low: 185.0, Close: 186.0, Volume: 45000000},
		{Date: "2024-01-04", Open: 186.0, High: 188.0, Low: 185.5, Close: 187.5, Volume: 48000000},
	}
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	got := ps.barPath("1718000000000")
	want := filepath.Join("/data", "datasets", "1718000000000.parquet")
	if got != want {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := ps.WriteBars(ctx, "ds-1", testBars()); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := ps.ReadBars(ctx, "ds-1")
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadBars returned %d bars, want 3", len(got))
	}
	if got[0].Date != "2024-01-02" || got[0].Close != 185.5 {
		t.Errorf("first bar = %+v, want 2024-01-02 close 185.5", got[0])
	}
	if got[2].Date != "2024-01-04" || got[2].Volume != 48000000 {
		t.Errorf("last bar = %+v, want 2024-01-04 volume 48000000", got[2])
	}
}

func TestParquetStoreSortsByDate(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := testBars()
	// Write out of order; reads come back date-ascending.
	shuffled := []domain.Bar{bars[2], bars[0], bars[1]}
	if err := ps.WriteBars(ctx, "ds-2", shuffled); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := ps.ReadBars(ctx, "ds-2")
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date >= got[i].Date {
			t.Fatalf("bars not date-ascending: %q before %q", got[i-1].Date, got[i].Date)
		}
	}
}

func TestParquetStoreMissingDataset(t *testing.T) {
	ps := NewParquetStore(t.TempDir())

	_, err := ps.ReadBars(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadBars for missing dataset returned %v, want ErrNotFound", err)
	}
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() {
		if cerr := s.Close(); cerr != nil {
			t.Errorf("Close() returned error: %v", cerr)
		}
	})
	return s
}

func TestSQLiteStoreDatasetRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ds := &domain.Dataset{
		ID:         "1718000000000",
		Symbol:     "AAPL",
		Duration:   "1 M",
		BarSize:    "1 day",
		DataPoints: 21,
		CreatedAt:  time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	got, err := s.GetDataset(ctx, ds.ID)
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if got.Symbol != "AAPL" || got.DataPoints != 21 || got.BarSize != "1 day" {
		t.Errorf("GetDataset = %+v, want saved metadata", got)
	}
	if !got.CreatedAt.Equal(ds.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, ds.CreatedAt)
	}
}

func TestSQLiteStoreGetDatasetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetDataset(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDataset for missing id returned %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreListDatasets(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	older := &domain.Dataset{
		ID: "100", Symbol: "AAPL", Duration: "1 M", BarSize: "1 day",
		DataPoints: 21, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &domain.Dataset{
		ID: "200", Symbol: "MSFT", Duration: "1 Y", BarSize: "1 day",
		DataPoints: 252, CreatedAt: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	for _, ds := range []*domain.Dataset{older, newer} {
		if err := s.SaveDataset(ctx, ds); err != nil {
			t.Fatalf("SaveDataset(%s): %v", ds.ID, err)
		}
	}

	got, err := s.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListDatasets returned %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "200" || got[1].ID != "100" {
		t.Errorf("ListDatasets order = [%s %s], want [200 100]", got[0].ID, got[1].ID)
	}
}

func TestSQLiteStoreRunHistory(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := &domain.Run{
		DatasetID: "100", Strategy: "moving_average_crossover",
		ShortPeriod: 10, LongPeriod: 30, TrainSplit: 0.8,
		InitialCapital: 10000, TrainReturn: 12.5, ValidationReturn: -2.1,
	}
	if err := s.SaveRun(ctx, first); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if first.ID == 0 {
		t.Error("SaveRun did not assign an id")
	}

	second := &domain.Run{
		DatasetID: "100", Strategy: "moving_average_crossover",
		ShortPeriod: 5, LongPeriod: 20, TrainSplit: 0.8,
		InitialCapital: 10000, TrainReturn: 17.39, ValidationReturn: 0,
	}
	if err := s.SaveRun(ctx, second); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ShortPeriod != 5 || runs[1].ShortPeriod != 10 {
		t.Errorf("ListRuns order = short %d then %d, want 5 then 10", runs[0].ShortPeriod, runs[1].ShortPeriod)
	}
	if runs[1].TrainReturn != 12.5 || runs[1].ValidationReturn != -2.1 {
		t.Errorf("first run = %+v, want saved returns", runs[1])
	}

	// Limit caps the result count.
	limited, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListRuns(1) returned %d runs, want 1", len(limited))
	}
}
