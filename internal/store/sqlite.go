package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"backlab/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ DatasetStore = (*SQLiteStore)(nil)
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements DatasetStore and RunStore backed by a SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	duration    TEXT NOT NULL,
	bar_size    TEXT NOT NULL,
	data_points INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset_id        TEXT NOT NULL,
	strategy          TEXT NOT NULL,
	short_period      INTEGER NOT NULL,
	long_period       INTEGER NOT NULL,
	train_split       REAL NOT NULL,
	initial_capital   REAL NOT NULL,
	train_return      REAL NOT NULL,
	validation_return REAL NOT NULL,
	created_at        INTEGER NOT NULL
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies
// the schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// DatasetStore implementation
// ---------------------------------------------------------------------------

// SaveDataset inserts a dataset's metadata into the catalog.
func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *domain.Dataset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets (id, symbol, duration, bar_size, data_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Symbol, ds.Duration, ds.BarSize, ds.DataPoints, ds.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting dataset %s: %w", ds.ID, err)
	}
	return nil
}

// GetDataset retrieves catalog metadata by dataset id.
func (s *SQLiteStore) GetDataset(ctx context.Context, id string) (*domain.Dataset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, duration, bar_size, data_points, created_at
		 FROM datasets WHERE id = ?`, id,
	)

	var ds domain.Dataset
	var createdAt int64
	err := row.Scan(&ds.ID, &ds.Symbol, &ds.Duration, &ds.BarSize, &ds.DataPoints, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying dataset %s: %w", id, err)
	}
	ds.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &ds, nil
}

// ListDatasets returns all catalog entries, newest first.
func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, duration, bar_size, data_points, created_at
		 FROM datasets ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset
	for rows.Next() {
		var ds domain.Dataset
		var createdAt int64
		if err := rows.Scan(&ds.ID, &ds.Symbol, &ds.Duration, &ds.BarSize, &ds.DataPoints, &createdAt); err != nil {
			return nil, err
		}
		ds.CreatedAt = time.Unix(createdAt, 0).UTC()
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// ---------------------------------------------------------------------------
// RunStore implementation
// ---------------------------------------------------------------------------

// SaveRun inserts a completed run into the history and fills in its
// assigned id.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (dataset_id, strategy, short_period, long_period,
		                   train_split, initial_capital, train_return,
		                   validation_return, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.DatasetID, run.Strategy, run.ShortPeriod, run.LongPeriod,
		run.TrainSplit, run.InitialCapital, run.TrainReturn,
		run.ValidationReturn, run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting run for dataset %s: %w", run.DatasetID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset_id, strategy, short_period, long_period,
		        train_split, initial_capital, train_return, validation_return,
		        created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.DatasetID, &r.Strategy, &r.ShortPeriod,
			&r.LongPeriod, &r.TrainSplit, &r.InitialCapital, &r.TrainReturn,
			&r.ValidationReturn, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
