package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yair/festival-atlas/pkg/domain"
)

// datasetKey is the single row the snapshot lives under.
const datasetKey = "current"

// SQLiteStore persists the dataset as a JSON snapshot in a single-row
// table, so restarts can serve stale data while the first refresh runs.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS dataset_snapshots (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*domain.Dataset, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM dataset_snapshots WHERE key = ?", datasetKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	var dataset domain.Dataset
	if err := json.Unmarshal([]byte(payload), &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return &dataset, nil
}

func (s *SQLiteStore) Save(ctx context.Context, dataset *domain.Dataset) error {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dataset_snapshots (key, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		datasetKey, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
