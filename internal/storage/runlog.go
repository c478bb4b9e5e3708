package storage

import (
	"database/sql"
	"fmt"
	"time"

	"stocksync_api/pkg/dbconnect"
)

// SkuFailure records one SKU whose downstream update did not succeed.
type SkuFailure struct {
	Sku    string
	Status int
	Detail string
}

// RunSummary is what one synchronization run leaves behind in Postgres.
type RunSummary struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	RequestedSkus  int
	FetchedRecords int
	UpdatedCount   int
	FailedCount    int
	Failures       []SkuFailure
}

type RunLogRepository struct {
	db *sql.DB
}

func NewRunLogRepository(connector dbconnect.DbConnector) (*RunLogRepository, error) {
	db, err := connector.Connect()
	if err != nil {
		return nil, err
	}
	repo := &RunLogRepository{db: db}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *RunLogRepository) ensureSchema() error {
	queries := []string{
		`CREATE SCHEMA IF NOT EXISTS stocksync`,
		`CREATE TABLE IF NOT EXISTS stocksync.runs (
			run_id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			requested_skus INT NOT NULL,
			fetched_records INT NOT NULL,
			updated_count INT NOT NULL,
			failed_count INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stocksync.run_failures (
			run_id TEXT NOT NULL REFERENCES stocksync.runs(run_id),
			sku TEXT NOT NULL,
			status INT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return fmt.Errorf("run log schema: %w", err)
		}
	}
	return nil
}

// InsertRun writes the summary and its per-SKU failures in one transaction.
func (r *RunLogRepository) InsertRun(summary RunSummary) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run log tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO stocksync.runs
			(run_id, started_at, finished_at, requested_skus, fetched_records, updated_count, failed_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		summary.RunID, summary.StartedAt, summary.FinishedAt,
		summary.RequestedSkus, summary.FetchedRecords,
		summary.UpdatedCount, summary.FailedCount)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", summary.RunID, err)
	}

	for _, failure := range summary.Failures {
		_, err = tx.Exec(`
			INSERT INTO stocksync.run_failures (run_id, sku, status, detail)
			VALUES ($1, $2, $3, $4)`,
			summary.RunID, failure.Sku, failure.Status, failure.Detail)
		if err != nil {
			return fmt.Errorf("insert run failure %s/%s: %w", summary.RunID, failure.Sku, err)
		}
	}

	return tx.Commit()
}
