// Package repository stores rendered account tables in Postgres.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS account_snapshots (
	batch_id   UUID        NOT NULL,
	client     INTEGER     NOT NULL,
	available  NUMERIC     NOT NULL,
	held       NUMERIC     NOT NULL,
	total      NUMERIC     NOT NULL,
	locked     BOOLEAN     NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (batch_id, client)
)`

const insertSnapshotRow = `
INSERT INTO account_snapshots (batch_id, client, available, held, total, locked, created_at)
VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, NOW())
ON CONFLICT (batch_id, client) DO UPDATE
SET available = EXCLUDED.available, held = EXCLUDED.held, total = EXCLUDED.total, locked = EXCLUDED.locked`

// DBTX is the subset of *pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// SnapshotRow is one account line of a stored snapshot.
type SnapshotRow struct {
	Client    int32
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create account_snapshots: %w", err)
	}
	return nil
}

// SaveSnapshot writes all rows of a batch. The rows are sent as a single pgx batch,
// which Postgres runs in one implicit transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, batchID uuid.UUID, rows []SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertSnapshotRow,
			batchID,
			row.Client,
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			row.Locked,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	for _, row := range rows {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("insert snapshot row for client %d: %w", row.Client, err)
		}
		if err := requireExactlyOne(tag.RowsAffected(), "insert snapshot row"); err != nil {
			_ = results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close snapshot batch: %w", err)
	}
	return nil
}

func requireExactlyOne(rows int64, operation string) error {
	if rows != 1 {
		return fmt.Errorf("%s affected %d rows", operation, rows)
	}
	return nil
}
