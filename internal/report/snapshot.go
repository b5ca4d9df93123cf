package report

import (
	"context"
	"fmt"

	"github.com/ayo6706/txledger/internal/models"
	"github.com/ayo6706/txledger/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotStore persists a rendered account table under a batch id.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, batchID uuid.UUID, rows []repository.SnapshotRow) error
}

// SnapshotWriter records the final accounts of a run in the snapshot store.
type SnapshotWriter struct {
	store     SnapshotStore
	precision int32
	newID     func() uuid.UUID
}

func NewSnapshotWriter(store SnapshotStore, precision int32) *SnapshotWriter {
	return &SnapshotWriter{store: store, precision: precision, newID: uuid.New}
}

func (w *SnapshotWriter) WriteAccounts(ctx context.Context, accounts []models.Account) error {
	batchID := w.newID()
	rows := make([]repository.SnapshotRow, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, repository.SnapshotRow{
			Client:    int32(acc.Client),
			Available: acc.Available.Round(w.precision),
			Held:      acc.Held.Round(w.precision),
			Total:     acc.Total.Round(w.precision),
			Locked:    acc.Locked,
		})
	}
	if err := w.store.SaveSnapshot(ctx, batchID, rows); err != nil {
		return fmt.Errorf("save snapshot %s: %w", batchID, err)
	}
	zap.L().Info("account snapshot saved",
		zap.String("batch_id", batchID.String()),
		zap.Int("accounts", len(rows)),
		zap.Int32("precision", w.precision),
	)
	return nil
}
