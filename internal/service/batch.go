package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/ayo6706/txledger/internal/ledger"
	"github.com/ayo6706/txledger/internal/models"
	"github.com/ayo6706/txledger/internal/observability"
	"github.com/ayo6706/txledger/internal/report"
	"go.uber.org/zap"
)

// OperationSource yields operations in input order and io.EOF at the end.
type OperationSource interface {
	Next() (models.Operation, error)
}

// Summary counts what happened during a replay.
type Summary struct {
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
	Accounts int `json:"accounts"`
}

// BatchService replays a complete operation sequence into a fresh ledger.
type BatchService struct {
	logger    *zap.Logger
	reconcile *ReconciliationService
}

func NewBatchService(logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.L()
	}
	return &BatchService{
		logger:    logger,
		reconcile: NewReconciliationService(logger),
	}
}

// Replay applies every operation from src in order. Rejected operations are logged
// and skipped; a read error or an invariant violation aborts the replay.
func (s *BatchService) Replay(ctx context.Context, src OperationSource) (*ledger.Ledger, Summary, error) {
	l := ledger.New()
	var sum Summary

	for {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}

		op, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			observability.IncrementBatch("parse_failed")
			return nil, sum, fmt.Errorf("read operations: %w", err)
		}

		err = ledger.Apply(l, op)
		switch {
		case err == nil:
			sum.Applied++
			observability.IncrementOperation(string(op.Kind), domain.OutcomeApplied)
		case ledger.IsRejection(err):
			sum.Rejected++
			observability.IncrementOperation(string(op.Kind), domain.OutcomeRejected)
			s.logger.Debug("operation rejected",
				zap.String("type", string(op.Kind)),
				zap.Uint16("client", uint16(op.Client)),
				zap.Uint32("tx", uint32(op.Tx)),
				zap.Error(err),
			)
		default:
			observability.IncrementInvariantViolation()
			observability.IncrementBatch("invariant_failed")
			s.logger.Error("CRITICAL: ledger invariant violated", zap.Error(err))
			return nil, sum, err
		}
	}

	if err := s.reconcile.Run(l); err != nil {
		observability.IncrementBatch("invariant_failed")
		return nil, sum, err
	}

	sum.Accounts = l.Len()
	observability.IncrementBatch("success")
	observability.SetBatchAccounts(sum.Accounts)
	s.logger.Info("batch replayed",
		zap.Int("applied", sum.Applied),
		zap.Int("rejected", sum.Rejected),
		zap.Int("accounts", sum.Accounts),
	)
	return l, sum, nil
}

// Run replays src and hands the final accounts to out. Nothing is written when the
// replay fails.
func (s *BatchService) Run(ctx context.Context, src OperationSource, out report.Writer) (Summary, error) {
	l, sum, err := s.Replay(ctx, src)
	if err != nil {
		return sum, err
	}
	if err := out.WriteAccounts(ctx, l.Accounts()); err != nil {
		return sum, fmt.Errorf("write accounts: %w", err)
	}
	return sum, nil
}
