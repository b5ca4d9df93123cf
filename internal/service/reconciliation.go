package service

import (
	"errors"
	"fmt"

	"github.com/ayo6706/txledger/internal/ledger"
	"github.com/ayo6706/txledger/internal/observability"
	"go.uber.org/zap"
)

// ErrLedgerImbalance is returned when any account breaks total == available + held.
var ErrLedgerImbalance = errors.New("ledger imbalance detected")

// ReconciliationService verifies ledger integrity invariants.
type ReconciliationService struct {
	logger *zap.Logger
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.L()
	}
	return &ReconciliationService{logger: logger}
}

// Run checks every account of l and fails if one is out of balance.
func (s *ReconciliationService) Run(l *ledger.Ledger) error {
	bad := l.Unbalanced()
	if len(bad) == 0 {
		s.logger.Debug("ledger balanced", zap.Int("accounts", l.Len()))
		return nil
	}

	for _, acc := range bad {
		observability.IncrementInvariantViolation()
		s.logger.Error("CRITICAL: ledger imbalance detected",
			zap.Uint16("client", uint16(acc.Client)),
			zap.String("available", acc.Available.String()),
			zap.String("held", acc.Held.String()),
			zap.String("total", acc.Total.String()),
		)
	}
	return fmt.Errorf("%w: %d of %d accounts", ErrLedgerImbalance, len(bad), l.Len())
}
