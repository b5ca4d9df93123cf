package service

import (
	"testing"

	"github.com/ayo6706/txledger/internal/ledger"
	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReconciliationRun(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := NewReconciliationService(zap.New(core))

	l := ledger.New()
	amt := decimal.NewFromInt(10)
	require.NoError(t, ledger.Apply(l, models.Operation{Kind: models.Deposit, Client: 1, Tx: 1, Amount: &amt}))
	require.NoError(t, svc.Run(l))
	assert.Equal(t, 0, logs.FilterMessage("CRITICAL: ledger imbalance detected").Len())

	broken := l.GetOrCreateAccount(2)
	broken.Total = decimal.NewFromInt(5)

	err := svc.Run(l)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerImbalance)
	assert.Contains(t, err.Error(), "1 of 2 accounts")
	assert.Equal(t, 1, logs.FilterMessage("CRITICAL: ledger imbalance detected").Len())
}
