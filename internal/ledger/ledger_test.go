package ledger

import (
	"testing"

	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateAccount(t *testing.T) {
	l := New()

	acc := l.GetOrCreateAccount(7)
	require.NotNil(t, acc)
	assert.Equal(t, models.ClientID(7), acc.Client)
	assert.True(t, acc.Available.IsZero())
	assert.True(t, acc.Held.IsZero())
	assert.True(t, acc.Total.IsZero())
	assert.False(t, acc.Locked)

	acc.Available = decimal.NewFromInt(3)
	assert.Same(t, acc, l.GetOrCreateAccount(7))
	assert.Equal(t, 1, l.Len())
}

func TestAccountUnknownClient(t *testing.T) {
	l := New()
	_, ok := l.Account(42)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestAccountReturnsCopy(t *testing.T) {
	l := New()
	l.GetOrCreateAccount(1)

	acc, ok := l.Account(1)
	require.True(t, ok)
	acc.Locked = true

	again, _ := l.Account(1)
	assert.False(t, again.Locked)
}

func TestAccountsOrderedByClient(t *testing.T) {
	l := New()
	for _, c := range []models.ClientID{9, 2, 5} {
		l.GetOrCreateAccount(c)
	}

	accounts := l.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, models.ClientID(2), accounts[0].Client)
	assert.Equal(t, models.ClientID(5), accounts[1].Client)
	assert.Equal(t, models.ClientID(9), accounts[2].Client)
}

func TestSetLocked(t *testing.T) {
	l := New()
	l.SetLocked(3, true)

	acc, ok := l.Account(3)
	require.True(t, ok)
	assert.True(t, acc.Locked)

	l.SetLocked(3, false)
	acc, _ = l.Account(3)
	assert.False(t, acc.Locked)
}

func TestUnbalanced(t *testing.T) {
	l := New()
	l.GetOrCreateAccount(1)
	broken := l.GetOrCreateAccount(2)
	broken.Total = decimal.NewFromInt(1)

	bad := l.Unbalanced()
	require.Len(t, bad, 1)
	assert.Equal(t, models.ClientID(2), bad[0].Client)
}
