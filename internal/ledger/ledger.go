// Package ledger holds client accounts and the disputable transactions that
// reference them, and applies operations to both.
//
// A Ledger is owned by a single goroutine; it performs no locking.
package ledger

import (
	"sort"

	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	accounts     map[models.ClientID]*models.Account
	transactions map[models.TxID]*models.TransactionRecord
}

func New() *Ledger {
	return &Ledger{
		accounts:     make(map[models.ClientID]*models.Account),
		transactions: make(map[models.TxID]*models.TransactionRecord),
	}
}

// GetOrCreateAccount returns the account for client, creating an empty unlocked one on first use.
func (l *Ledger) GetOrCreateAccount(client models.ClientID) *models.Account {
	if acc, ok := l.accounts[client]; ok {
		return acc
	}
	acc := &models.Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
	l.accounts[client] = acc
	return acc
}

// Account returns a copy of the client's account. Unknown clients report false.
func (l *Ledger) Account(client models.ClientID) (models.Account, bool) {
	acc, ok := l.accounts[client]
	if !ok {
		return models.Account{}, false
	}
	return *acc, true
}

// FindTransaction returns the stored deposit or withdrawal with the given id.
func (l *Ledger) FindTransaction(tx models.TxID) (*models.TransactionRecord, bool) {
	rec, ok := l.transactions[tx]
	return rec, ok
}

// Accounts returns copies of all accounts ordered by client id.
func (l *Ledger) Accounts() []models.Account {
	out := make([]models.Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

// Len returns the number of known clients.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// SetLocked manually freezes or unfreezes a client account.
func (l *Ledger) SetLocked(client models.ClientID, locked bool) {
	l.GetOrCreateAccount(client).Locked = locked
}

// Unbalanced returns every account whose total differs from available + held.
func (l *Ledger) Unbalanced() []models.Account {
	var out []models.Account
	for _, acc := range l.Accounts() {
		if !acc.Balanced() {
			out = append(out, acc)
		}
	}
	return out
}
