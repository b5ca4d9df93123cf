package ledger

import (
	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
)

// transition computes the next state of acc for op. It may only mutate acc, which is a
// scratch copy, and returns the record to store, if any. The ledger itself is read-only here.
type transition func(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error)

var transitions = map[models.Kind]transition{
	models.Deposit:    deposit,
	models.Withdrawal: withdraw,
	models.Dispute:    dispute,
	models.Resolve:    resolve,
	models.Chargeback: chargeback,
}

// Apply applies a single operation to the ledger. The operation either takes full
// effect or none: rejections return an error matching ErrRejected and leave every
// balance and record unchanged. An *InvariantError means the state machine itself
// is broken and the run must stop.
func Apply(l *Ledger, op models.Operation) error {
	current := l.GetOrCreateAccount(op.Client)
	if current.Locked {
		return ErrAccountLocked
	}

	apply, ok := transitions[op.Kind]
	if !ok {
		return ErrUnknownKind
	}

	next := *current
	rec, err := apply(l, &next, op)
	if err != nil {
		return err
	}
	if !next.Balanced() {
		return &InvariantError{Op: op, Account: next}
	}

	*current = next
	if rec != nil {
		l.transactions[rec.Tx] = rec
	}
	return nil
}

func requireAmount(l *Ledger, op models.Operation) (decimal.Decimal, error) {
	if op.Amount == nil {
		return decimal.Zero, ErrMissingAmount
	}
	if op.Amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if _, exists := l.transactions[op.Tx]; exists {
		return decimal.Zero, ErrDuplicateTransaction
	}
	return *op.Amount, nil
}

func newRecord(op models.Operation, amount decimal.Decimal) *models.TransactionRecord {
	return &models.TransactionRecord{
		Tx:     op.Tx,
		Client: op.Client,
		Kind:   op.Kind,
		Amount: amount,
	}
}

func deposit(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error) {
	amount, err := requireAmount(l, op)
	if err != nil {
		return nil, err
	}
	acc.Available = acc.Available.Add(amount)
	acc.Total = acc.Total.Add(amount)
	return newRecord(op, amount), nil
}

func withdraw(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error) {
	amount, err := requireAmount(l, op)
	if err != nil {
		return nil, err
	}
	if acc.Available.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	acc.Available = acc.Available.Sub(amount)
	acc.Total = acc.Total.Sub(amount)
	return newRecord(op, amount), nil
}

// disputedRecord returns a copy of the referenced record after checking ownership.
func disputedRecord(l *Ledger, op models.Operation) (models.TransactionRecord, error) {
	rec, ok := l.transactions[op.Tx]
	if !ok {
		return models.TransactionRecord{}, ErrTransactionNotFound
	}
	if rec.Client != op.Client {
		return models.TransactionRecord{}, ErrClientMismatch
	}
	if rec.ChargedBack {
		return models.TransactionRecord{}, ErrChargedBack
	}
	return *rec, nil
}

func dispute(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error) {
	rec, err := disputedRecord(l, op)
	if err != nil {
		return nil, err
	}
	if rec.Disputed {
		return nil, ErrAlreadyDisputed
	}
	acc.Available = acc.Available.Sub(rec.Amount)
	acc.Held = acc.Held.Add(rec.Amount)
	rec.Disputed = true
	return &rec, nil
}

func resolve(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error) {
	rec, err := disputedRecord(l, op)
	if err != nil {
		return nil, err
	}
	if !rec.Disputed {
		return nil, ErrNotDisputed
	}
	acc.Held = acc.Held.Sub(rec.Amount)
	acc.Available = acc.Available.Add(rec.Amount)
	rec.Disputed = false
	return &rec, nil
}

func chargeback(l *Ledger, acc *models.Account, op models.Operation) (*models.TransactionRecord, error) {
	rec, err := disputedRecord(l, op)
	if err != nil {
		return nil, err
	}
	if !rec.Disputed {
		return nil, ErrNotDisputed
	}
	acc.Held = acc.Held.Sub(rec.Amount)
	acc.Total = acc.Total.Sub(rec.Amount)
	acc.Locked = true
	rec.Disputed = false
	rec.ChargedBack = true
	return &rec, nil
}
