package ledger

import (
	"errors"
	"fmt"

	"github.com/ayo6706/txledger/internal/models"
)

// ErrRejected is matched by every semantic rejection returned from Apply.
// A rejected operation leaves the ledger untouched.
var ErrRejected = errors.New("operation rejected")

var (
	ErrAccountLocked        = fmt.Errorf("%w: account is locked", ErrRejected)
	ErrMissingAmount        = fmt.Errorf("%w: amount is required", ErrRejected)
	ErrNegativeAmount       = fmt.Errorf("%w: amount must not be negative", ErrRejected)
	ErrInsufficientFunds    = fmt.Errorf("%w: insufficient available funds", ErrRejected)
	ErrDuplicateTransaction = fmt.Errorf("%w: transaction id already used", ErrRejected)
	ErrTransactionNotFound  = fmt.Errorf("%w: transaction not found", ErrRejected)
	ErrClientMismatch       = fmt.Errorf("%w: transaction belongs to another client", ErrRejected)
	ErrAlreadyDisputed      = fmt.Errorf("%w: transaction already disputed", ErrRejected)
	ErrNotDisputed          = fmt.Errorf("%w: transaction is not disputed", ErrRejected)
	ErrChargedBack          = fmt.Errorf("%w: transaction was charged back", ErrRejected)
	ErrUnknownKind          = fmt.Errorf("%w: unknown operation type", ErrRejected)
)

// InvariantError reports an account whose total no longer equals available + held.
// It indicates a defect in the state machine, never bad input.
type InvariantError struct {
	Op      models.Operation
	Account models.Account
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ledger invariant violated for client %d after %s tx %d: available=%s held=%s total=%s",
		e.Account.Client, e.Op.Kind, e.Op.Tx,
		e.Account.Available.String(), e.Account.Held.String(), e.Account.Total.String())
}

// IsRejection reports whether err is a semantic rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}
