package models

import (
	"fmt"
	"strings"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientID identifies a client account. Values above 65535 are rejected by the reader.
type ClientID uint16

// TxID is a globally unique transaction identifier.
type TxID uint32

// Kind is the closed set of operation types accepted by the ledger.
type Kind string

const (
	Deposit    Kind = domain.KindDeposit
	Withdrawal Kind = domain.KindWithdrawal
	Dispute    Kind = domain.KindDispute
	Resolve    Kind = domain.KindResolve
	Chargeback Kind = domain.KindChargeback
)

// ParseKind matches s case-insensitively after trimming surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return k, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", s)
	}
}

// Disputable reports whether operations of this kind are retained as transaction records.
func (k Kind) Disputable() bool {
	return k == Deposit || k == Withdrawal
}

// Operation is a single input record.
type Operation struct {
	Kind   Kind             `json:"type"`
	Client ClientID         `json:"client"`
	Tx     TxID             `json:"tx"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Account holds the balances of one client.
type Account struct {
	Client    ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}

// Balanced reports whether total == available + held.
func (a Account) Balanced() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}

// Equal compares balances numerically, ignoring decimal exponent differences.
func (a Account) Equal(b Account) bool {
	return a.Client == b.Client &&
		a.Available.Equal(b.Available) &&
		a.Held.Equal(b.Held) &&
		a.Total.Equal(b.Total) &&
		a.Locked == b.Locked
}

// TransactionRecord is a retained deposit or withdrawal that may later be disputed.
type TransactionRecord struct {
	Tx          TxID            `json:"tx"`
	Client      ClientID        `json:"client"`
	Kind        Kind            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Disputed    bool            `json:"disputed"`
	ChargedBack bool            `json:"charged_back"`
}
