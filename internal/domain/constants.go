package domain

// Operation kinds as they appear in the input table.
const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindDispute    = "dispute"
	KindResolve    = "resolve"
	KindChargeback = "chargeback"
)

// Outcome labels recorded for every applied operation.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// DefaultPrecision is the number of decimal places used when rendering money.
const DefaultPrecision int32 = 4
