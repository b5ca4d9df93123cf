// Package simulate produces random operation streams for load and property testing.
// The streams deliberately contain invalid operations: disputes of unknown
// transactions, overdrawing withdrawals and repeated transaction ids.
package simulate

import (
	"math/rand"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
)

var kinds = []models.Kind{
	models.Deposit,
	models.Withdrawal,
	models.Dispute,
	models.Resolve,
	models.Chargeback,
}

// Generate returns n operations spread over clients accounts. Transaction ids are
// drawn from [1, n], so collisions and dangling references occur naturally.
func Generate(rng *rand.Rand, n int, clients int) []models.Operation {
	if n <= 0 {
		return nil
	}
	if clients <= 0 {
		clients = 1
	}
	if clients > 65535 {
		clients = 65535
	}

	ops := make([]models.Operation, 0, n)
	for i := 0; i < n; i++ {
		op := models.Operation{
			Kind:   kinds[rng.Intn(len(kinds))],
			Client: models.ClientID(1 + rng.Intn(clients)),
			Tx:     models.TxID(1 + rng.Intn(n)),
		}
		if op.Kind.Disputable() {
			amount := randomAmount(rng)
			op.Amount = &amount
		}
		ops = append(ops, op)
	}
	return ops
}

// randomAmount sums three draws from [0.1, 500] and keeps four decimal places.
func randomAmount(rng *rand.Rand) decimal.Decimal {
	sum := decimal.Zero
	for i := 0; i < 3; i++ {
		units := 1_000 + rng.Int63n(5_000_000-1_000+1)
		sum = sum.Add(decimal.New(units, -domain.DefaultPrecision))
	}
	return sum
}
