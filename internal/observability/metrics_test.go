package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHelpersAreSafeAndCount(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(operationCounter.WithLabelValues("deposit", "applied"))
	IncrementOperation("deposit", "applied")
	assert.Equal(t, before+1, testutil.ToFloat64(operationCounter.WithLabelValues("deposit", "applied")))

	IncrementInvariantViolation()
	assert.GreaterOrEqual(t, testutil.ToFloat64(invariantViolationCount), float64(1))

	SetBatchAccounts(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(batchAccountsGauge))

	IncrementBatch("success")
	IncrementIdempotencyEvent("replay")
	ObserveHTTP("POST", "/v1/replays", 200, time.Millisecond)
}
