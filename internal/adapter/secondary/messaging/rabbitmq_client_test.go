package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/output"
)

func testEvent() output.ReconciliationEvent {
	return output.ReconciliationEvent{
		TransactionID: "ws_CO_TEST_1",
		Status:        core.PaymentStatusCompleted,
		Amount:        "20",
		Currency:      "USD",
		OccurredAt:    time.Now().UTC(),
	}
}

func TestDeliverWithRetry_StopsAfterMaxAttempts(t *testing.T) {
	calls := 0
	handlerErr := errors.New("webhook receiver returned 503")

	err := deliverWithRetry(testEvent(), func(output.ReconciliationEvent) error {
		calls++
		return handlerErr
	}, 0)

	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, MaxDeliveryAttempts, calls,
		"a permanently failing delivery must be bounded, not retried forever")
}

func TestDeliverWithRetry_SucceedsMidway(t *testing.T) {
	calls := 0

	err := deliverWithRetry(testEvent(), func(output.ReconciliationEvent) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 0)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls, "retrying must stop at the first success")
}

func TestDeliverWithRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0

	err := deliverWithRetry(testEvent(), func(output.ReconciliationEvent) error {
		calls++
		return nil
	}, time.Hour)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
