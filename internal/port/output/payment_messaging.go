package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/gurihub/payments/internal/core"
)

// ReconciliationEvent is published after a payment leaves PENDING. It drives
// best-effort downstream notifications and must never be required for the
// status transition itself.
type ReconciliationEvent struct {
	PaymentID     uuid.UUID          `json:"payment_id"`
	TransactionID string             `json:"transaction_id"`
	ReceiptNumber string             `json:"receipt_number"`
	Method        core.PaymentMethod `json:"method"`
	Status        core.PaymentStatus `json:"status"`
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	PhoneNumber   string             `json:"phone_number"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// PaymentEvents is an output port (secondary port) for payment event publishing
// Secondary adapters (RabbitMQ implementations) will implement this
type PaymentEvents interface {
	// PublishReconciliationEvent publishes a reconciliation outcome
	PublishReconciliationEvent(event ReconciliationEvent) error
	// Close closes the messaging connection
	Close() error
}
