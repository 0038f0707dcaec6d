package output

import (
	"context"

	"github.com/google/uuid"

	"github.com/gurihub/payments/internal/core"
)

// PaymentRepository is an output port (secondary port) for payment data access
// Secondary adapters (database implementations) will implement this
type PaymentRepository interface {
	// CreatePending persists a new payment in PENDING status. Called only
	// after the provider has acknowledged the initiation request.
	CreatePending(ctx context.Context, payment *core.Payment) error

	// GetByID retrieves a payment by its internal ID
	GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error)

	// GetByTransactionID retrieves a payment by the provider-assigned
	// transaction identifier
	GetByTransactionID(ctx context.Context, transactionID string) (*core.Payment, error)

	// UpdateStatus atomically transitions the payment matching transactionID
	// out of PENDING into the given terminal status. Fails with
	// core.ErrUnknownTransaction when no record matches and with
	// core.ErrAlreadyReconciled when the record is no longer PENDING.
	UpdateStatus(ctx context.Context, transactionID string, status core.PaymentStatus) error
}
