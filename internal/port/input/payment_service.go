package input

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gurihub/payments/internal/core"
)

// PaymentService is an input port (primary port) for payment operations
// Primary adapters (HTTP handlers) will use this
type PaymentService interface {
	// InitiatePayment validates the request, contacts the provider and
	// persists a PENDING payment once the provider acknowledges.
	InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error)

	// GetPayment retrieves a payment by its internal ID
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)
}

// CallbackService is an input port for provider callback reconciliation
type CallbackService interface {
	// ReconcileMpesa applies an M-Pesa STK callback result
	ReconcileMpesa(ctx context.Context, cb MpesaCallback) (*ReconcileResult, error)

	// ReconcileEVC applies a WAAFI/EVC callback result
	ReconcileEVC(ctx context.Context, cb EVCCallback) (*ReconcileResult, error)
}

// InitiatePaymentRequest represents the request to initiate a payment
type InitiatePaymentRequest struct {
	PhoneNumber string
	UserID      uuid.UUID
	PropertyID  *uuid.UUID
	ServiceType core.ServiceType
	Method      core.PaymentMethod
}

// InitiatePaymentResponse represents the acknowledged initiation
type InitiatePaymentResponse struct {
	ReceiptNumber    string
	TransactionID    string
	Amount           decimal.Decimal
	Currency         string
	ServiceType      core.ServiceType
	ServiceName      string
	Method           core.PaymentMethod
	Status           core.PaymentStatus
	ProviderResponse map[string]interface{}
}

// PaymentResponse represents the response for a payment
type PaymentResponse struct {
	ID            uuid.UUID
	TransactionID string
	ReceiptNumber string
	Amount        decimal.Decimal
	Currency      string
	PhoneNumber   string
	Method        core.PaymentMethod
	ServiceType   core.ServiceType
	Status        core.PaymentStatus
	CreatedAt     time.Time
}

// MpesaCallback is the parsed STK callback payload
type MpesaCallback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Metadata          []MpesaCallbackItem
}

// MpesaCallbackItem is one entry of the callback's metadata array. The
// metadata is informational only and never required for status determination.
type MpesaCallbackItem struct {
	Name  string
	Value interface{}
}

// EVCCallback is the parsed WAAFI/EVC callback payload
type EVCCallback struct {
	TransactionID string
	Status        string
	Amount        string
	PhoneNumber   string
	ResponseCode  string
	ResponseMsg   string
	ReceiptNumber string
}

// ReconcileResult reports the outcome of applying a provider callback.
// Applied is false when the record had already left PENDING, which duplicate
// provider deliveries commonly cause.
type ReconcileResult struct {
	TransactionID string
	Status        core.PaymentStatus
	Applied       bool
}
