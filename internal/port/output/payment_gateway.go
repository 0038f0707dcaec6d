package output

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gurihub/payments/internal/core"
)

// PaymentIntent is the provider-agnostic request the orchestrator hands to a
// gateway. The phone number is already normalized for the provider's
// numbering plan and the amount is fixed from the pricing table.
type PaymentIntent struct {
	PhoneNumber string
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	Description string
}

// ProviderAck is the provider's immediate acknowledgement of an initiation
// request. TransactionID is the provider-assigned identifier later used to
// reconcile the asynchronous callback.
type ProviderAck struct {
	TransactionID string
	Description   string
	Raw           map[string]interface{}
}

// PaymentGateway is an output port (secondary port) for mobile-money
// providers. One adapter exists per provider; all of them fail closed with a
// core.ConfigurationError before any network call when credentials are
// missing.
type PaymentGateway interface {
	// Method returns the payment method this gateway serves
	Method() core.PaymentMethod

	// Initiate performs the outbound payment request and returns the
	// provider's acknowledgement, or a core.GatewayError on rejection.
	Initiate(ctx context.Context, intent PaymentIntent) (*ProviderAck, error)
}
