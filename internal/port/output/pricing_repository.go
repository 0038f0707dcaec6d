package output

import (
	"context"

	"github.com/gurihub/payments/internal/core"
)

// PricingRepository is an output port (secondary port) for the service
// pricing lookup table. Read-only to the payment workflow.
type PricingRepository interface {
	// GetActiveByServiceType returns the active pricing row for a service
	// type, or core.ErrPricingNotFound when none is active.
	GetActiveByServiceType(ctx context.Context, serviceType core.ServiceType) (*core.ServicePricing, error)
}
