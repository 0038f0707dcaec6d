package output

import (
	"context"

	"github.com/google/uuid"
)

// MarketplaceRepository is an output port (secondary port) for the existence
// checks the orchestrator runs against marketplace-owned tables before
// contacting a provider.
type MarketplaceRepository interface {
	// UserExists reports whether a user row exists
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)

	// PropertyExists reports whether a property row exists
	PropertyExists(ctx context.Context, id uuid.UUID) (bool, error)
}
