package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentMethod represents a supported mobile-money provider
type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "MPESA"
	PaymentMethodEVC   PaymentMethod = "EVC"
)

// ServiceType identifies a billable marketplace service
type ServiceType string

const (
	ServicePropertyListing   ServiceType = "PROPERTY_LISTING"
	ServiceFeaturedListing   ServiceType = "FEATURED_LISTING"
	ServiceAgentSubscription ServiceType = "AGENT_SUBSCRIPTION"
)

// KnownServiceType reports whether the given value is a recognized service type.
func KnownServiceType(s ServiceType) bool {
	switch s {
	case ServicePropertyListing, ServiceFeaturedListing, ServiceAgentSubscription:
		return true
	}
	return false
}

// Payment represents one payment attempt against a mobile-money provider.
// TransactionID is the provider-assigned identifier and is the key used to
// reconcile the asynchronous provider callback against this record.
type Payment struct {
	ID              uuid.UUID
	TransactionID   string
	Amount          decimal.Decimal
	Currency        string
	PhoneNumber     string
	ReceiptNumber   string
	Method          PaymentMethod
	ServiceType     ServiceType
	Status          PaymentStatus
	UserID          uuid.UUID
	PropertyID      *uuid.UUID
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPending checks if payment is in pending status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsTerminal checks if payment is in a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

// ValidTransition reports whether a payment may move from one status to
// another. The only permitted transitions are PENDING to a terminal state.
func ValidTransition(from, to PaymentStatus) bool {
	if from != PaymentStatusPending {
		return false
	}
	return to == PaymentStatusCompleted || to == PaymentStatusFailed
}

// ServicePricing maps a service type to its current price. Read-only to the
// payment workflow; rows are maintained out of band.
type ServicePricing struct {
	ServiceType ServiceType
	ServiceName string
	Amount      decimal.Decimal
	Currency    string
	Active      bool
}
