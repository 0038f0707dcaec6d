package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment represents a payment attempt in the database. TransactionID is the
// provider-assigned identifier and carries a unique index because it is the
// callback reconciliation key.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID   string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	PhoneNumber     string          `gorm:"type:varchar(15);not null" json:"phone_number"`
	ReceiptNumber   string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"receipt_number"`
	Method          string          `gorm:"type:varchar(10);not null" json:"method"`
	ServiceType     string          `gorm:"type:varchar(32);not null" json:"service_type"`
	Status          PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PropertyID      *uuid.UUID      `gorm:"type:uuid;index" json:"property_id,omitempty"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate is a GORM hook that runs before updating a record
func (p *Payment) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// IsPending checks if payment is in pending status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsTerminal checks if payment is in a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

// ServicePricing maps a service type to its current price.
type ServicePricing struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ServiceType string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"service_type"`
	ServiceName string          `gorm:"type:varchar(100);not null" json:"service_name"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency    string          `gorm:"type:varchar(3);not null" json:"currency"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ServicePricing) TableName() string {
	return "service_pricings"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (p *ServicePricing) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// User is the marketplace users table, mapped only for existence checks.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Property is the marketplace properties table, mapped only for existence checks.
type Property struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
}

// TableName specifies the table name for GORM
func (Property) TableName() string {
	return "properties"
}
