package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gurihub/payments/internal/constant/model/db"
	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/output"
)

// GormPaymentRepository is a secondary adapter that implements PaymentRepository output port
type GormPaymentRepository struct {
	gormDB *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(gormDB *gorm.DB) output.PaymentRepository {
	return &GormPaymentRepository{gormDB: gormDB}
}

// toCore converts db.Payment to core.Payment
func toCore(p *db.Payment) *core.Payment {
	return &core.Payment{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		PhoneNumber:     p.PhoneNumber,
		ReceiptNumber:   p.ReceiptNumber,
		Method:          core.PaymentMethod(p.Method),
		ServiceType:     core.ServiceType(p.ServiceType),
		Status:          core.PaymentStatus(p.Status),
		UserID:          p.UserID,
		PropertyID:      p.PropertyID,
		TransactionDate: p.TransactionDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// fromCore converts core.Payment to db.Payment
func fromCore(p *core.Payment) *db.Payment {
	return &db.Payment{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		PhoneNumber:     p.PhoneNumber,
		ReceiptNumber:   p.ReceiptNumber,
		Method:          string(p.Method),
		ServiceType:     string(p.ServiceType),
		Status:          db.PaymentStatus(p.Status),
		UserID:          p.UserID,
		PropertyID:      p.PropertyID,
		TransactionDate: p.TransactionDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// CreatePending persists a new payment in PENDING status
func (r *GormPaymentRepository) CreatePending(ctx context.Context, payment *core.Payment) error {
	payment.Status = core.PaymentStatusPending
	dbPayment := fromCore(payment)
	if err := r.gormDB.WithContext(ctx).Create(dbPayment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	// Update core entity with timestamps set by GORM hooks
	payment.CreatedAt = dbPayment.CreatedAt
	payment.UpdatedAt = dbPayment.UpdatedAt
	return nil
}

// GetByID retrieves a payment by its internal ID
func (r *GormPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toCore(&dbPayment), nil
}

// GetByTransactionID retrieves a payment by the provider-assigned identifier
func (r *GormPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrUnknownTransaction
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toCore(&dbPayment), nil
}

// UpdateStatus atomically transitions a payment out of PENDING.
// Uses SELECT FOR UPDATE so racing duplicate callbacks cannot both win.
func (r *GormPaymentRepository) UpdateStatus(ctx context.Context, transactionID string, newStatus core.PaymentStatus) error {
	return r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbPayment db.Payment

		// Lock the row and check status using SELECT FOR UPDATE
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ?", transactionID).
			First(&dbPayment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrUnknownTransaction
			}
			return fmt.Errorf("failed to lock payment: %w", err)
		}

		// Only transition out of PENDING
		if dbPayment.Status != db.PaymentStatusPending {
			return fmt.Errorf("%w: current status is %s", core.ErrAlreadyReconciled, dbPayment.Status)
		}

		if !core.ValidTransition(core.PaymentStatus(dbPayment.Status), newStatus) {
			return fmt.Errorf("invalid status transition from %s to %s", dbPayment.Status, newStatus)
		}

		dbPayment.Status = db.PaymentStatus(newStatus)
		dbPayment.UpdatedAt = time.Now()

		if err := tx.Save(&dbPayment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		return nil
	})
}
