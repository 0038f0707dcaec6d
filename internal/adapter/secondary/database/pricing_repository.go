package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gurihub/payments/internal/constant/model/db"
	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/output"
)

// GormPricingRepository is a secondary adapter that implements PricingRepository output port
type GormPricingRepository struct {
	gormDB *gorm.DB
}

// NewGormPricingRepository creates a new GORM pricing repository
func NewGormPricingRepository(gormDB *gorm.DB) output.PricingRepository {
	return &GormPricingRepository{gormDB: gormDB}
}

// GetActiveByServiceType returns the active pricing row for a service type
func (r *GormPricingRepository) GetActiveByServiceType(ctx context.Context, serviceType core.ServiceType) (*core.ServicePricing, error) {
	var row db.ServicePricing
	err := r.gormDB.WithContext(ctx).
		Where("service_type = ? AND active = ?", string(serviceType), true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrPricingNotFound, serviceType)
		}
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}

	return &core.ServicePricing{
		ServiceType: core.ServiceType(row.ServiceType),
		ServiceName: row.ServiceName,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Active:      row.Active,
	}, nil
}
