package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gurihub/payments/internal/constant/model/db"
	"github.com/gurihub/payments/internal/port/output"
)

// GormMarketplaceRepository is a secondary adapter that implements the
// MarketplaceRepository output port against the marketplace-owned tables.
type GormMarketplaceRepository struct {
	gormDB *gorm.DB
}

// NewGormMarketplaceRepository creates a new GORM marketplace repository
func NewGormMarketplaceRepository(gormDB *gorm.DB) output.MarketplaceRepository {
	return &GormMarketplaceRepository{gormDB: gormDB}
}

// UserExists reports whether a user row exists
func (r *GormMarketplaceRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.gormDB.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// PropertyExists reports whether a property row exists
func (r *GormMarketplaceRepository) PropertyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.gormDB.WithContext(ctx).Model(&db.Property{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check property: %w", err)
	}
	return count > 0, nil
}
