package db

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedServicePricing ensures the default pricing rows exist. Existing rows
// are left untouched so operators can adjust prices without a redeploy
// reverting them.
func SeedServicePricing(gormDB *gorm.DB) error {
	rows := []ServicePricing{
		{
			ServiceType: "PROPERTY_LISTING",
			ServiceName: "Property Listing",
			Amount:      decimal.RequireFromString("20.00"),
			Currency:    "USD",
			Active:      true,
		},
		{
			ServiceType: "FEATURED_LISTING",
			ServiceName: "Featured Listing",
			Amount:      decimal.RequireFromString("35.00"),
			Currency:    "USD",
			Active:      true,
		},
		{
			ServiceType: "AGENT_SUBSCRIPTION",
			ServiceName: "Agent Subscription",
			Amount:      decimal.RequireFromString("15.00"),
			Currency:    "USD",
			Active:      true,
		},
	}

	for i := range rows {
		err := gormDB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service_type"}},
			DoNothing: true,
		}).Create(&rows[i]).Error
		if err != nil {
			return fmt.Errorf("failed to seed pricing for %s: %w", rows[i].ServiceType, err)
		}
	}
	return nil
}
