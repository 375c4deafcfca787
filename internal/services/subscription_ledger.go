package services

import (
	"fmt"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"

	"gorm.io/gorm"
)

// createRow persists a new subscription row
func createRow(tx *gorm.DB, sub *models.Subscription) error {
	if err := database.CreateSubscription(tx, sub); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// garbageCollect deletes a subscription row no account points at anymore
func garbageCollect(tx *gorm.DB, subscriptionID uint) error {
	count, err := database.CountAccountsReferencingSubscription(tx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to count subscription references: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := database.DeleteSubscription(tx, subscriptionID); err != nil {
		return fmt.Errorf("failed to delete subscription %d: %w", subscriptionID, err)
	}
	return nil
}
