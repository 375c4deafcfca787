package database

import (
	"streamflix-api/internal/models"
	"time"

	"gorm.io/gorm"
)

// CreateSubscription inserts a new subscription row
func CreateSubscription(db *gorm.DB, subscription *models.Subscription) error {
	return db.Create(subscription).Error
}

// GetSubscription loads a subscription by id
func GetSubscription(db *gorm.DB, subscriptionID uint) (*models.Subscription, error) {
	var subscription models.Subscription
	err := db.Where("id = ?", subscriptionID).First(&subscription).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// UpdateSubscriptionDiscount overwrites the discount window of a subscription.
// It is the only in-place update a subscription row receives, used to mirror
// a referral bonus onto the inviter's live row.
func UpdateSubscriptionDiscount(db *gorm.DB, subscriptionID uint, amount float64, validUntil *time.Time) error {
	return db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"discount_amount":      amount,
			"discount_valid_until": validUntil,
		}).Error
}

// CountAccountsReferencingSubscription counts accounts whose current subscription is the given row
func CountAccountsReferencingSubscription(db *gorm.DB, subscriptionID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Account{}).
		Where("subscription_id = ?", subscriptionID).
		Count(&count).Error
	return count, err
}

// DeleteSubscription removes a subscription row for good
func DeleteSubscription(db *gorm.DB, subscriptionID uint) error {
	return db.Unscoped().Where("id = ?", subscriptionID).Delete(&models.Subscription{}).Error
}
