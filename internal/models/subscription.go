package models

import (
	"time"
)

// Quality is a subscription tier
type Quality string

const (
	QualitySD  Quality = "SD"
	QualityHD  Quality = "HD"
	QualityUHD Quality = "UHD"
)

// Subscription status values
const (
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusCancelled = "CANCELLED"
	SubscriptionStatusExpired   = "EXPIRED"
)

// Subscription is one settled subscription period. Rows are created once per
// subscribe call and removed when no account points at them anymore.
type Subscription struct {
	BaseModel

	Description string  `json:"description" gorm:"not null"`
	Price       float64 `json:"price" gorm:"not null"`
	Quality     Quality `json:"quality" gorm:"size:3;not null"`

	// Trial window: both set or both nil
	IsTrial        bool       `json:"is_trial" gorm:"not null;default:false"`
	TrialStartDate *time.Time `json:"trial_start_date"`
	TrialEndDate   *time.Time `json:"trial_end_date"`

	// Referral discount window: both set or zero/nil
	DiscountAmount     float64    `json:"discount_amount" gorm:"not null;default:0"`
	DiscountValidUntil *time.Time `json:"discount_valid_until"`

	Status    string     `json:"status" gorm:"size:20;not null;index"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date"`
}

// IsActiveAt reports whether the subscription is active at the given instant
func (s Subscription) IsActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && (s.EndDate == nil || now.Before(*s.EndDate))
}

// HasValidDiscountAt reports whether the referral discount is still running
func (s Subscription) HasValidDiscountAt(now time.Time) bool {
	return s.DiscountAmount > 0 && s.DiscountValidUntil != nil && now.Before(*s.DiscountValidUntil)
}

// FinalPriceAt returns the price after any running discount, never below zero
func (s Subscription) FinalPriceAt(now time.Time) float64 {
	if !s.HasValidDiscountAt(now) {
		return s.Price
	}
	if s.DiscountAmount >= s.Price {
		return 0
	}
	return s.Price - s.DiscountAmount
}
