package models

import (
	"time"
)

// MaxFailedLogins is the number of consecutive failures that locks an account
const MaxFailedLogins = 3

// Account represents a registered customer
type Account struct {
	BaseModel

	Email        string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:60;not null"`
	IsActivated  bool   `json:"is_activated" gorm:"not null;default:false"`
	IsBlocked    bool   `json:"is_blocked" gorm:"not null;default:false"`

	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`

	// Current subscription pointer, moved only by the settlement engine
	SubscriptionID *uint         `json:"subscription_id" gorm:"index"`
	Subscription   *Subscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID;constraint:OnDelete:SET NULL"`
	PaymentMethod  *string       `json:"payment_method,omitempty" gorm:"size:255"`
	IsTrialUsed    bool          `json:"is_trial_used" gorm:"not null;default:false"`

	// Set once at registration
	ReferredByAccountID *uint `json:"referred_by_account_id" gorm:"index"`
}

// IsLockedAt reports whether a temporary login lock is in force
func (a Account) IsLockedAt(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// LoginState is the lock-relevant part of an account
type LoginState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// LoginStateOf extracts the login state of an account
func LoginStateOf(a Account) LoginState {
	return LoginState{FailedAttempts: a.FailedLoginAttempts, LockedUntil: a.LockedUntil}
}

// NextLoginState returns the state after a login attempt. A successful attempt
// clears the counter and the lock; the third consecutive failure locks the
// account for lockMinutes and restarts the counter.
func NextLoginState(state LoginState, success bool, now time.Time, lockMinutes int) LoginState {
	if success {
		return LoginState{}
	}

	next := LoginState{FailedAttempts: state.FailedAttempts + 1, LockedUntil: state.LockedUntil}
	if next.FailedAttempts >= MaxFailedLogins {
		until := now.Add(time.Duration(lockMinutes) * time.Minute)
		next.LockedUntil = &until
		next.FailedAttempts = 0
	}
	return next
}

// ActivationToken is the one-time token mailed after registration
type ActivationToken struct {
	BaseModel

	AccountID uint      `json:"account_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

// PasswordReset stores reset tokens when no Redis is configured
type PasswordReset struct {
	BaseModel

	AccountID uint      `json:"account_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	IsUsed    bool      `json:"is_used" gorm:"not null;default:false"`
}

// IsValidAt reports whether the token is unused and unexpired
func (p PasswordReset) IsValidAt(now time.Time) bool {
	return !p.IsUsed && now.Before(p.ExpiresAt)
}
