package models

import (
	"time"
)

// Invitation status values. Transitions are one-way: PENDING -> ACCEPTED -> EXPIRED.
const (
	InvitationStatusPending  = "PENDING"
	InvitationStatusAccepted = "ACCEPTED"
	InvitationStatusExpired  = "EXPIRED"
)

// Invitation records a referral from an inviter to an invitee email
type Invitation struct {
	BaseModel

	InviterAccountID uint       `json:"inviter_account_id" gorm:"not null;index"`
	InviteeEmail     string     `json:"invitee_email" gorm:"size:254;not null"`
	InviteeAccountID *uint      `json:"invitee_account_id" gorm:"index"`
	InvitationCode   string     `json:"invitation_code" gorm:"size:50;uniqueIndex;not null"`
	AcceptedAt       *time.Time `json:"accepted_at"`

	// Populated only once DiscountApplied becomes true
	DiscountApplied    bool       `json:"discount_applied" gorm:"not null;default:false;index"`
	DiscountAmount     float64    `json:"discount_amount" gorm:"not null;default:0"`
	DiscountStartedAt  *time.Time `json:"discount_started_at"`
	DiscountValidUntil *time.Time `json:"discount_valid_until"`

	Status string `json:"status" gorm:"size:20;not null;index"`
}

// HasValidDiscountAt reports whether the applied discount window is still open
func (i Invitation) HasValidDiscountAt(now time.Time) bool {
	return i.DiscountApplied && i.DiscountAmount > 0 && i.DiscountValidUntil != nil && now.Before(*i.DiscountValidUntil)
}
