package database

import (
	"streamflix-api/internal/models"
	"time"

	"gorm.io/gorm"
)

// CreateInvitation inserts a new invitation
func CreateInvitation(db *gorm.DB, invitation *models.Invitation) error {
	return db.Create(invitation).Error
}

// InvitationCodeExists reports whether any invitation already uses the code
func InvitationCodeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&models.Invitation{}).Unscoped().Where("invitation_code = ?", code).Count(&count).Error
	return count > 0, err
}

// GetInvitationByCodeForUpdate loads an invitation by code holding a row lock
func GetInvitationByCodeForUpdate(tx *gorm.DB, code string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := LockForUpdate(tx).Where("invitation_code = ?", code).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListInvitationsByInviter lists the invitations an account sent, newest first
func ListInvitationsByInviter(db *gorm.DB, inviterAccountID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := db.Where("inviter_account_id = ?", inviterAccountID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&invitations).Error
	return invitations, err
}

// FindPendingBonusInvitation finds the oldest accepted invitation naming the account
// as invitee whose discount has not been applied yet
func FindPendingBonusInvitation(tx *gorm.DB, inviteeAccountID uint) (*models.Invitation, error) {
	var invitation models.Invitation
	err := LockForUpdate(tx).
		Where("invitee_account_id = ? AND status = ? AND discount_applied = ?",
			inviteeAccountID, models.InvitationStatusAccepted, false).
		Order("created_at ASC").
		Order("id ASC").
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// HasUsedDiscount reports whether the account has had a referral bonus applied
// on any invitation, as inviter or as invitee
func HasUsedDiscount(db *gorm.DB, accountID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Invitation{}).
		Where("discount_applied = ? AND (inviter_account_id = ? OR invitee_account_id = ?)", true, accountID, accountID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindRunningDiscountInvitation finds an applied invitation involving the account
// whose discount window is still open at now
func FindRunningDiscountInvitation(db *gorm.DB, accountID uint, now time.Time) (*models.Invitation, error) {
	var invitation models.Invitation
	err := db.Where("discount_applied = ? AND discount_valid_until > ? AND (inviter_account_id = ? OR invitee_account_id = ?)",
		true, now, accountID, accountID).
		Order("discount_valid_until DESC").
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// UpdateInvitation applies column updates to an invitation
func UpdateInvitation(db *gorm.DB, invitationID uint, updates map[string]interface{}) error {
	return db.Model(&models.Invitation{}).Where("id = ?", invitationID).Updates(updates).Error
}
