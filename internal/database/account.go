package database

import (
	"streamflix-api/internal/models"

	"gorm.io/gorm"
)

// CreateAccount inserts a new account
func CreateAccount(db *gorm.DB, account *models.Account) error {
	return db.Create(account).Error
}

// GetAccount loads an account by id
func GetAccount(db *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	err := db.Where("id = ?", accountID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountForUpdate loads an account by id holding a row lock until the transaction ends
func GetAccountForUpdate(tx *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	err := LockForUpdate(tx).Where("id = ?", accountID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountWithSubscription loads an account and its current subscription
func GetAccountWithSubscription(db *gorm.DB, accountID uint) (*models.Account, error) {
	var account models.Account
	err := db.Preload("Subscription").Where("id = ?", accountID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByEmail loads an account by its normalized email
func GetAccountByEmail(db *gorm.DB, email string) (*models.Account, error) {
	var account models.Account
	err := db.Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount applies column updates to an account
func UpdateAccount(db *gorm.DB, accountID uint, updates map[string]interface{}) error {
	return db.Model(&models.Account{}).Where("id = ?", accountID).Updates(updates).Error
}
