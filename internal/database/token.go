package database

import (
	"streamflix-api/internal/models"

	"gorm.io/gorm"
)

// CreateActivationToken inserts an activation token
func CreateActivationToken(db *gorm.DB, token *models.ActivationToken) error {
	return db.Create(token).Error
}

// GetActivationToken loads an activation token by value
func GetActivationToken(db *gorm.DB, token string) (*models.ActivationToken, error) {
	var activation models.ActivationToken
	err := db.Where("token = ?", token).First(&activation).Error
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

// DeleteActivationToken removes an activation token after use
func DeleteActivationToken(db *gorm.DB, token string) error {
	return db.Unscoped().Where("token = ?", token).Delete(&models.ActivationToken{}).Error
}
