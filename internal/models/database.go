package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel provides common fields for all database models
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// All returns every model managed by migrations, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Subscription{},
		&Account{},
		&Invitation{},
		&ActivationToken{},
		&PasswordReset{},
		&Profile{},
		&Movie{},
		&WatchlistItem{},
		&WatchHistory{},
	}
}
