package models

import (
	"fmt"
	"time"
)

// Profile languages
const (
	LanguageEnglish = "ENGLISH"
	LanguageDutch   = "DUTCH"
)

// Profile is a viewer under an account
type Profile struct {
	BaseModel

	AccountID uint   `json:"account_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"size:60;not null"`
	Age       int    `json:"age" gorm:"not null;default:18"`
	Language  string `json:"language" gorm:"size:10;not null;default:'ENGLISH'"`
}

// Movie is a catalog title
type Movie struct {
	BaseModel

	Title           string `json:"title" gorm:"size:200;not null;index"`
	Description     string `json:"description" gorm:"type:text"`
	DurationMinutes int    `json:"duration_minutes" gorm:"not null;default:0"`
	Genre           string `json:"genre" gorm:"size:50;index"`
	MinimumAge      int    `json:"minimum_age" gorm:"not null;default:0"`
}

// FormattedDuration renders the duration as "2h 30m" or "45m"
func (m Movie) FormattedDuration() string {
	hours := m.DurationMinutes / 60
	minutes := m.DurationMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// IsAppropriateForAge reports whether a viewer of the given age may watch the movie
func (m Movie) IsAppropriateForAge(age int) bool {
	return age >= m.MinimumAge
}

// WatchlistItem is a movie saved by a profile
type WatchlistItem struct {
	BaseModel

	ProfileID uint      `json:"profile_id" gorm:"not null;uniqueIndex:idx_watchlist_profile_movie"`
	MovieID   uint      `json:"movie_id" gorm:"not null;uniqueIndex:idx_watchlist_profile_movie"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	AddedAt   time.Time `json:"added_at" gorm:"not null"`
}
