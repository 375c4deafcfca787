package database

import (
	"streamflix-api/internal/models"

	"gorm.io/gorm"
)

// CreateProfile inserts a new profile
func CreateProfile(db *gorm.DB, profile *models.Profile) error {
	return db.Create(profile).Error
}

// GetProfile loads a profile by id
func GetProfile(db *gorm.DB, profileID uint) (*models.Profile, error) {
	var profile models.Profile
	err := db.Where("id = ?", profileID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfilesByAccount lists the profiles of an account in creation order
func ListProfilesByAccount(db *gorm.DB, accountID uint) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Where("account_id = ?", accountID).Order("id ASC").Find(&profiles).Error
	return profiles, err
}

// UpdateProfile applies column updates to a profile
func UpdateProfile(db *gorm.DB, profileID uint, updates map[string]interface{}) error {
	return db.Model(&models.Profile{}).Where("id = ?", profileID).Updates(updates).Error
}

// DeleteProfile removes a profile with its watchlist and watch history
func DeleteProfile(db *gorm.DB, profileID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("profile_id = ?", profileID).Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("profile_id = ?", profileID).Delete(&models.WatchHistory{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", profileID).Delete(&models.Profile{}).Error
	})
}

// ListMovies lists the catalog, optionally filtered by genre and maximum age rating
func ListMovies(db *gorm.DB, genre string, maxMinimumAge *int) ([]models.Movie, error) {
	var movies []models.Movie
	query := db.Model(&models.Movie{})
	if genre != "" {
		query = query.Where("LOWER(genre) = LOWER(?)", genre)
	}
	if maxMinimumAge != nil {
		query = query.Where("minimum_age <= ?", *maxMinimumAge)
	}
	err := query.Order("title ASC").Find(&movies).Error
	return movies, err
}

// GetMovie loads a movie by id
func GetMovie(db *gorm.DB, movieID uint) (*models.Movie, error) {
	var movie models.Movie
	err := db.Where("id = ?", movieID).First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// ListWatchlist lists the watchlist of a profile, newest first
func ListWatchlist(db *gorm.DB, profileID uint) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	err := db.Preload("Movie").
		Where("profile_id = ?", profileID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// WatchlistContains reports whether the movie is already on the profile's watchlist
func WatchlistContains(db *gorm.DB, profileID, movieID uint) (bool, error) {
	var count int64
	err := db.Model(&models.WatchlistItem{}).
		Where("profile_id = ? AND movie_id = ?", profileID, movieID).
		Count(&count).Error
	return count > 0, err
}

// CreateWatchlistItem inserts a watchlist entry
func CreateWatchlistItem(db *gorm.DB, item *models.WatchlistItem) error {
	return db.Create(item).Error
}

// DeleteWatchlistItem removes a watchlist entry of a profile, reporting whether one was removed
func DeleteWatchlistItem(db *gorm.DB, profileID, itemID uint) (bool, error) {
	result := db.Unscoped().Where("id = ? AND profile_id = ?", itemID, profileID).Delete(&models.WatchlistItem{})
	return result.RowsAffected > 0, result.Error
}
