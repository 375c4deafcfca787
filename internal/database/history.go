package database

import (
	"streamflix-api/internal/models"

	"gorm.io/gorm"
)

// ListHistory lists the watch history of a profile, most recently watched first.
// unfinishedOnly keeps entries that are not completed; limit <= 0 means no limit.
func ListHistory(db *gorm.DB, profileID uint, unfinishedOnly bool, limit int) ([]models.WatchHistory, error) {
	var entries []models.WatchHistory
	query := db.Preload("Movie").Where("profile_id = ?", profileID)
	if unfinishedOnly {
		query = query.Where("completed = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("last_watched_at DESC").Order("id DESC").Find(&entries).Error
	return entries, err
}

// GetHistoryEntry loads a history entry of a profile by id
func GetHistoryEntry(db *gorm.DB, profileID, historyID uint) (*models.WatchHistory, error) {
	var entry models.WatchHistory
	err := db.Preload("Movie").Where("id = ? AND profile_id = ?", historyID, profileID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindHistoryForMovie loads the history entry of a profile for a movie
func FindHistoryForMovie(db *gorm.DB, profileID, movieID uint) (*models.WatchHistory, error) {
	var entry models.WatchHistory
	err := LockForUpdate(db).Where("profile_id = ? AND movie_id = ?", profileID, movieID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateHistoryEntry inserts a history entry
func CreateHistoryEntry(db *gorm.DB, entry *models.WatchHistory) error {
	return db.Create(entry).Error
}

// UpdateHistoryEntry applies column updates to a history entry
func UpdateHistoryEntry(db *gorm.DB, historyID uint, updates map[string]interface{}) error {
	return db.Model(&models.WatchHistory{}).Where("id = ?", historyID).Updates(updates).Error
}

// DeleteHistoryEntry removes a history entry of a profile, reporting whether one was removed
func DeleteHistoryEntry(db *gorm.DB, profileID, historyID uint) (bool, error) {
	result := db.Unscoped().Where("id = ? AND profile_id = ?", historyID, profileID).Delete(&models.WatchHistory{})
	return result.RowsAffected > 0, result.Error
}

// ClearHistory removes every history entry of a profile
func ClearHistory(db *gorm.DB, profileID uint) (int64, error) {
	result := db.Unscoped().Where("profile_id = ?", profileID).Delete(&models.WatchHistory{})
	return result.RowsAffected, result.Error
}
