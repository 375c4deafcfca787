package models

import "time"

// DefaultResumePosition is where playback starts for a fresh history entry
const DefaultResumePosition = "00:00:00"

// WatchHistory records how far a profile got into a movie. There is one entry
// per profile and movie; watching again updates it in place.
type WatchHistory struct {
	BaseModel

	ProfileID       uint      `json:"profile_id" gorm:"not null;uniqueIndex:idx_history_profile_movie"`
	MovieID         uint      `json:"movie_id" gorm:"not null;uniqueIndex:idx_history_profile_movie"`
	Movie           *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	DurationWatched int       `json:"duration_watched" gorm:"not null"`
	ResumePosition  string    `json:"resume_position" gorm:"size:8;not null"`
	Completed       bool      `json:"completed" gorm:"not null;index"`
	StartedAt       time.Time `json:"started_at" gorm:"not null"`
	LastWatchedAt   time.Time `json:"last_watched_at" gorm:"not null;index"`
}
