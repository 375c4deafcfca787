package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"time"

	"gorm.io/gorm"
)

// DefaultContinueWatchingLimit caps the continue-watching row when no limit is given
const DefaultContinueWatchingLimit = 10

var resumePositionPattern = regexp.MustCompile(`^\d{2}:[0-5]\d:[0-5]\d$`)

// HistoryInput carries the playback progress reported by a client.
// Nil fields are left untouched on update.
type HistoryInput struct {
	DurationWatched *int
	ResumePosition  *string
	Completed       *bool
}

// HistoryService tracks what the profiles of an account have watched
type HistoryService struct {
	db       *gorm.DB
	profiles *ProfileService
	now      func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB, profiles *ProfileService) *HistoryService {
	return &HistoryService{db: db, profiles: profiles, now: time.Now}
}

// List returns the history of an owned profile, most recently watched first
func (s *HistoryService) List(ctx context.Context, accountID, profileID uint, limit int) ([]models.WatchHistory, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	entries, err := database.ListHistory(s.db.WithContext(ctx), profileID, false, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// ContinueWatching returns the unfinished entries of an owned profile
func (s *HistoryService) ContinueWatching(ctx context.Context, accountID, profileID uint, limit int) ([]models.WatchHistory, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultContinueWatchingLimit
	}
	entries, err := database.ListHistory(s.db.WithContext(ctx), profileID, true, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished history: %w", err)
	}
	return entries, nil
}

// Record stores playback progress of a movie for an owned profile, creating the
// entry on first watch and updating it afterwards
func (s *HistoryService) Record(ctx context.Context, accountID, profileID, movieID uint, input HistoryInput) (*models.WatchHistory, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	updates, err := historyUpdates(input)
	if err != nil {
		return nil, err
	}

	var entryID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := database.GetMovie(tx, movieID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Movie %d not found", movieID)
			}
			return fmt.Errorf("failed to load movie: %w", err)
		}

		now := s.now()
		existing, err := database.FindHistoryForMovie(tx, profileID, movieID)
		if err == nil {
			entryID = existing.ID
			updates["last_watched_at"] = now
			if err := database.UpdateHistoryEntry(tx, existing.ID, updates); err != nil {
				return fmt.Errorf("failed to update history: %w", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up history: %w", err)
		}

		entry := &models.WatchHistory{
			ProfileID:       profileID,
			MovieID:         movieID,
			DurationWatched: 1,
			ResumePosition:  models.DefaultResumePosition,
			StartedAt:       now,
			LastWatchedAt:   now,
		}
		if input.DurationWatched != nil {
			entry.DurationWatched = *input.DurationWatched
		}
		if input.ResumePosition != nil {
			entry.ResumePosition = *input.ResumePosition
		}
		if input.Completed != nil {
			entry.Completed = *input.Completed
		}
		if err := database.CreateHistoryEntry(tx, entry); err != nil {
			return fmt.Errorf("failed to create history: %w", err)
		}
		entryID = entry.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, profileID, entryID)
}

// Update changes the supplied progress fields of a history entry
func (s *HistoryService) Update(ctx context.Context, accountID, profileID, historyID uint, input HistoryInput) (*models.WatchHistory, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	updates, err := historyUpdates(input)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := s.entry(db, profileID, historyID); err != nil {
		return nil, err
	}
	updates["last_watched_at"] = s.now()
	if err := database.UpdateHistoryEntry(db, historyID, updates); err != nil {
		return nil, fmt.Errorf("failed to update history: %w", err)
	}

	return s.reload(ctx, profileID, historyID)
}

// Remove deletes one history entry of an owned profile
func (s *HistoryService) Remove(ctx context.Context, accountID, profileID, historyID uint) error {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return err
	}
	removed, err := database.DeleteHistoryEntry(s.db.WithContext(ctx), profileID, historyID)
	if err != nil {
		return fmt.Errorf("failed to remove history: %w", err)
	}
	if !removed {
		return notFound("History entry %d not found", historyID)
	}
	return nil
}

// Clear deletes the whole history of an owned profile
func (s *HistoryService) Clear(ctx context.Context, accountID, profileID uint) error {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return err
	}
	if _, err := database.ClearHistory(s.db.WithContext(ctx), profileID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *HistoryService) entry(db *gorm.DB, profileID, historyID uint) (*models.WatchHistory, error) {
	entry, err := database.GetHistoryEntry(db, profileID, historyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("History entry %d not found", historyID)
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entry, nil
}

func (s *HistoryService) reload(ctx context.Context, profileID, historyID uint) (*models.WatchHistory, error) {
	return s.entry(s.db.WithContext(ctx), profileID, historyID)
}

// historyUpdates validates the input and returns the columns it sets
func historyUpdates(input HistoryInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if input.DurationWatched != nil {
		if *input.DurationWatched < 0 {
			return nil, invalid("Duration watched cannot be negative.")
		}
		updates["duration_watched"] = *input.DurationWatched
	}
	if input.ResumePosition != nil {
		if !resumePositionPattern.MatchString(*input.ResumePosition) {
			return nil, invalid("Resume position must look like HH:MM:SS.")
		}
		updates["resume_position"] = *input.ResumePosition
	}
	if input.Completed != nil {
		updates["completed"] = *input.Completed
	}
	return updates, nil
}
