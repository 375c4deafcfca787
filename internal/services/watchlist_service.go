package services

import (
	"context"
	"errors"
	"fmt"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"time"

	"gorm.io/gorm"
)

// WatchlistService manages the saved movies of a profile
type WatchlistService struct {
	db       *gorm.DB
	profiles *ProfileService
	now      func() time.Time
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(db *gorm.DB, profiles *ProfileService) *WatchlistService {
	return &WatchlistService{db: db, profiles: profiles, now: time.Now}
}

// List returns the watchlist of an owned profile, newest first
func (s *WatchlistService) List(ctx context.Context, accountID, profileID uint) ([]models.WatchlistItem, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	items, err := database.ListWatchlist(s.db.WithContext(ctx), profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return items, nil
}

// Add puts a movie on the watchlist of an owned profile
func (s *WatchlistService) Add(ctx context.Context, accountID, profileID, movieID uint) (*models.WatchlistItem, error) {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	movie, err := database.GetMovie(db, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Movie %d not found", movieID)
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}

	exists, err := database.WatchlistContains(db, profileID, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to check watchlist: %w", err)
	}
	if exists {
		return nil, invalid("Movie is already on the watchlist.")
	}

	item := &models.WatchlistItem{ProfileID: profileID, MovieID: movieID, AddedAt: s.now()}
	if err := database.CreateWatchlistItem(db, item); err != nil {
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	item.Movie = movie
	return item, nil
}

// Remove deletes an item from the watchlist of an owned profile
func (s *WatchlistService) Remove(ctx context.Context, accountID, profileID, itemID uint) error {
	if _, err := s.profiles.Owned(ctx, accountID, profileID); err != nil {
		return err
	}
	removed, err := database.DeleteWatchlistItem(s.db.WithContext(ctx), profileID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	if !removed {
		return notFound("Watchlist item %d not found", itemID)
	}
	return nil
}
