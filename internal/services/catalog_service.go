package services

import (
	"context"
	"errors"
	"fmt"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"strings"

	"gorm.io/gorm"
)

// MovieView is a movie as shown in the catalog
type MovieView struct {
	models.Movie
	Duration string `json:"duration"`
}

func movieView(movie models.Movie) MovieView {
	return MovieView{Movie: movie, Duration: movie.FormattedDuration()}
}

// CatalogService lists the movie catalog
type CatalogService struct {
	db       *gorm.DB
	profiles *ProfileService
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB, profiles *ProfileService) *CatalogService {
	return &CatalogService{db: db, profiles: profiles}
}

// ListMovies lists movies, optionally by genre. When a profile of the caller is
// given only titles suitable for its age are returned.
func (s *CatalogService) ListMovies(ctx context.Context, accountID uint, genre string, profileID *uint) ([]MovieView, error) {
	var maxAge *int
	if profileID != nil {
		profile, err := s.profiles.Owned(ctx, accountID, *profileID)
		if err != nil {
			return nil, err
		}
		maxAge = &profile.Age
	}

	movies, err := database.ListMovies(s.db.WithContext(ctx), strings.TrimSpace(genre), maxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	views := make([]MovieView, 0, len(movies))
	for _, movie := range movies {
		views = append(views, movieView(movie))
	}
	return views, nil
}

// GetMovie loads one movie
func (s *CatalogService) GetMovie(ctx context.Context, movieID uint) (*MovieView, error) {
	movie, err := database.GetMovie(s.db.WithContext(ctx), movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Movie %d not found", movieID)
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	view := movieView(*movie)
	return &view, nil
}
