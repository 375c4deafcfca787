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

// ProfileInput is the editable part of a profile. Nil fields are left unchanged on update.
type ProfileInput struct {
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	Language *string `json:"language"`
}

// ProfileService manages the viewer profiles of an account
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new profile service
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func normalizeProfileInput(input ProfileInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > 60 {
			return nil, invalid("Profile name must be between 1 and 60 characters.")
		}
		updates["name"] = name
	}
	if input.Age != nil {
		if *input.Age < 0 || *input.Age > 120 {
			return nil, invalid("Age must be between 0 and 120.")
		}
		updates["age"] = *input.Age
	}
	if input.Language != nil {
		language := strings.ToUpper(strings.TrimSpace(*input.Language))
		if language != models.LanguageEnglish && language != models.LanguageDutch {
			return nil, invalid("Language must be ENGLISH or DUTCH.")
		}
		updates["language"] = language
	}
	return updates, nil
}

// List returns the profiles of an account
func (s *ProfileService) List(ctx context.Context, accountID uint) ([]models.Profile, error) {
	profiles, err := database.ListProfilesByAccount(s.db.WithContext(ctx), accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Create adds a profile to the account
func (s *ProfileService) Create(ctx context.Context, accountID uint, input ProfileInput) (*models.Profile, error) {
	if input.Name == nil {
		return nil, invalid("Profile name is required.")
	}
	updates, err := normalizeProfileInput(input)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{AccountID: accountID, Age: 18, Language: models.LanguageEnglish}
	profile.Name = updates["name"].(string)
	if age, ok := updates["age"].(int); ok {
		profile.Age = age
	}
	if language, ok := updates["language"].(string); ok {
		profile.Language = language
	}

	if err := database.CreateProfile(s.db.WithContext(ctx), profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// Owned loads a profile and checks it belongs to the account
func (s *ProfileService) Owned(ctx context.Context, accountID, profileID uint) (*models.Profile, error) {
	profile, err := database.GetProfile(s.db.WithContext(ctx), profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Profile %d not found", profileID)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.AccountID != accountID {
		return nil, forbidden("Profile %d belongs to another account", profileID)
	}
	return profile, nil
}

// Update changes the supplied fields of an owned profile
func (s *ProfileService) Update(ctx context.Context, accountID, profileID uint, input ProfileInput) (*models.Profile, error) {
	if _, err := s.Owned(ctx, accountID, profileID); err != nil {
		return nil, err
	}
	updates, err := normalizeProfileInput(input)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := database.UpdateProfile(s.db.WithContext(ctx), profileID, updates); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return s.Owned(ctx, accountID, profileID)
}

// Delete removes an owned profile with its watchlist
func (s *ProfileService) Delete(ctx context.Context, accountID, profileID uint) error {
	if _, err := s.Owned(ctx, accountID, profileID); err != nil {
		return err
	}
	if err := database.DeleteProfile(s.db.WithContext(ctx), profileID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
