package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"streamflix-api/pkg/logging"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64
)

// AuthService handles registration, activation, login and password resets
type AuthService struct {
	db          *gorm.DB
	invitations *InvitationService
	tokens      *TokenService
	resetTokens ResetTokenStore
	limiter     RateLimiter
	mailer      Mailer
	cfg         config.AuthConfig
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, invitations *InvitationService, tokens *TokenService, resetTokens ResetTokenStore, limiter RateLimiter, mailer Mailer, cfg config.AuthConfig) *AuthService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{
		db:          db,
		invitations: invitations,
		tokens:      tokens,
		resetTokens: resetTokens,
		limiter:     limiter,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
}

func newOpaqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return invalid("Password must be between %d and %d characters.", minPasswordLength, maxPasswordLength)
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return invalid("A valid email address is required.")
	}
	return nil
}

// Register creates an inactive account. A supplied invitation code must match
// the registering email, otherwise nothing is stored.
func (s *AuthService) Register(ctx context.Context, email, password, invitationCode string) (*models.Account, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{Email: email, PasswordHash: string(hash)}
	activation := &models.ActivationToken{
		Token:     newOpaqueToken(),
		ExpiresAt: s.now().Add(time.Duration(s.cfg.ActivationTokenTTLHours) * time.Hour),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := database.GetAccountByEmail(tx, email); err == nil {
			return invalid("Email is already registered.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}

		if err := database.CreateAccount(tx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		activation.AccountID = account.ID
		if err := database.CreateActivationToken(tx, activation); err != nil {
			return fmt.Errorf("failed to create activation token: %w", err)
		}

		if code := strings.TrimSpace(invitationCode); code != "" {
			inviterID, err := s.invitations.AcceptOnRegistration(tx, code, email, account.ID)
			if err != nil {
				return err
			}
			if err := database.UpdateAccount(tx, account.ID, map[string]interface{}{"referred_by_account_id": inviterID}); err != nil {
				return fmt.Errorf("failed to link inviter: %w", err)
			}
			account.ReferredByAccountID = &inviterID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Infof("Account registered - account: %d, invited: %v", account.ID, account.ReferredByAccountID != nil)

	link := fmt.Sprintf("%s/api/auth/activate?token=%s", s.cfg.APIBaseURL, url.QueryEscape(activation.Token))
	if err := s.mailer.SendActivationEmail(ctx, email, link, s.cfg.ActivationTokenTTLHours); err != nil {
		logging.Errorf("Failed to send activation email - account: %d, error: %v", account.ID, err)
	}

	return account, nil
}

// Activate marks the account behind an activation token as activated
func (s *AuthService) Activate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("Activation token is required.")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activation, err := database.GetActivationToken(tx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("Invalid activation token.")
			}
			return fmt.Errorf("failed to load activation token: %w", err)
		}
		if !s.now().Before(activation.ExpiresAt) {
			return invalid("Activation token has expired.")
		}

		if err := database.UpdateAccount(tx, activation.AccountID, map[string]interface{}{"is_activated": true}); err != nil {
			return fmt.Errorf("failed to activate account: %w", err)
		}
		if err := database.DeleteActivationToken(tx, token); err != nil {
			return fmt.Errorf("failed to delete activation token: %w", err)
		}

		logging.Infof("Account activated - account: %d", activation.AccountID)
		return nil
	})
}

// Login checks the credentials and issues an access token. Three consecutive
// failures lock the account for the configured number of minutes.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	now := s.now()
	db := s.db.WithContext(ctx)

	account, err := database.GetAccountByEmail(db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("Invalid email or password.")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.IsLockedAt(now) {
		return nil, newError(ErrLocked, "Account is temporarily locked. Try again later.")
	}

	success := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
	state := models.NextLoginState(models.LoginStateOf(*account), success, now, s.cfg.LockMinutes)
	err = database.UpdateAccount(db, account.ID, map[string]interface{}{
		"failed_login_attempts": state.FailedAttempts,
		"locked_until":          state.LockedUntil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update login state: %w", err)
	}

	if !success {
		if state.LockedUntil != nil && state.LockedUntil.After(now) {
			logging.Warnf("Account locked after failed logins - account: %d, until: %s", account.ID, state.LockedUntil.Format(time.RFC3339))
			return nil, newError(ErrLocked, "Too many failed attempts. Account locked for %d minutes.", s.cfg.LockMinutes)
		}
		return nil, unauthorized("Invalid email or password.")
	}

	if account.IsBlocked {
		return nil, forbidden("Account is blocked.")
	}
	if !account.IsActivated {
		return nil, forbidden("Account is not activated. Check your email for the activation link.")
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, err
	}

	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.tokens.TTL()),
		Account:   account,
	}, nil
}

// ForgotPassword mails a reset token. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	limitKey := "forgot_password:" + email

	limited, err := s.limiter.CheckRateLimit(ctx, limitKey)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if limited {
		return newError(ErrRateLimited, "Please wait %d minutes before requesting another reset.", s.cfg.RateLimitMinutes)
	}

	window := time.Duration(s.cfg.RateLimitMinutes) * time.Minute
	if err := s.limiter.SetRateLimit(ctx, limitKey, window); err != nil {
		logging.Errorf("Failed to set rate limit - key: %s, error: %v", limitKey, err)
	}

	account, err := database.GetAccountByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	token := newOpaqueToken()
	ttl := time.Duration(s.cfg.PasswordResetTTLMinutes) * time.Minute
	if err := s.resetTokens.StoreToken(ctx, token, account.ID, ttl); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, email, token, s.cfg.PasswordResetTTLMinutes); err != nil {
		logging.Errorf("Failed to send password reset email - account: %d, error: %v", account.ID, err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	accountID, err := s.resetTokens.ConsumeToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, errTokenNotFound) {
			return invalid("Invalid or expired reset token.")
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = database.UpdateAccount(s.db.WithContext(ctx), accountID, map[string]interface{}{
		"password_hash":         string(hash),
		"failed_login_attempts": 0,
		"locked_until":          nil,
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logging.Infof("Password reset - account: %d", accountID)
	return nil
}

// GetAccount returns the account with its current subscription
func (s *AuthService) GetAccount(ctx context.Context, accountID uint) (*models.Account, error) {
	account, err := database.GetAccountWithSubscription(s.db.WithContext(ctx), accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Account %d not found", accountID)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}
