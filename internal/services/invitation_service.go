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
	"gorm.io/gorm"
)

// InvitationService manages invitations and referral bonuses
type InvitationService struct {
	db          *gorm.DB
	mailer      Mailer
	settlement  config.SettlementConfig
	frontendURL string
	now         func() time.Time
	newCode     func() string
}

// maxCodeAttempts bounds the retries on an invitation code collision
const maxCodeAttempts = 5

// NewInvitationService creates a new invitation service
func NewInvitationService(db *gorm.DB, mailer Mailer, settlement config.SettlementConfig, frontendURL string) *InvitationService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &InvitationService{
		db:          db,
		mailer:      mailer,
		settlement:  settlement,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
		newCode:     GenerateInvitationCode,
	}
}

// CreateInvitationResult is returned to the inviter. RegisterURL is set when no
// mail provider is configured, EmailSent otherwise.
type CreateInvitationResult struct {
	InvitationCode string `json:"invitationCode"`
	RegisterURL    string `json:"registerUrl,omitempty"`
	EmailSent      *bool  `json:"emailSent,omitempty"`
}

// GenerateInvitationCode returns a short human shareable code
func GenerateInvitationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(raw[:8])
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a PENDING invitation and mails the register link
func (s *InvitationService) Create(ctx context.Context, inviterAccountID uint, inviteeEmail string) (*CreateInvitationResult, error) {
	invitation, err := s.insertWithFreshCode(s.db.WithContext(ctx), inviterAccountID, NormalizeEmail(inviteeEmail))
	if err != nil {
		return nil, err
	}

	registerURL := fmt.Sprintf("%s/register?code=%s", s.frontendURL, url.QueryEscape(invitation.InvitationCode))
	result := &CreateInvitationResult{InvitationCode: invitation.InvitationCode}

	// Mail failures never block invitation creation
	err = s.mailer.SendInvitationEmail(ctx, invitation.InviteeEmail, registerURL)
	if err != nil {
		logging.Errorf("Failed to send invitation email - invitation: %d, error: %v", invitation.ID, err)
	}

	if s.mailer.Enabled() {
		sent := err == nil
		result.EmailSent = &sent
	} else {
		result.RegisterURL = registerURL
	}

	return result, nil
}

// insertWithFreshCode stores a PENDING invitation, drawing a new code when the
// previous one collides with an existing invitation
func (s *InvitationService) insertWithFreshCode(db *gorm.DB, inviterAccountID uint, inviteeEmail string) (*models.Invitation, error) {
	for attempt := 1; ; attempt++ {
		invitation := &models.Invitation{
			InviterAccountID: inviterAccountID,
			InviteeEmail:     inviteeEmail,
			InvitationCode:   s.newCode(),
			Status:           models.InvitationStatusPending,
		}

		err := database.CreateInvitation(db, invitation)
		if err == nil {
			return invitation, nil
		}
		if !s.codeTaken(db, invitation.InvitationCode, err) || attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
		logging.Warnf("Invitation code collision, retrying - attempt: %d", attempt)
	}
}

// codeTaken reports whether a failed insert was caused by a duplicate code
func (s *InvitationService) codeTaken(db *gorm.DB, code string, err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	exists, lookupErr := database.InvitationCodeExists(db, code)
	return lookupErr == nil && exists
}

// ListSent lists the invitations sent by an account, newest first
func (s *InvitationService) ListSent(ctx context.Context, inviterAccountID uint) ([]models.Invitation, error) {
	invitations, err := database.ListInvitationsByInviter(s.db.WithContext(ctx), inviterAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// AcceptOnRegistration links a newly registered account to the invitation
// identified by code and returns the inviter's account id. It must run inside
// the registration transaction so a rejected code aborts the registration.
func (s *InvitationService) AcceptOnRegistration(tx *gorm.DB, code, registeringEmail string, inviteeAccountID uint) (uint, error) {
	code = strings.TrimSpace(code)

	invitation, err := database.GetInvitationByCodeForUpdate(tx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, invalid("Invalid invitation code.")
		}
		return 0, fmt.Errorf("failed to load invitation: %w", err)
	}

	if invitation.Status != models.InvitationStatusPending {
		return 0, invalid("Invitation code is no longer valid.")
	}
	if invitation.InviteeEmail != NormalizeEmail(registeringEmail) {
		return 0, invalid("Invitation code does not match this email address.")
	}

	now := s.now()
	err = database.UpdateInvitation(tx, invitation.ID, map[string]interface{}{
		"invitee_account_id": inviteeAccountID,
		"accepted_at":        now,
		"status":             models.InvitationStatusAccepted,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return invitation.InviterAccountID, nil
}

// BonusActivation describes an activated referral bonus
type BonusActivation struct {
	InvitationID     uint
	InviterAccountID uint
	InviteeAccountID uint
	Discount         Discount
}

// ActivateBonus activates the referral bonus of the oldest accepted, unapplied
// invitation naming accountID as invitee. When either party already had a bonus
// the invitation is retired as EXPIRED and nil is returned. Must run inside the
// subscribe transaction.
func (s *InvitationService) ActivateBonus(tx *gorm.DB, accountID uint, now time.Time) (*BonusActivation, error) {
	invitation, err := database.FindPendingBonusInvitation(tx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	// The inviter is locked before its bonus history is read. Locks always run
	// from invitee to inviter.
	inviter, err := database.GetAccountForUpdate(tx, invitation.InviterAccountID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load inviter: %w", err)
	}

	inviterUsed, err := database.HasUsedDiscount(tx, invitation.InviterAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to check inviter bonus: %w", err)
	}
	inviteeUsed, err := database.HasUsedDiscount(tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitee bonus: %w", err)
	}

	if inviterUsed || inviteeUsed {
		logging.Infof("Referral bonus already consumed, expiring invitation - invitation: %d, inviter_used: %v, invitee_used: %v",
			invitation.ID, inviterUsed, inviteeUsed)
		err := database.UpdateInvitation(tx, invitation.ID, map[string]interface{}{
			"status": models.InvitationStatusExpired,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, nil
	}

	discount := newDiscount(now, s.settlement)
	err = database.UpdateInvitation(tx, invitation.ID, map[string]interface{}{
		"discount_applied":     true,
		"discount_amount":      discount.Amount,
		"discount_started_at":  discount.StartedAt,
		"discount_valid_until": discount.ValidUntil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply discount: %w", err)
	}

	if err := s.applyToInviter(tx, inviter, discount, now); err != nil {
		return nil, err
	}

	return &BonusActivation{
		InvitationID:     invitation.ID,
		InviterAccountID: invitation.InviterAccountID,
		InviteeAccountID: accountID,
		Discount:         discount,
	}, nil
}

// applyToInviter mirrors the discount onto the inviter's live paid subscription.
// Trial rows keep a zero discount; the inviter picks the bonus up on the next
// subscribe through the running invitation window. inviter is nil when the
// account no longer exists.
func (s *InvitationService) applyToInviter(tx *gorm.DB, inviter *models.Account, discount Discount, now time.Time) error {
	if inviter == nil || inviter.SubscriptionID == nil {
		return nil
	}

	sub, err := database.GetSubscription(tx, *inviter.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load inviter subscription: %w", err)
	}
	if !sub.IsActiveAt(now) || sub.IsTrial {
		return nil
	}

	validUntil := discount.ValidUntil
	if err := database.UpdateSubscriptionDiscount(tx, sub.ID, discount.Amount, &validUntil); err != nil {
		return fmt.Errorf("failed to update inviter subscription: %w", err)
	}
	return nil
}

// runningDiscount returns a still-open bonus window recorded on an applied
// invitation in which the account is a party
func (s *InvitationService) runningDiscount(tx *gorm.DB, accountID uint, now time.Time) (*Discount, error) {
	invitation, err := database.FindRunningDiscountInvitation(tx, accountID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up running discount: %w", err)
	}

	if !invitation.HasValidDiscountAt(now) {
		return nil, nil
	}

	discount := Discount{Amount: invitation.DiscountAmount, ValidUntil: *invitation.DiscountValidUntil}
	if invitation.DiscountStartedAt != nil {
		discount.StartedAt = *invitation.DiscountStartedAt
	}
	return &discount, nil
}
