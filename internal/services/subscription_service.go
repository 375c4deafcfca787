package services

import (
	"context"
	"errors"
	"fmt"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"streamflix-api/pkg/logging"
	"time"

	"gorm.io/gorm"
)

// Messages returned by Subscribe
const (
	MessageTrialStarted          = "Trial started (7 days)."
	MessageSubscriptionActivated = "Subscription activated."
)

// SubscriptionService settles subscribe calls
type SubscriptionService struct {
	db          *gorm.DB
	invitations *InvitationService
	publisher   EventPublisher
	settlement  config.SettlementConfig
	now         func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(db *gorm.DB, invitations *InvitationService, publisher EventPublisher, settlement config.SettlementConfig) *SubscriptionService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &SubscriptionService{
		db:          db,
		invitations: invitations,
		publisher:   publisher,
		settlement:  settlement,
		now:         time.Now,
	}
}

// SubscribeResult is the outcome of a subscribe call
type SubscribeResult struct {
	Message      string               `json:"message"`
	Subscription *models.Subscription `json:"subscription"`
}

// AccountSummary is the account part of the subscription overview
type AccountSummary struct {
	AccountID   uint   `json:"accountId"`
	Email       string `json:"email"`
	IsTrialUsed bool   `json:"isTrialUsed"`
}

// SubscriptionOverview is returned by MySubscription
type SubscriptionOverview struct {
	Account      AccountSummary       `json:"account"`
	Subscription *models.Subscription `json:"subscription"`
}

// Subscribe starts or replaces the subscription of an account. Everything runs in
// one transaction holding the account row lock, so concurrent calls for the same
// account cannot both take the trial or both consume a referral bonus.
func (s *SubscriptionService) Subscribe(ctx context.Context, accountID uint, quality models.Quality, paymentMethod *string) (*SubscribeResult, error) {
	plan, err := PlanInfo(quality)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		created *models.Subscription
		bonus   *BonusActivation
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := database.GetAccountForUpdate(tx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Account %d not found", accountID)
			}
			return fmt.Errorf("failed to load account: %w", err)
		}
		previous := account.SubscriptionID

		decision := decideTrial(*account, now, s.settlement)

		carried, err := s.carriedDiscount(tx, account, now)
		if err != nil {
			return err
		}

		var activated *Discount
		if !decision.IsTrial {
			bonus, err = s.invitations.ActivateBonus(tx, accountID, now)
			if err != nil {
				return err
			}
			if bonus != nil {
				activated = &bonus.Discount
			}
		}

		created = buildSubscriptionRow(plan, decision, resolveDiscount(decision.IsTrial, activated, carried), now)
		if err := createRow(tx, created); err != nil {
			return err
		}

		next := nextAccountState(*account, created.ID, paymentMethod, decision)
		err = database.UpdateAccount(tx, accountID, map[string]interface{}{
			"subscription_id": next.SubscriptionID,
			"payment_method":  next.PaymentMethod,
			"is_trial_used":   next.IsTrialUsed,
		})
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		if previous != nil && *previous != created.ID {
			if err := garbageCollect(tx, *previous); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Infof("Subscription settled - account: %d, subscription: %d, quality: %s, trial: %v, discount: %.2f",
		accountID, created.ID, created.Quality, created.IsTrial, created.DiscountAmount)
	s.publishSettled(ctx, accountID, created, bonus, now)

	message := MessageSubscriptionActivated
	if created.IsTrial {
		message = MessageTrialStarted
	}
	return &SubscribeResult{Message: message, Subscription: created}, nil
}

// carriedDiscount finds a still-running discount to carry onto the new row: the
// current row's discount first, then a running bonus recorded on an invitation.
func (s *SubscriptionService) carriedDiscount(tx *gorm.DB, account *models.Account, now time.Time) (*Discount, error) {
	if account.SubscriptionID != nil {
		current, err := database.GetSubscription(tx, *account.SubscriptionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load current subscription: %w", err)
		}
		if discount := carriedDiscount(current, now); discount != nil {
			return discount, nil
		}
	}
	return s.invitations.runningDiscount(tx, account.ID, now)
}

func (s *SubscriptionService) publishSettled(ctx context.Context, accountID uint, sub *models.Subscription, bonus *BonusActivation, now time.Time) {
	event := SubscriptionEvent{
		AccountID:      accountID,
		SubscriptionID: sub.ID,
		Quality:        string(sub.Quality),
		IsTrial:        sub.IsTrial,
		DiscountAmount: sub.DiscountAmount,
		OccurredAt:     now,
	}
	if err := s.publisher.Publish(ctx, EventSubscriptionActivated, event); err != nil {
		logging.Errorf("Failed to publish %s event - account: %d, error: %v", EventSubscriptionActivated, accountID, err)
	}

	if bonus == nil {
		return
	}
	bonusEvent := ReferralBonusEvent{
		InvitationID:     bonus.InvitationID,
		InviterAccountID: bonus.InviterAccountID,
		InviteeAccountID: bonus.InviteeAccountID,
		DiscountAmount:   bonus.Discount.Amount,
		ValidUntil:       bonus.Discount.ValidUntil,
		OccurredAt:       now,
	}
	if err := s.publisher.Publish(ctx, EventReferralBonusActivated, bonusEvent); err != nil {
		logging.Errorf("Failed to publish %s event - invitation: %d, error: %v", EventReferralBonusActivated, bonus.InvitationID, err)
	}
}

// MySubscription returns the account summary and its current subscription
func (s *SubscriptionService) MySubscription(ctx context.Context, accountID uint) (*SubscriptionOverview, error) {
	account, err := database.GetAccountWithSubscription(s.db.WithContext(ctx), accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Account %d not found", accountID)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return &SubscriptionOverview{
		Account: AccountSummary{
			AccountID:   account.ID,
			Email:       account.Email,
			IsTrialUsed: account.IsTrialUsed,
		},
		Subscription: account.Subscription,
	}, nil
}
