package services

import (
	"streamflix-api/internal/config"
	"streamflix-api/internal/models"
	"time"
)

// Discount is a referral discount window
type Discount struct {
	Amount     float64   `json:"amount"`
	StartedAt  time.Time `json:"started_at"`
	ValidUntil time.Time `json:"valid_until"`
}

// trialDecision is the outcome of the trial eligibility check
type trialDecision struct {
	IsTrial    bool
	Invited    bool
	TrialStart *time.Time
	TrialEnd   *time.Time
}

// decideTrial grants the free trial to accounts that never used it and were not
// referred; referred accounts get the referral bonus instead.
func decideTrial(account models.Account, now time.Time, cfg config.SettlementConfig) trialDecision {
	invited := account.ReferredByAccountID != nil
	decision := trialDecision{Invited: invited}
	if account.IsTrialUsed || invited {
		return decision
	}

	start := now
	end := now.AddDate(0, 0, cfg.TrialDays)
	decision.IsTrial = true
	decision.TrialStart = &start
	decision.TrialEnd = &end
	return decision
}

// newDiscount opens a discount window starting at now
func newDiscount(now time.Time, cfg config.SettlementConfig) Discount {
	return Discount{
		Amount:     cfg.DiscountAmount,
		StartedAt:  now,
		ValidUntil: now.AddDate(0, 0, cfg.DiscountValidDays),
	}
}

// carriedDiscount returns the still-running discount of a subscription row
func carriedDiscount(sub *models.Subscription, now time.Time) *Discount {
	if sub == nil || !sub.HasValidDiscountAt(now) {
		return nil
	}
	return &Discount{Amount: sub.DiscountAmount, ValidUntil: *sub.DiscountValidUntil}
}

// resolveDiscount picks the discount for a new row: a freshly activated bonus wins
// over a carried one. Trial rows never carry a discount.
func resolveDiscount(isTrial bool, activated, carried *Discount) *Discount {
	if isTrial {
		return nil
	}
	if activated != nil {
		return activated
	}
	return carried
}

// accountUpdate is the next state of the account after a subscribe call
type accountUpdate struct {
	SubscriptionID uint
	PaymentMethod  *string
	IsTrialUsed    bool
}

// nextAccountState computes the account columns written by subscribe. The trial
// flag only ever moves from false to true; being invited consumes it as well.
func nextAccountState(account models.Account, newSubscriptionID uint, paymentMethod *string, decision trialDecision) accountUpdate {
	method := account.PaymentMethod
	if paymentMethod != nil {
		method = paymentMethod
	}
	return accountUpdate{
		SubscriptionID: newSubscriptionID,
		PaymentMethod:  method,
		IsTrialUsed:    account.IsTrialUsed || decision.IsTrial || decision.Invited,
	}
}

// buildSubscriptionRow assembles an immutable subscription row
func buildSubscriptionRow(plan Plan, decision trialDecision, discount *Discount, now time.Time) *models.Subscription {
	sub := &models.Subscription{
		Description:    plan.Description,
		Price:          plan.Price,
		Quality:        plan.Quality,
		IsTrial:        decision.IsTrial,
		TrialStartDate: decision.TrialStart,
		TrialEndDate:   decision.TrialEnd,
		Status:         models.SubscriptionStatusActive,
		StartDate:      now,
	}
	if discount != nil {
		validUntil := discount.ValidUntil
		sub.DiscountAmount = discount.Amount
		sub.DiscountValidUntil = &validUntil
	}
	return sub
}
