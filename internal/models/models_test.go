package models

import (
	"testing"
	"time"
)

func TestSubscriptionFinalPrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want float64
	}{
		{name: "no discount", sub: Subscription{Price: 12.99}, want: 12.99},
		{name: "running discount", sub: Subscription{Price: 12.99, DiscountAmount: 2, DiscountValidUntil: &future}, want: 10.99},
		{name: "expired discount", sub: Subscription{Price: 12.99, DiscountAmount: 2, DiscountValidUntil: &past}, want: 12.99},
		{name: "discount above price", sub: Subscription{Price: 1.5, DiscountAmount: 2, DiscountValidUntil: &future}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sub.FinalPriceAt(now)
			if diff := got - tt.want; diff > 0.0001 || diff < -0.0001 {
				t.Fatalf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestSubscriptionIsActiveAt(t *testing.T) {
	now := time.Now()
	ended := now.Add(-time.Minute)

	if !(Subscription{Status: SubscriptionStatusActive}).IsActiveAt(now) {
		t.Fatalf("expected open-ended active subscription to be active")
	}
	if (Subscription{Status: SubscriptionStatusActive, EndDate: &ended}).IsActiveAt(now) {
		t.Fatalf("expected ended subscription to be inactive")
	}
	if (Subscription{Status: SubscriptionStatusCancelled}).IsActiveAt(now) {
		t.Fatalf("expected cancelled subscription to be inactive")
	}
}

func TestNextLoginStateLocksOnThirdFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	state := LoginState{}
	state = NextLoginState(state, false, now, 15)
	state = NextLoginState(state, false, now, 15)
	if state.FailedAttempts != 2 || state.LockedUntil != nil {
		t.Fatalf("expected 2 failures and no lock, got %+v", state)
	}

	state = NextLoginState(state, false, now, 15)
	if state.LockedUntil == nil {
		t.Fatalf("expected lock after third failure")
	}
	if !state.LockedUntil.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("expected lock until %v, got %v", now.Add(15*time.Minute), *state.LockedUntil)
	}
	if state.FailedAttempts != 0 {
		t.Fatalf("expected counter reset after lock, got %d", state.FailedAttempts)
	}

	state = NextLoginState(state, true, now, 15)
	if state.FailedAttempts != 0 || state.LockedUntil != nil {
		t.Fatalf("expected clean state after success, got %+v", state)
	}
}

func TestAccountIsLockedAt(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Minute)

	if (Account{}).IsLockedAt(now) {
		t.Fatalf("expected account without lock to be unlocked")
	}
	if !(Account{LockedUntil: &until}).IsLockedAt(now) {
		t.Fatalf("expected account to be locked")
	}
	if (Account{LockedUntil: &until}).IsLockedAt(until.Add(time.Second)) {
		t.Fatalf("expected lock to lapse")
	}
}

func TestMovieFormattedDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{minutes: 150, want: "2h 30m"},
		{minutes: 45, want: "45m"},
		{minutes: 60, want: "1h 0m"},
		{minutes: 0, want: "0m"},
	}

	for _, tt := range tests {
		got := Movie{DurationMinutes: tt.minutes}.FormattedDuration()
		if got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestMovieIsAppropriateForAge(t *testing.T) {
	movie := Movie{MinimumAge: 16}
	if movie.IsAppropriateForAge(12) {
		t.Fatalf("expected 12 year old to be rejected")
	}
	if !movie.IsAppropriateForAge(16) {
		t.Fatalf("expected 16 year old to be accepted")
	}
}

func TestInvitationHasValidDiscountAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		inv  Invitation
		want bool
	}{
		{name: "not applied", inv: Invitation{DiscountAmount: 2, DiscountValidUntil: &future}, want: false},
		{name: "running", inv: Invitation{DiscountApplied: true, DiscountAmount: 2, DiscountValidUntil: &future}, want: true},
		{name: "lapsed", inv: Invitation{DiscountApplied: true, DiscountAmount: 2, DiscountValidUntil: &past}, want: false},
		{name: "zero amount", inv: Invitation{DiscountApplied: true, DiscountValidUntil: &future}, want: false},
		{name: "no window", inv: Invitation{DiscountApplied: true, DiscountAmount: 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.HasValidDiscountAt(now); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
