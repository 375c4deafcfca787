package services

import (
	"context"
	"net/url"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"testing"
	"time"

	"gorm.io/gorm"
)

type authFixture struct {
	*settlementFixture
	mailer  *recordingMailer
	limiter *MemoryRateLimiter
	resets  *DBResetTokenStore
	auth    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := newSettlementFixture(t)
	mailer := &recordingMailer{enabled: true}
	limiter := NewMemoryRateLimiter()
	t.Cleanup(limiter.Stop)
	limiter.now = fixedClock(f.now)
	resets := NewDBResetTokenStore(f.db)
	resets.now = fixedClock(f.now)

	cfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		JWTExpiresHours:         24,
		LockMinutes:             15,
		ActivationTokenTTLHours: 24,
		PasswordResetTTLMinutes: 30,
		RateLimitMinutes:        5,
		FrontendURL:             "http://localhost:3000",
		APIBaseURL:              "http://localhost:8080",
	}
	tokens := NewTokenService(cfg.JWTSecret, 24*time.Hour)
	tokens.now = fixedClock(f.now)

	auth := NewAuthService(f.db, f.invitations, tokens, resets, limiter, mailer, cfg)
	auth.now = fixedClock(f.now)

	return &authFixture{settlementFixture: f, mailer: mailer, limiter: limiter, resets: resets, auth: auth}
}

func (f *authFixture) activationToken(t *testing.T) string {
	t.Helper()
	mail, ok := f.mailer.last("activation")
	if !ok {
		t.Fatalf("expected an activation mail")
	}
	link, err := url.Parse(mail.Body)
	if err != nil {
		t.Fatalf("bad activation link %q: %v", mail.Body, err)
	}
	return link.Query().Get("token")
}

func (f *authFixture) registerActive(t *testing.T, email, password string) *models.Account {
	t.Helper()
	account, err := f.auth.Register(context.Background(), email, password, "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := f.auth.Activate(context.Background(), f.activationToken(t)); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	return account
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "not-an-email", "password123", "")
	assertKind(t, err, ErrValidation)

	_, err = f.auth.Register(ctx, "short@example.com", "short", "")
	assertKind(t, err, ErrValidation)

	if _, err := f.auth.Register(ctx, "Dup@Example.com", "password123", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err = f.auth.Register(ctx, "dup@example.com", "password123", "")
	assertKind(t, err, ErrValidation)
}

func TestRegisterWithInvitationLinksInviter(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	inviter := f.createAccount(t, "referrer@example.com")

	result, err := f.invitations.Create(ctx, inviter.ID, "newbie@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	account, err := f.auth.Register(ctx, "NewBie@example.com", "password123", result.InvitationCode)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	reloaded := f.account(t, account.ID)
	if reloaded.ReferredByAccountID == nil || *reloaded.ReferredByAccountID != inviter.ID {
		t.Fatalf("expected account to be referred by %d, got %v", inviter.ID, reloaded.ReferredByAccountID)
	}
	if inv := f.invitationsOf(t, inviter.ID)[0]; inv.Status != models.InvitationStatusAccepted {
		t.Fatalf("expected ACCEPTED invitation, got %s", inv.Status)
	}
}

func TestRegisterWithMismatchedInvitationFails(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	inviter := f.createAccount(t, "mismatch-host@example.com")

	result, err := f.invitations.Create(ctx, inviter.ID, "a@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = f.auth.Register(ctx, "b@example.com", "password123", result.InvitationCode)
	assertKind(t, err, ErrValidation)

	if _, err := database.GetAccountByEmail(f.db, "b@example.com"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected no account to be stored, got %v", err)
	}
	if inv := f.invitationsOf(t, inviter.ID)[0]; inv.Status != models.InvitationStatusPending {
		t.Fatalf("expected invitation to stay PENDING, got %s", inv.Status)
	}
	if _, ok := f.mailer.last("activation"); ok {
		t.Fatalf("expected no activation mail for a rejected registration")
	}
}

func TestActivate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.auth.Activate(ctx, "unknown")
	assertKind(t, err, ErrValidation)

	account, err := f.auth.Register(ctx, "activate@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token := f.activationToken(t)

	if err := f.auth.Activate(ctx, token); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !f.account(t, account.ID).IsActivated {
		t.Fatalf("expected account to be activated")
	}

	err = f.auth.Activate(ctx, token)
	assertKind(t, err, ErrValidation)
}

func TestActivateExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Register(ctx, "late@example.com", "password123", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	f.auth.now = fixedClock(f.now.Add(25 * time.Hour))

	err := f.auth.Activate(ctx, f.activationToken(t))
	assertKind(t, err, ErrValidation)
}

func TestLoginFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "inactive@example.com", "password123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err = f.auth.Login(ctx, "inactive@example.com", "password123")
	assertKind(t, err, ErrForbidden)

	account := f.registerActive(t, "login@example.com", "password123")

	_, err = f.auth.Login(ctx, "missing@example.com", "password123")
	assertKind(t, err, ErrUnauthorized)

	result, err := f.auth.Login(ctx, "LOGIN@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	id, err := f.auth.tokens.Verify(result.Token)
	if err != nil || id != account.ID {
		t.Fatalf("expected token for account %d, got %d (%v)", account.ID, id, err)
	}
}

func TestLoginLocksAfterThreeFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	account := f.registerActive(t, "locked@example.com", "password123")

	for i := 0; i < 2; i++ {
		_, err := f.auth.Login(ctx, "locked@example.com", "wrong-password")
		assertKind(t, err, ErrUnauthorized)
	}
	_, err := f.auth.Login(ctx, "locked@example.com", "wrong-password")
	assertKind(t, err, ErrLocked)

	// the correct password is refused while the lock holds
	_, err = f.auth.Login(ctx, "locked@example.com", "password123")
	assertKind(t, err, ErrLocked)

	f.auth.now = fixedClock(f.now.Add(16 * time.Minute))
	if _, err := f.auth.Login(ctx, "locked@example.com", "password123"); err != nil {
		t.Fatalf("expected login after lock lapsed, got %v", err)
	}

	reloaded := f.account(t, account.ID)
	if reloaded.FailedLoginAttempts != 0 || reloaded.LockedUntil != nil {
		t.Fatalf("expected clean login state, got %d %v", reloaded.FailedLoginAttempts, reloaded.LockedUntil)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerActive(t, "forgot@example.com", "password123")

	if err := f.auth.ForgotPassword(ctx, "forgot@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	err := f.auth.ForgotPassword(ctx, "forgot@example.com")
	assertKind(t, err, ErrRateLimited)

	mail, ok := f.mailer.last("reset")
	if !ok {
		t.Fatalf("expected a reset mail")
	}

	err = f.auth.ResetPassword(ctx, mail.Body, "short")
	assertKind(t, err, ErrValidation)

	if err := f.auth.ResetPassword(ctx, mail.Body, "new-password-1"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	err = f.auth.ResetPassword(ctx, mail.Body, "new-password-2")
	assertKind(t, err, ErrValidation)

	if _, err := f.auth.Login(ctx, "forgot@example.com", "new-password-1"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.auth.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if _, ok := f.mailer.last("reset"); ok {
		t.Fatalf("expected no mail for an unknown email")
	}
}

func TestResetTokenExpires(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.resets.StoreToken(ctx, "tok", 5, 30*time.Minute); err != nil {
		t.Fatalf("StoreToken failed: %v", err)
	}
	f.resets.now = fixedClock(f.now.Add(31 * time.Minute))

	if _, err := f.resets.ConsumeToken(ctx, "tok"); err != errTokenNotFound {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestMemoryRateLimiterWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	defer limiter.Stop()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = fixedClock(start)
	ctx := context.Background()

	if limited, _ := limiter.CheckRateLimit(ctx, "k"); limited {
		t.Fatalf("expected fresh key to be free")
	}
	limiter.SetRateLimit(ctx, "k", time.Minute)
	if limited, _ := limiter.CheckRateLimit(ctx, "k"); !limited {
		t.Fatalf("expected key to be limited")
	}

	limiter.mutex.Lock()
	limiter.now = fixedClock(start.Add(2 * time.Minute))
	limiter.mutex.Unlock()
	if limited, _ := limiter.CheckRateLimit(ctx, "k"); limited {
		t.Fatalf("expected window to lapse")
	}

	limiter.cleanup()
	if len(limiter.windows) != 0 {
		t.Fatalf("expected cleanup to drop expired windows, got %d", len(limiter.windows))
	}
}

func TestGetAccount(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerActive(t, "getme@example.com", "password123")

	got, err := f.auth.GetAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Email != "getme@example.com" || !got.IsActivated {
		t.Fatalf("unexpected account %+v", got)
	}

	_, err = f.auth.GetAccount(context.Background(), 9999)
	assertKind(t, err, ErrNotFound)
}
