package services

import (
	"context"
	"errors"
	"fmt"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"
)

var testDBCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := database.Open("sqlite", dsn, false)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

type publishedEvent struct {
	RoutingKey string
	Payload    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{RoutingKey: routingKey, Payload: payload})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

type sentMail struct {
	Kind string
	To   string
	Body string
}

type recordingMailer struct {
	enabled bool
	err     error
	sent    []sentMail
}

func (m *recordingMailer) Enabled() bool {
	return m.enabled
}

func (m *recordingMailer) SendInvitationEmail(_ context.Context, to, registerURL string) error {
	m.sent = append(m.sent, sentMail{Kind: "invitation", To: to, Body: registerURL})
	return m.err
}

func (m *recordingMailer) SendActivationEmail(_ context.Context, to, activationLink string, _ int) error {
	m.sent = append(m.sent, sentMail{Kind: "activation", To: to, Body: activationLink})
	return m.err
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, to, token string, _ int) error {
	m.sent = append(m.sent, sentMail{Kind: "reset", To: to, Body: token})
	return m.err
}

func (m *recordingMailer) last(kind string) (sentMail, bool) {
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

// settlementFixture wires the invitation and subscription services on one database
type settlementFixture struct {
	db            *gorm.DB
	now           time.Time
	publisher     *recordingPublisher
	invitations   *InvitationService
	subscriptions *SubscriptionService
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	db := newTestDB(t)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	publisher := &recordingPublisher{}

	invitations := NewInvitationService(db, LogMailer{}, config.DefaultSettlementConfig(), "http://localhost:3000")
	invitations.now = fixedClock(now)
	subscriptions := NewSubscriptionService(db, invitations, publisher, config.DefaultSettlementConfig())
	subscriptions.now = fixedClock(now)

	return &settlementFixture{
		db:            db,
		now:           now,
		publisher:     publisher,
		invitations:   invitations,
		subscriptions: subscriptions,
	}
}

func (f *settlementFixture) setNow(now time.Time) {
	f.now = now
	f.invitations.now = fixedClock(now)
	f.subscriptions.now = fixedClock(now)
}

func (f *settlementFixture) createAccount(t *testing.T, email string) *models.Account {
	t.Helper()
	account := &models.Account{Email: email, PasswordHash: "x", IsActivated: true}
	if err := database.CreateAccount(f.db, account); err != nil {
		t.Fatalf("failed to create account %s: %v", email, err)
	}
	return account
}

// registerInvited creates an invitation from inviter and accepts it for email,
// the way registration does
func (f *settlementFixture) registerInvited(t *testing.T, inviter *models.Account, email string) *models.Account {
	t.Helper()

	result, err := f.invitations.Create(context.Background(), inviter.ID, email)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	invitee := &models.Account{Email: email, PasswordHash: "x", IsActivated: true}
	err = f.db.Transaction(func(tx *gorm.DB) error {
		if err := database.CreateAccount(tx, invitee); err != nil {
			return err
		}
		inviterID, err := f.invitations.AcceptOnRegistration(tx, result.InvitationCode, email, invitee.ID)
		if err != nil {
			return err
		}
		invitee.ReferredByAccountID = &inviterID
		return database.UpdateAccount(tx, invitee.ID, map[string]interface{}{"referred_by_account_id": inviterID})
	})
	if err != nil {
		t.Fatalf("failed to register invited account: %v", err)
	}
	return invitee
}

func (f *settlementFixture) subscribe(t *testing.T, accountID uint, quality models.Quality) *SubscribeResult {
	t.Helper()
	result, err := f.subscriptions.Subscribe(context.Background(), accountID, quality, nil)
	if err != nil {
		t.Fatalf("subscribe %s for account %d failed: %v", quality, accountID, err)
	}
	return result
}

func (f *settlementFixture) account(t *testing.T, accountID uint) *models.Account {
	t.Helper()
	account, err := database.GetAccount(f.db, accountID)
	if err != nil {
		t.Fatalf("failed to reload account %d: %v", accountID, err)
	}
	return account
}

func (f *settlementFixture) invitationsOf(t *testing.T, inviterID uint) []models.Invitation {
	t.Helper()
	invitations, err := database.ListInvitationsByInviter(f.db, inviterID)
	if err != nil {
		t.Fatalf("failed to list invitations: %v", err)
	}
	return invitations
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 0.0001 && d > -0.0001
}
