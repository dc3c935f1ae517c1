package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/audit"
	"github.com/gutinsight/gutinsight/internal/session"
)

// Mock checkout pricing, fixed for the funnel.
const (
	PriceCents   = 4700
	Currency     = "usd"
	PriceDisplay = "$47.00"
)

// Demo card numbers recognized by the mock processor.
const (
	CardSuccess      = "4242424242424242"
	CardDeclined     = "4000000000000002"
	CardInsufficient = "4000000000009995"
)

var (
	ErrCardDeclined      = errors.New("card declined")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentMismatch   = errors.New("payment id does not match session")
	ErrNotPaid           = errors.New("session has no confirmed payment")
)

// Config is the publishable client configuration for the checkout page.
type Config struct {
	PublishableKey string `json:"publishable_key"`
	PriceCents     int    `json:"price_cents"`
	PriceDisplay   string `json:"price_display"`
	Currency       string `json:"currency"`
	IsMock         bool   `json:"is_mock"`
}

func DefaultConfig() Config {
	return Config{
		PublishableKey: "pk_test_mock_key_for_demo",
		PriceCents:     PriceCents,
		PriceDisplay:   PriceDisplay,
		Currency:       Currency,
		IsMock:         true,
	}
}

// Intent is a mock payment intent handed to the client before confirmation.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int    `json:"amount_cents"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Status reports whether a session may access its results.
type Status struct {
	HasPaid          bool   `json:"has_paid"`
	PaymentID        string `json:"payment_id,omitempty"`
	CanAccessResults bool   `json:"can_access_results"`
}

// Refund is the receipt of a reversed mock payment.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// Processor runs the mock checkout. No real charge ever happens; the
// processor's job is to flip the session's paid flag through the same
// intent/confirm shape a real integration would use.
type Processor struct {
	sessions session.Store
	audit    *audit.Log
	log      *zap.Logger
}

func NewProcessor(sessions session.Store, auditLog *audit.Log, log *zap.Logger) *Processor {
	return &Processor{sessions: sessions, audit: auditLog, log: log}
}

// CreateIntent opens a new mock intent for the session.
func (p *Processor) CreateIntent(ctx context.Context, sessionID string) (Intent, error) {
	if _, err := p.sessions.Get(ctx, sessionID); err != nil {
		return Intent{}, err
	}
	id := "pi_mock_" + randomHex(16)
	return Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + randomHex(8),
		AmountCents:  PriceCents,
		Currency:     Currency,
		Status:       "requires_confirmation",
	}, nil
}

// Confirm finalizes an intent. The mock always succeeds: checkout outcome
// must be reproducible in demos, so there is no simulated failure rate.
func (p *Processor) Confirm(ctx context.Context, sessionID, intentID string) (Status, error) {
	if err := p.sessions.MarkPaid(ctx, sessionID, intentID); err != nil {
		return Status{}, err
	}
	p.log.Info("payment confirmed",
		zap.String("session_id", sessionID), zap.String("payment_id", intentID))
	if err := p.audit.Append(ctx, audit.TypePaymentConfirmed, sessionID, map[string]any{
		"payment_id": intentID, "amount_cents": PriceCents,
	}); err != nil {
		p.log.Warn("audit append failed", zap.Error(err))
	}
	return Status{HasPaid: true, PaymentID: intentID, CanAccessResults: true}, nil
}

// DemoCharge runs the single-call card flow used by the demo checkout:
// recognized test cards map to fixed outcomes, any other number succeeds.
func (p *Processor) DemoCharge(ctx context.Context, sessionID, cardNumber string) (Status, error) {
	switch cardNumber {
	case CardDeclined:
		p.log.Info("demo card declined", zap.String("session_id", sessionID))
		return Status{}, ErrCardDeclined
	case CardInsufficient:
		p.log.Info("demo card insufficient funds", zap.String("session_id", sessionID))
		return Status{}, ErrInsufficientFunds
	}
	paymentID := "pi_demo_success_" + randomHex(12)
	return p.Confirm(ctx, sessionID, paymentID)
}

// Status returns the session's current payment state.
func (p *Processor) Status(ctx context.Context, sessionID string) (Status, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return Status{}, err
	}
	return Status{HasPaid: s.HasPaid, PaymentID: s.PaymentID, CanAccessResults: s.HasPaid}, nil
}

// Refund reverses a confirmed payment and revokes result access. The
// supplied payment id must match the one on record.
func (p *Processor) Refund(ctx context.Context, sessionID, paymentID string) (Refund, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return Refund{}, err
	}
	if !s.HasPaid || s.PaymentID == "" {
		return Refund{}, ErrNotPaid
	}
	if s.PaymentID != paymentID {
		return Refund{}, fmt.Errorf("%w: have %s", ErrPaymentMismatch, s.PaymentID)
	}
	if err := p.sessions.ClearPayment(ctx, sessionID); err != nil {
		return Refund{}, err
	}
	p.log.Info("payment refunded",
		zap.String("session_id", sessionID), zap.String("payment_id", paymentID))
	if err := p.audit.Append(ctx, audit.TypePaymentRefunded, sessionID, map[string]any{
		"payment_id": paymentID,
	}); err != nil {
		p.log.Warn("audit append failed", zap.Error(err))
	}
	return Refund{ID: "re_mock_" + randomHex(16), PaymentID: paymentID, Status: "succeeded"}, nil
}

// WebhookEvent mirrors the shape of a processor callback.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"session_id"`
		PaymentID string `json:"payment_id"`
	} `json:"data"`
}

// HandleWebhook applies an out-of-band processor notification.
func (p *Processor) HandleWebhook(ctx context.Context, ev WebhookEvent) error {
	switch ev.Type {
	case "payment_intent.succeeded":
		_, err := p.Confirm(ctx, ev.Data.SessionID, ev.Data.PaymentID)
		return err
	case "charge.refunded":
		_, err := p.Refund(ctx, ev.Data.SessionID, ev.Data.PaymentID)
		return err
	default:
		p.log.Debug("ignoring webhook event", zap.String("type", ev.Type))
		return nil
	}
}

func randomHex(n int) string {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}
