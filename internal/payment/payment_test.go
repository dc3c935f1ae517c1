package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/session"
)

func newTestProcessor(t *testing.T) (*Processor, session.Store, session.Session) {
	t.Helper()
	store := session.NewInMemoryStore()
	s, err := store.Create(context.Background(), "Test Visitor", "visitor@example.com")
	require.NoError(t, err)
	return NewProcessor(store, nil, zap.NewNop()), store, s
}

func TestCreateIntent(t *testing.T) {
	p, _, s := newTestProcessor(t)

	intent, err := p.CreateIntent(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "pi_mock_"))
	assert.Equal(t, PriceCents, intent.AmountCents)
	assert.Equal(t, "requires_confirmation", intent.Status)

	_, err = p.CreateIntent(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestConfirmMarksSessionPaid(t *testing.T) {
	p, store, s := newTestProcessor(t)

	intent, err := p.CreateIntent(context.Background(), s.ID)
	require.NoError(t, err)
	status, err := p.Confirm(context.Background(), s.ID, intent.ID)
	require.NoError(t, err)
	assert.True(t, status.HasPaid)
	assert.True(t, status.CanAccessResults)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPaid)
	assert.Equal(t, intent.ID, got.PaymentID)
}

func TestDemoChargeOutcomes(t *testing.T) {
	p, _, s := newTestProcessor(t)

	_, err := p.DemoCharge(context.Background(), s.ID, CardDeclined)
	assert.ErrorIs(t, err, ErrCardDeclined)
	_, err = p.DemoCharge(context.Background(), s.ID, CardInsufficient)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Failed charges must not flip the paid flag.
	status, err := p.Status(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, status.HasPaid)

	status, err = p.DemoCharge(context.Background(), s.ID, CardSuccess)
	require.NoError(t, err)
	assert.True(t, status.HasPaid)
	assert.True(t, strings.HasPrefix(status.PaymentID, "pi_demo_success_"))
}

func TestRefundFlow(t *testing.T) {
	p, store, s := newTestProcessor(t)

	_, err := p.Refund(context.Background(), s.ID, "pi_anything")
	assert.ErrorIs(t, err, ErrNotPaid)

	status, err := p.DemoCharge(context.Background(), s.ID, CardSuccess)
	require.NoError(t, err)

	_, err = p.Refund(context.Background(), s.ID, "pi_wrong")
	assert.ErrorIs(t, err, ErrPaymentMismatch)

	refund, err := p.Refund(context.Background(), s.ID, status.PaymentID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(refund.ID, "re_mock_"))
	assert.Equal(t, "succeeded", refund.Status)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPaid)
	assert.Empty(t, got.PaymentID)
}

func TestWebhook(t *testing.T) {
	p, store, s := newTestProcessor(t)

	var ev WebhookEvent
	ev.Type = "payment_intent.succeeded"
	ev.Data.SessionID = s.ID
	ev.Data.PaymentID = "pi_hook_1"
	require.NoError(t, p.HandleWebhook(context.Background(), ev))

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPaid)

	// Unknown event types are ignored.
	ev.Type = "customer.created"
	assert.NoError(t, p.HandleWebhook(context.Background(), ev))
}
