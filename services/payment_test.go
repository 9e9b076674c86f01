package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a canned PaymentProvider.
type stubProvider struct {
	intentStatus string
	createCalls  int
	refundCalls  int
	refundErr    error
}

func (p *stubProvider) CreateIntent(orderNumber string, amount decimal.Decimal, currency string) (*PaymentIntent, error) {
	p.createCalls++
	return &PaymentIntent{
		ID:           "pi_test_1",
		ClientSecret: "pi_test_1_secret",
		Status:       "requires_confirmation",
	}, nil
}

func (p *stubProvider) RetrieveIntent(intentID string) (*PaymentIntent, error) {
	return &PaymentIntent{ID: intentID, Status: p.intentStatus}, nil
}

func (p *stubProvider) Refund(intentID string, amount decimal.Decimal) (string, error) {
	p.refundCalls++
	return "re_test_1", p.refundErr
}

func paymentFixture(t *testing.T, provider PaymentProvider) (*memStore, *OrderService, *PaymentService, *models.Order) {
	t.Helper()
	store := newMemStore()
	store.products.add(activeProduct(1, "jacket", 120, 5))
	seedCart(t, store, "u1", 1, 1)
	orders := NewOrderService(store)
	payments := NewPaymentService(store, orders, provider)

	order, err := orders.CreateFromCart("u1", checkout())
	require.NoError(t, err)
	return store, orders, payments, order
}

func TestCreateIntentAttachesIntentToOrder(t *testing.T) {
	provider := &stubProvider{}
	_, _, payments, order := paymentFixture(t, provider)

	got, intent, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.createCalls)
	assert.Equal(t, "pi_test_1", intent.ID)
	assert.Equal(t, "pi_test_1", got.Payment.IntentID)
	assert.Equal(t, models.PaymentStatusProcessing, got.Payment.Status)
}

func TestCreateIntentGuards(t *testing.T) {
	provider := &stubProvider{}
	_, orders, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("intruder", order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = orders.MarkAsPaid(order.ID, "txn_1", "stripe")
	require.NoError(t, err)
	_, _, err = payments.CreateIntent("u1", order.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, _, err = payments.CreateIntent("u1", 999)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestConfirmAppliesTerminalOutcome(t *testing.T) {
	provider := &stubProvider{intentStatus: "succeeded"}
	_, _, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	confirmed, err := payments.Confirm("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, confirmed.Payment.Status)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, "pi_test_1", confirmed.Payment.TransactionID)
}

func TestConfirmWithPendingIntentLeavesOrderAlone(t *testing.T) {
	provider := &stubProvider{intentStatus: "requires_action"}
	_, _, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	confirmed, err := payments.Confirm("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusProcessing, confirmed.Payment.Status)
	assert.Equal(t, models.OrderStatusPending, confirmed.Status)
}

func TestConfirmFailureMarksPaymentFailed(t *testing.T) {
	provider := &stubProvider{intentStatus: "canceled"}
	_, _, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	confirmed, err := payments.Confirm("u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, confirmed.Payment.Status)
}

func TestConfirmRequiresIntent(t *testing.T) {
	provider := &stubProvider{}
	_, _, payments, order := paymentFixture(t, provider)

	_, err := payments.Confirm("u1", order.ID)
	assert.ErrorIs(t, err, ErrNoPaymentIntent)
}

func TestRefund(t *testing.T) {
	provider := &stubProvider{intentStatus: "succeeded"}
	_, orders, payments, order := paymentFixture(t, provider)

	// Refunding an unpaid order is rejected before the provider is called.
	_, err := payments.Refund(order.ID, "admin")
	require.Error(t, err)
	assert.Zero(t, provider.refundCalls)

	_, err = orders.MarkAsPaid(order.ID, "txn_1", "stripe")
	require.NoError(t, err)

	refunded, err := payments.Refund(order.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.refundCalls)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Payment.Status)
}

func signWebhook(payload []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%s", timestamp, payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	secret := "whsec_test"

	good := signWebhook(payload, "1693500000", secret)
	assert.NoError(t, VerifyWebhookSignature(payload, good, secret))

	assert.ErrorIs(t, VerifyWebhookSignature([]byte(`tampered`), good, secret), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(payload, good, "other-secret"), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(payload, "t=1693500000", secret), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(payload, "", secret), ErrBadSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(payload, "t=1693500000,v1=nothex", secret), ErrBadSignature)
}

func TestHandleWebhookSucceededEvent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	provider := &stubProvider{}
	store, _, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	payload := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_test_1","status":"succeeded"}}}`)
	sig := signWebhook(payload, "1693500000", "whsec_test")

	require.NoError(t, payments.HandleWebhook(payload, sig))
	got, err := store.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Payment.Status)
	historyLen := len(got.History)

	// Duplicate delivery is acknowledged and changes nothing.
	require.NoError(t, payments.HandleWebhook(payload, sig))
	got, err = store.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, historyLen)
}

func TestHandleWebhookFailedEvent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	provider := &stubProvider{}
	store, _, payments, order := paymentFixture(t, provider)

	_, _, err := payments.CreateIntent("u1", order.ID)
	require.NoError(t, err)

	payload := []byte(`{"type":"payment_intent.payment_failed","data":{"object":{"id":"pi_test_1","status":"canceled"}}}`)
	sig := signWebhook(payload, "1693500000", "whsec_test")

	require.NoError(t, payments.HandleWebhook(payload, sig))
	got, err := store.orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, got.Payment.Status)
}

func TestHandleWebhookIgnoresUnknownEvents(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	provider := &stubProvider{}
	_, _, payments, _ := paymentFixture(t, provider)

	payload := []byte(`{"type":"charge.updated","data":{"object":{"id":"ch_1"}}}`)
	sig := signWebhook(payload, "1693500000", "whsec_test")
	assert.NoError(t, payments.HandleWebhook(payload, sig))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	provider := &stubProvider{}
	_, _, payments, _ := paymentFixture(t, provider)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	sig := signWebhook(payload, "1693500000", "wrong-secret")
	assert.ErrorIs(t, payments.HandleWebhook(payload, sig), ErrBadSignature)
}

func TestHandleWebhookUnknownIntent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	provider := &stubProvider{}
	_, _, payments, _ := paymentFixture(t, provider)

	payload := []byte(`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_unknown","status":"succeeded"}}}`)
	sig := signWebhook(payload, "1693500000", "whsec_test")
	assert.ErrorIs(t, payments.HandleWebhook(payload, sig), models.ErrOrderNotFound)
}
