package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
)

// ErrBadSignature is returned when a webhook payload fails signature
// verification.
var ErrBadSignature = errors.New("invalid webhook signature")

// ErrAlreadyPaid is returned when creating a payment intent for an order
// whose payment already completed.
var ErrAlreadyPaid = errors.New("order is already paid")

// ErrNoPaymentIntent is returned when confirming an order that has no
// payment intent yet.
var ErrNoPaymentIntent = errors.New("no payment intent for this order")

// PaymentIntent is the provider-side payment object.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// PaymentProvider abstracts the payment gateway so the placeholder or a real
// implementation can be swapped without touching order logic. Amounts are
// converted to minor currency units by the implementation.
type PaymentProvider interface {
	CreateIntent(orderNumber string, amount decimal.Decimal, currency string) (*PaymentIntent, error)
	RetrieveIntent(intentID string) (*PaymentIntent, error)
	Refund(intentID string, amount decimal.Decimal) (string, error)
}

// PaymentService reconciles provider outcomes into order payment state. The
// synchronous confirm path and the asynchronous webhook path converge on the
// same OrderService methods, which are idempotent for terminal outcomes.
type PaymentService struct {
	store    Store
	orders   *OrderService
	provider PaymentProvider
}

func NewPaymentService(store Store, orders *OrderService, provider PaymentProvider) *PaymentService {
	return &PaymentService{store: store, orders: orders, provider: provider}
}

// CreateIntent sizes a provider payment request to the order total and tags
// it with the order number for later correlation.
func (s *PaymentService) CreateIntent(userID string, orderID uint) (*models.Order, *PaymentIntent, error) {
	order, err := s.store.Orders().FindByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, ErrNotOrderOwner
	}
	if order.Payment.Status == models.PaymentStatusCompleted {
		return nil, nil, ErrAlreadyPaid
	}

	intent, err := s.provider.CreateIntent(order.OrderNumber, order.Pricing.Total, "usd")
	if err != nil {
		return nil, nil, err
	}

	order.Payment.IntentID = intent.ID
	order.Payment.Status = models.PaymentStatusProcessing
	if err := s.store.Orders().Save(order); err != nil {
		return nil, nil, err
	}
	return order, intent, nil
}

// Confirm polls the provider for the intent's status and applies the
// terminal outcome immediately.
func (s *PaymentService) Confirm(userID string, orderID uint) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Payment.IntentID == "" {
		return nil, ErrNoPaymentIntent
	}

	intent, err := s.provider.RetrieveIntent(order.Payment.IntentID)
	if err != nil {
		return nil, err
	}
	return s.applyIntentStatus(order.ID, intent)
}

// Refund issues a provider refund for the order total (admin action).
func (s *PaymentService) Refund(orderID uint, actor string) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Payment.Status != models.PaymentStatusCompleted {
		return nil, fmt.Errorf("payment is %s, only completed payments can be refunded", order.Payment.Status)
	}
	if _, err := s.provider.Refund(order.Payment.IntentID, order.Pricing.Total); err != nil {
		return nil, err
	}
	return s.orders.MarkAsRefunded(order.ID, actor)
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies the provider signature, then applies the event.
// Unknown event types are acknowledged and ignored. Duplicate deliveries are
// safe: MarkAsPaid is a no-op for already-completed payments.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return errors.New("webhook secret not configured")
	}
	if err := VerifyWebhookSignature(payload, signature, secret); err != nil {
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		order, err := s.store.Orders().FindByIntent(event.Data.Object.ID)
		if err != nil {
			return err
		}
		_, err = s.orders.MarkAsPaid(order.ID, event.Data.Object.ID, "stripe")
		return err
	case "payment_intent.payment_failed":
		order, err := s.store.Orders().FindByIntent(event.Data.Object.ID)
		if err != nil {
			return err
		}
		_, err = s.orders.MarkAsFailed(order.ID, "Payment failed at provider")
		return err
	default:
		// Not an event we act on.
		return nil
	}
}

func (s *PaymentService) applyIntentStatus(orderID uint, intent *PaymentIntent) (*models.Order, error) {
	switch intent.Status {
	case "succeeded":
		return s.orders.MarkAsPaid(orderID, intent.ID, "stripe")
	case "processing", "requires_action", "requires_confirmation":
		return s.store.Orders().FindByID(orderID)
	default:
		return s.orders.MarkAsFailed(orderID, "Payment "+intent.Status)
	}
}

// VerifyWebhookSignature checks a "t=<ts>,v1=<hex>" header: v1 must be the
// HMAC-SHA256 of "<ts>.<payload>" under the shared secret.
func VerifyWebhookSignature(payload []byte, header, secret string) error {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, got) {
		return ErrBadSignature
	}
	return nil
}
