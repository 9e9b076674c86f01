package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
)

// ErrCartEmpty is returned when checking out an empty cart.
var ErrCartEmpty = errors.New("cart is empty")

// ErrNotCancellable is returned when the owning user tries to cancel an
// order that has already shipped or reached a terminal state.
var ErrNotCancellable = errors.New("order can no longer be cancelled")

// ErrNotOrderOwner is returned when a user addresses someone else's order.
var ErrNotOrderOwner = errors.New("order does not belong to this user")

// ErrInvalidOrderStatus is returned for unknown status strings.
var ErrInvalidOrderStatus = errors.New("invalid order status")

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingRate      = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.085)
)

type CheckoutInput struct {
	ShippingAddress models.Address `json:"shipping_address" binding:"required"`
	BillingAddress  models.Address `json:"billing_address" binding:"required"`
	PaymentMethod   string         `json:"payment_method" binding:"required"`
}

type OrderService struct {
	store Store
}

func NewOrderService(store Store) *OrderService {
	return &OrderService{store: store}
}

// Generate unique order number, e.g. 20250908130500-<uuid4>
func generateOrderNumber() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// CreateFromCart turns the user's cart into an order. Validation, order
// insert, conditional stock decrements and cart clearing run in a single
// transaction: either the order exists with inventory decremented and the
// cart empty, or nothing changed.
func (s *OrderService) CreateFromCart(userID string, input CheckoutInput) (*models.Order, error) {
	var created *models.Order
	err := s.store.Transaction(func(tx Store) error {
		cart, err := tx.Carts().GetOrCreate(userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		// Re-validate every line against current catalog state before any
		// mutation.
		tracked := make(map[uint]bool, len(cart.Items))
		for i := range cart.Items {
			item := &cart.Items[i]
			product, err := tx.Products().FindByID(item.ProductID)
			if err != nil {
				if errors.Is(err, models.ErrProductNotFound) {
					return fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductName)
				}
				return err
			}
			if product.Status != models.ProductStatusActive {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
			}
			if !product.InStock(item.Quantity) {
				return fmt.Errorf("%w: %s", models.ErrInsufficientStock, product.Name)
			}
			tracked[item.ProductID] = product.Inventory.TrackQuantity
		}

		subtotal := cart.Subtotal()
		shipping := flatShippingRate
		if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
			shipping = decimal.Zero
		}
		tax := subtotal.Add(shipping).Mul(taxRate).Round(2)
		discount := cart.Discount
		total := subtotal.Add(shipping).Add(tax).Sub(discount)

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			selections := make([]models.OrderItemSelection, 0, len(item.Selections))
			for _, sel := range item.Selections {
				selections = append(selections, models.OrderItemSelection{
					Name:          sel.Name,
					Value:         sel.Value,
					PriceModifier: sel.PriceModifier,
				})
			}
			items = append(items, models.OrderItem{
				ProductID:  item.ProductID,
				Name:       item.ProductName,
				Image:      item.ProductImage,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
				Selections: selections,
			})
		}

		order := &models.Order{
			OrderNumber:     generateOrderNumber(),
			UserID:          userID,
			Items:           items,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Pricing: models.Pricing{
				Subtotal: subtotal,
				Shipping: shipping,
				Tax:      tax,
				Discount: discount,
				Total:    total,
			},
			Payment: models.Payment{
				Method: input.PaymentMethod,
				Status: models.PaymentStatusPending,
			},
			CreatedAt: time.Now(),
		}
		order.SetStatus(models.OrderStatusPending, "Order placed", userID)

		if err := tx.Orders().Create(order); err != nil {
			return err
		}

		for _, item := range cart.Items {
			if !tracked[item.ProductID] {
				continue
			}
			if err := tx.Products().DecrementStock(item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, models.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", models.ErrInsufficientStock, item.ProductName)
				}
				return err
			}
		}

		if err := tx.Carts().ClearItems(cart.CartID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *OrderService) ListForUser(userID string) ([]models.Order, error) {
	return s.store.Orders().ListByUser(userID)
}

func (s *OrderService) ListAll() ([]models.Order, error) {
	return s.store.Orders().ListAll()
}

func (s *OrderService) GetForUser(userID string, orderID uint) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	return s.store.Orders().FindByID(orderID)
}

// SetStatus applies an admin status change with its side effects: moving
// into cancelled/returned after a completed payment restores inventory, and
// delivered stamps the actual delivery time.
func (s *OrderService) SetStatus(orderID uint, status models.OrderStatus, note, actor string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		if err := applyStatus(tx, order, status, note, actor); err != nil {
			return err
		}
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel is the owning user's path: only allowed while the order is still
// pending, confirmed or processing.
func (s *OrderService) Cancel(userID string, orderID uint, note string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrNotOrderOwner
		}
		if !order.CancellableByOwner() {
			return ErrNotCancellable
		}
		if note == "" {
			note = "Cancelled by customer"
		}
		if err := applyStatus(tx, order, models.OrderStatusCancelled, note, userID); err != nil {
			return err
		}
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetTracking stores tracking info; assigning a tracking number while the
// order is processing auto-transitions it to shipped.
func (s *OrderService) SetTracking(orderID uint, carrier, number string, estimated *time.Time, actor string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		order.Tracking.Carrier = carrier
		order.Tracking.Number = number
		order.Tracking.EstimatedDelivery = estimated
		if number != "" && order.Status == models.OrderStatusProcessing {
			order.SetStatus(models.OrderStatusShipped, "Tracking number assigned", actor)
		}
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkAsPaid records a completed payment and confirms the order. Calling it
// again for an already-completed payment is a no-op, which makes duplicate
// provider callbacks safe.
func (s *OrderService) MarkAsPaid(orderID uint, transactionID, method string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		if order.Payment.Status == models.PaymentStatusCompleted {
			updated = order
			return nil
		}
		now := time.Now()
		order.Payment.Status = models.PaymentStatusCompleted
		order.Payment.TransactionID = transactionID
		order.Payment.PaidAt = &now
		if method != "" {
			order.Payment.Method = method
		}
		order.SetStatus(models.OrderStatusConfirmed, "Payment completed", "payment")
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkAsFailed records a failed payment and reverts fulfillment to pending.
func (s *OrderService) MarkAsFailed(orderID uint, note string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		if order.Payment.Status == models.PaymentStatusCompleted {
			// Terminal success already applied; a late failure callback is
			// stale and ignored.
			updated = order
			return nil
		}
		order.Payment.Status = models.PaymentStatusFailed
		order.SetStatus(models.OrderStatusPending, note, "payment")
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkAsRefunded flips a completed payment to refunded.
func (s *OrderService) MarkAsRefunded(orderID uint, actor string) (*models.Order, error) {
	var updated *models.Order
	err := s.store.Transaction(func(tx Store) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		if order.Payment.Status != models.PaymentStatusCompleted {
			return fmt.Errorf("payment is %s, only completed payments can be refunded", order.Payment.Status)
		}
		order.Payment.Status = models.PaymentStatusRefunded
		order.SetStatus(order.Status, "Payment refunded", actor)
		if err := tx.Orders().Save(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyStatus mutates the order for a status change and runs the inventory
// side effect. Restocking happens only on the first move into a restocking
// state, never twice.
func applyStatus(tx Store, order *models.Order, status models.OrderStatus, note, actor string) error {
	prev := order.Status
	restocking := status == models.OrderStatusCancelled || status == models.OrderStatusReturned
	alreadyRestocked := prev == models.OrderStatusCancelled || prev == models.OrderStatusReturned

	if restocking && !alreadyRestocked && order.Payment.Status == models.PaymentStatusCompleted {
		if err := restockItems(tx, order); err != nil {
			return err
		}
	}
	if status == models.OrderStatusDelivered {
		now := time.Now()
		order.Tracking.ActualDelivery = &now
	}
	order.SetStatus(status, note, actor)
	return nil
}

// restockItems returns each line's quantity to tracked inventory. Products
// deleted since the order was placed are skipped.
func restockItems(tx Store, order *models.Order) error {
	for _, item := range order.Items {
		product, err := tx.Products().FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrProductNotFound) {
				continue
			}
			return err
		}
		if !product.Inventory.TrackQuantity {
			continue
		}
		if err := tx.Products().RestoreStock(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
