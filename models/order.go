package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting confirmation
	OrderStatusConfirmed  OrderStatus = "confirmed"  // Payment completed, confirmed
	OrderStatusProcessing OrderStatus = "processing" // Being packed
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before delivery
	OrderStatusReturned   OrderStatus = "returned"   // Customer returned the item

	// Payment statuses
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Address model embedded in User and Order
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

type Pricing struct {
	Subtotal decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	Shipping decimal.Decimal `gorm:"type:decimal(10,2)" json:"shipping"`
	Tax      decimal.Decimal `gorm:"type:decimal(10,2)" json:"tax"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
}

type Payment struct {
	Method        string        `json:"method"` // e.g. "stripe", "cod"
	Status        PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	TransactionID string        `json:"transaction_id"`
	IntentID      string        `gorm:"index" json:"intent_id"`
	PaidAt        *time.Time    `json:"paid_at"`
}

type Tracking struct {
	Carrier           string     `json:"carrier"`
	Number            string     `json:"number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	ActualDelivery    *time.Time `json:"actual_delivery"`
}

// Order is an immutable-once-created snapshot of line items, addresses and
// pricing. Only status, payment and tracking mutate afterwards; every status
// change goes through SetStatus so the history stays append-only.
type Order struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	OrderNumber     string             `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          string             `gorm:"index;not null" json:"user_id"`
	Items           []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress Address            `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address            `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	Pricing         Pricing            `gorm:"embedded;embeddedPrefix:pricing_" json:"pricing"`
	Payment         Payment            `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Status          OrderStatus        `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Tracking        Tracking           `gorm:"embedded;embeddedPrefix:tracking_" json:"tracking"`
	History         []OrderStatusEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"history"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID         uint                 `gorm:"primaryKey" json:"id"`
	OrderID    uint                 `gorm:"index" json:"-"`
	ProductID  uint                 `json:"product_id"`
	Name       string               `json:"name"`
	Image      string               `json:"image"`
	UnitPrice  decimal.Decimal      `gorm:"type:decimal(10,2)" json:"unit_price"`
	Quantity   int                  `json:"quantity"`
	Selections []OrderItemSelection `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"selections"`
}

type OrderItemSelection struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	OrderItemID   uint            `gorm:"index" json:"-"`
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_modifier"`
}

type OrderStatusEvent struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	OrderID   uint        `gorm:"index" json:"-"`
	Status    OrderStatus `gorm:"type:VARCHAR(20)" json:"status"`
	Note      string      `json:"note"`
	Actor     string      `json:"actor"`
	CreatedAt time.Time   `json:"created_at"`
}

// SetStatus overwrites the current status and appends a history entry.
func (o *Order) SetStatus(status OrderStatus, note, actor string) {
	o.Status = status
	o.History = append(o.History, OrderStatusEvent{
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		Actor:     actor,
		CreatedAt: time.Now(),
	})
}

// CancellableByOwner reports whether the owning user may still cancel.
func (o *Order) CancellableByOwner() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

// ValidOrderStatus maps a raw string onto an OrderStatus.
func ValidOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusReturned:
		return OrderStatus(s), true
	}
	return "", false
}
