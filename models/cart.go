package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID     uint            `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"uniqueIndex" json:"user_id"` // Enforces ONE cart per user
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CouponCode string          `json:"coupon_code"`
	Discount   decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartItem captures the product name, image and unit price at add time.
// Selections carry the variant price modifiers as they were when the item
// was added; they are never re-read from the product.
type CartItem struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	CartID       uint                `gorm:"index" json:"-"`
	ProductID    uint                `json:"product_id"`
	ProductName  string              `json:"product_name"`
	ProductImage string              `json:"product_image"`
	UnitPrice    decimal.Decimal     `gorm:"type:decimal(10,2)" json:"unit_price"`
	Quantity     int                 `json:"quantity"`
	Selections   []CartItemSelection `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"selections"`
	AddedAt      time.Time           `json:"added_at"`
}

type CartItemSelection struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	ItemID        uint            `gorm:"index" json:"-"`
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_modifier"`
}

// UnitTotal is the captured unit price plus all captured variant modifiers.
func (i *CartItem) UnitTotal() decimal.Decimal {
	total := i.UnitPrice
	for _, s := range i.Selections {
		total = total.Add(s.PriceModifier)
	}
	return total
}

func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitTotal().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SelectionKey is a canonical encoding of the selection set, used to decide
// whether two line items are mergeable.
func (i *CartItem) SelectionKey() string {
	pairs := make([]string, 0, len(i.Selections))
	for _, s := range i.Selections {
		pairs = append(pairs, s.Name+"="+s.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// Total is subtotal minus discount, floored at zero. Derived, never stored.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c *Cart) FindItem(itemID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
