package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDraft    ProductStatus = "draft"
)

// Inventory is embedded into Product with the "inventory_" column prefix so
// the stock column is addressable as inventory_quantity in raw updates.
type Inventory struct {
	Quantity          int  `json:"quantity"`
	LowStockThreshold int  `json:"low_stock_threshold"`
	TrackQuantity     bool `json:"track_quantity"`
}

type VariantOption struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ProductVariantID uint            `gorm:"index" json:"-"`
	Value            string          `json:"value"`
	PriceModifier    decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_modifier"`
}

type ProductVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"index" json:"-"`
	Name      string          `json:"name"`
	Options   []VariantOption `gorm:"foreignKey:ProductVariantID;constraint:OnDelete:CASCADE" json:"options"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"uniqueIndex:idx_reviews_product_user" json:"product_id"`
	UserID    string    `gorm:"uniqueIndex:idx_reviews_product_user" json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Name         string           `gorm:"not null" json:"name"`
	Description  string           `json:"description"`
	Brand        string           `json:"brand"`
	SKU          string           `gorm:"unique;not null" json:"sku"`
	Price        decimal.Decimal  `gorm:"type:decimal(10,2)" json:"price"`
	ComparePrice decimal.Decimal  `gorm:"type:decimal(10,2)" json:"compare_price"`
	Image        string           `json:"image"`
	Tags         pq.StringArray   `gorm:"type:text[]" json:"tags"`
	CategoryID   *uint            `json:"category_id"`
	Category     *Category        `json:"category,omitempty"`
	Status       ProductStatus    `gorm:"type:VARCHAR(20);default:'draft'" json:"status"`
	Featured     bool             `json:"featured"`
	Inventory    Inventory        `gorm:"embedded;embeddedPrefix:inventory_" json:"inventory"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	Reviews      []Review         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

// InStock reports whether the requested quantity can be fulfilled. Products
// that do not track quantity are always in stock.
func (p *Product) InStock(quantity int) bool {
	if !p.Inventory.TrackQuantity {
		return true
	}
	return p.Inventory.Quantity >= quantity
}

// LowStock reports whether tracked stock has fallen to the reorder threshold.
func (p *Product) LowStock() bool {
	return p.Inventory.TrackQuantity && p.Inventory.Quantity <= p.Inventory.LowStockThreshold
}

// FindOption looks up a variant option by variant name and option value.
func (p *Product) FindOption(name, value string) (*VariantOption, bool) {
	for i := range p.Variants {
		if p.Variants[i].Name != name {
			continue
		}
		for j := range p.Variants[i].Options {
			if p.Variants[i].Options[j].Value == value {
				return &p.Variants[i].Options[j], true
			}
		}
	}
	return nil, false
}

func (p *Product) RatingAverage() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

func (p *Product) RatingCount() int {
	return len(p.Reviews)
}
