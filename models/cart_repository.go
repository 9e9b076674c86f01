package models

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrCartItemNotFound is returned when an item id does not belong to the cart.
var ErrCartItemNotFound = errors.New("cart item not found")

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreate fetches the user's cart with items, creating an empty one
// lazily on first access.
func (r *CartRepository) GetOrCreate(userID string) (*Cart, error) {
	var cart Cart
	err := r.db.Preload("Items.Selections").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart = Cart{UserID: userID, Discount: decimal.Zero}
	if err := r.db.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) CreateItem(item *CartItem) error {
	return r.db.Create(item).Error
}

func (r *CartRepository) SaveItem(item *CartItem) error {
	return r.db.Save(item).Error
}

func (r *CartRepository) DeleteItem(cartID, itemID uint) error {
	result := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ClearItems removes every line item and resets the coupon. The cart row
// itself is kept, not deleted.
func (r *CartRepository) ClearItems(cartID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&Cart{}).Where("cart_id = ?", cartID).
			Updates(map[string]interface{}{
				"coupon_code": "",
				"discount":    decimal.Zero,
			}).Error
	})
}

func (r *CartRepository) SetCoupon(cartID uint, code string, discount decimal.Decimal) error {
	return r.db.Model(&Cart{}).Where("cart_id = ?", cartID).
		Updates(map[string]interface{}{
			"coupon_code": code,
			"discount":    discount,
		}).Error
}
