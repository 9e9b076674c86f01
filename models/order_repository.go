package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(order *Order) error {
	return r.db.Create(order).Error
}

func (r *OrderRepository) FindByID(id uint) (*Order, error) {
	var order Order
	if err := r.db.
		Preload("Items.Selections").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIntent correlates a payment-provider callback with its order.
func (r *OrderRepository) FindByIntent(intentID string) (*Order, error) {
	var order Order
	if err := r.db.
		Preload("Items.Selections").
		Preload("History").
		Where("payment_intent_id = ?", intentID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListByUser(userID string) ([]Order, error) {
	var orders []Order
	if err := r.db.
		Preload("Items.Selections").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) ListAll() ([]Order, error) {
	var orders []Order
	if err := r.db.
		Preload("Items.Selections").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists mutated order fields and inserts any history entries that
// were appended in memory (zero primary key).
func (r *OrderRepository) Save(order *Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "History").Save(order).Error; err != nil {
			return err
		}
		for i := range order.History {
			if order.History[i].ID != 0 {
				continue
			}
			order.History[i].OrderID = order.ID
			if err := tx.Create(&order.History[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
