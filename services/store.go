package services

import (
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStore is the slice of the product repository the cart and order
// services need.
type ProductStore interface {
	FindByID(id uint) (*models.Product, error)
	DecrementStock(id uint, qty int) error
	RestoreStock(id uint, qty int) error
}

type CartStore interface {
	GetOrCreate(userID string) (*models.Cart, error)
	CreateItem(item *models.CartItem) error
	SaveItem(item *models.CartItem) error
	DeleteItem(cartID, itemID uint) error
	ClearItems(cartID uint) error
	SetCoupon(cartID uint, code string, discount decimal.Decimal) error
}

type OrderStore interface {
	Create(order *models.Order) error
	FindByID(id uint) (*models.Order, error)
	FindByIntent(intentID string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	ListAll() ([]models.Order, error)
	Save(order *models.Order) error
}

// Store bundles the repositories and lets multi-aggregate operations run
// inside one transaction: the Store passed to fn is bound to that
// transaction.
type Store interface {
	Products() ProductStore
	Carts() CartStore
	Orders() OrderStore
	Transaction(fn func(Store) error) error
}

type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Products() ProductStore {
	return models.NewProductRepository(s.db)
}

func (s *DBStore) Carts() CartStore {
	return models.NewCartRepository(s.db)
}

func (s *DBStore) Orders() OrderStore {
	return models.NewOrderRepository(s.db)
}

func (s *DBStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewDBStore(tx))
	})
}
