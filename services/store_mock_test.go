package services

import (
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store used by the service tests. Transaction
// simply runs the callback against the same store; the tests that exercise
// transactional paths only assert on runs that either fail before mutating
// or succeed completely.
type memStore struct {
	products *memProducts
	carts    *memCarts
	orders   *memOrders
}

func newMemStore() *memStore {
	return &memStore{
		products: &memProducts{products: map[uint]*models.Product{}},
		carts:    &memCarts{carts: map[string]*models.Cart{}},
		orders:   &memOrders{orders: map[uint]*models.Order{}},
	}
}

func (s *memStore) Products() ProductStore { return s.products }
func (s *memStore) Carts() CartStore       { return s.carts }
func (s *memStore) Orders() OrderStore     { return s.orders }

func (s *memStore) Transaction(fn func(Store) error) error {
	return fn(s)
}

type memProducts struct {
	products map[uint]*models.Product
}

func (m *memProducts) add(p models.Product) *models.Product {
	stored := p
	m.products[p.ID] = &stored
	return &stored
}

func (m *memProducts) FindByID(id uint) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return p, nil
}

func (m *memProducts) DecrementStock(id uint, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	if p.Inventory.Quantity < qty {
		return models.ErrInsufficientStock
	}
	p.Inventory.Quantity -= qty
	return nil
}

func (m *memProducts) RestoreStock(id uint, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.Inventory.Quantity += qty
	return nil
}

type memCarts struct {
	carts      map[string]*models.Cart
	nextCartID uint
	nextItemID uint
}

func (m *memCarts) GetOrCreate(userID string) (*models.Cart, error) {
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	m.nextCartID++
	cart := &models.Cart{CartID: m.nextCartID, UserID: userID}
	m.carts[userID] = cart
	return cart, nil
}

func (m *memCarts) byID(cartID uint) *models.Cart {
	for _, cart := range m.carts {
		if cart.CartID == cartID {
			return cart
		}
	}
	return nil
}

func (m *memCarts) CreateItem(item *models.CartItem) error {
	cart := m.byID(item.CartID)
	if cart == nil {
		return models.ErrCartItemNotFound
	}
	m.nextItemID++
	item.ID = m.nextItemID
	cart.Items = append(cart.Items, *item)
	return nil
}

func (m *memCarts) SaveItem(item *models.CartItem) error {
	cart := m.byID(item.CartID)
	if cart == nil {
		return models.ErrCartItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i] = *item
			return nil
		}
	}
	return models.ErrCartItemNotFound
}

func (m *memCarts) DeleteItem(cartID, itemID uint) error {
	cart := m.byID(cartID)
	if cart == nil {
		return models.ErrCartItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return models.ErrCartItemNotFound
}

func (m *memCarts) ClearItems(cartID uint) error {
	cart := m.byID(cartID)
	if cart == nil {
		return models.ErrCartItemNotFound
	}
	cart.Items = nil
	cart.CouponCode = ""
	cart.Discount = decimal.Zero
	return nil
}

func (m *memCarts) SetCoupon(cartID uint, code string, discount decimal.Decimal) error {
	cart := m.byID(cartID)
	if cart == nil {
		return models.ErrCartItemNotFound
	}
	cart.CouponCode = code
	cart.Discount = discount
	return nil
}

type memOrders struct {
	orders map[uint]*models.Order
	nextID uint
}

func (m *memOrders) Create(order *models.Order) error {
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order
	return nil
}

func (m *memOrders) FindByID(id uint) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (m *memOrders) FindByIntent(intentID string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.Payment.IntentID == intentID {
			return order, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *memOrders) ListByUser(userID string) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrders) ListAll() ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (m *memOrders) Save(order *models.Order) error {
	m.orders[order.ID] = order
	return nil
}
