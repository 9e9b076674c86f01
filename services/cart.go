package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
)

// ErrProductUnavailable is returned when a product exists but is not active.
var ErrProductUnavailable = errors.New("product is not available")

// Cart validation issue kinds.
const (
	IssueProductNotFound   = "product_not_found"
	IssueProductInactive   = "product_inactive"
	IssueOutOfStock        = "out_of_stock"
	IssueInsufficientStock = "insufficient_stock"
	IssuePriceChanged      = "price_changed"
)

// priceDriftTolerance is the allowed gap between the captured line price and
// the current catalog price before validation flags the item.
var priceDriftTolerance = decimal.NewFromFloat(0.01)

type VariantSelection struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type CartIssue struct {
	ItemID    uint   `json:"item_id"`
	ProductID uint   `json:"product_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

type CartService struct {
	store   Store
	coupons CouponResolver
}

func NewCartService(store Store, coupons CouponResolver) *CartService {
	return &CartService{store: store, coupons: coupons}
}

// Get returns the user's cart, creating it lazily on first access.
func (s *CartService) Get(userID string) (*models.Cart, error) {
	return s.store.Carts().GetOrCreate(userID)
}

func (s *CartService) Count(userID string) (int, error) {
	cart, err := s.Get(userID)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems(), nil
}

// AddItem validates the product, captures its price and the selected variant
// modifiers onto a line item, and merges with an existing line when product
// and selection set are identical. Unknown selections are silently dropped.
func (s *CartService) AddItem(userID string, productID uint, quantity int, selections []VariantSelection) (*models.Cart, error) {
	product, err := s.store.Products().FindByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductUnavailable
	}
	if !product.InStock(quantity) {
		return nil, models.ErrInsufficientStock
	}

	resolved := resolveSelections(product, selections)

	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	key := selectionKey(resolved)
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID != productID || item.SelectionKey() != key {
			continue
		}
		item.Quantity += quantity
		item.AddedAt = time.Now()
		if err := s.store.Carts().SaveItem(item); err != nil {
			return nil, err
		}
		return s.Get(userID)
	}

	newItem := models.CartItem{
		CartID:       cart.CartID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		UnitPrice:    product.Price,
		Quantity:     quantity,
		Selections:   resolved,
		AddedAt:      time.Now(),
	}
	if err := s.store.Carts().CreateItem(&newItem); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// UpdateItemQuantity overwrites the quantity; zero or less removes the line.
func (s *CartService) UpdateItemQuantity(userID string, itemID uint, quantity int) (*models.Cart, error) {
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	item := cart.FindItem(itemID)
	if item == nil {
		return nil, models.ErrCartItemNotFound
	}
	if quantity <= 0 {
		if err := s.store.Carts().DeleteItem(cart.CartID, itemID); err != nil {
			return nil, err
		}
		return s.Get(userID)
	}
	item.Quantity = quantity
	if err := s.store.Carts().SaveItem(item); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

func (s *CartService) RemoveItem(userID string, itemID uint) (*models.Cart, error) {
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().DeleteItem(cart.CartID, itemID); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

func (s *CartService) Clear(userID string) error {
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return err
	}
	return s.store.Carts().ClearItems(cart.CartID)
}

// ApplyCoupon resolves the code, enforces its minimum subtotal and stores
// the computed discount on the cart.
func (s *CartService) ApplyCoupon(userID, code string) (*models.Cart, error) {
	rule, ok := s.coupons.Resolve(code)
	if !ok {
		return nil, ErrCouponInvalid
	}
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	subtotal := cart.Subtotal()
	if subtotal.LessThan(rule.MinSubtotal) {
		return nil, fmt.Errorf("%w: requires subtotal of at least %s", ErrCouponMinimum, rule.MinSubtotal.StringFixed(2))
	}
	discount := rule.Discount(subtotal)
	if err := s.store.Carts().SetCoupon(cart.CartID, code, discount); err != nil {
		return nil, err
	}
	cart.CouponCode = code
	cart.Discount = discount
	return cart, nil
}

func (s *CartService) RemoveCoupon(userID string) (*models.Cart, error) {
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().SetCoupon(cart.CartID, "", decimal.Zero); err != nil {
		return nil, err
	}
	cart.CouponCode = ""
	cart.Discount = decimal.Zero
	return cart, nil
}

// Validate cross-checks every line item against the current catalog state
// and returns the issues found. It never mutates the cart.
func (s *CartService) Validate(userID string) ([]CartIssue, error) {
	cart, err := s.store.Carts().GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var issues []CartIssue
	for i := range cart.Items {
		item := &cart.Items[i]
		product, err := s.store.Products().FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrProductNotFound) {
				issues = append(issues, CartIssue{
					ItemID:    item.ID,
					ProductID: item.ProductID,
					Kind:      IssueProductNotFound,
					Message:   fmt.Sprintf("%s is no longer available", item.ProductName),
				})
				continue
			}
			return nil, err
		}
		if product.Status != models.ProductStatusActive {
			issues = append(issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssueProductInactive,
				Message:   fmt.Sprintf("%s is not currently for sale", product.Name),
			})
		}
		if product.Inventory.TrackQuantity && product.Inventory.Quantity <= 0 {
			issues = append(issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssueOutOfStock,
				Message:   fmt.Sprintf("%s is out of stock", product.Name),
			})
		} else if !product.InStock(item.Quantity) {
			issues = append(issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssueInsufficientStock,
				Message:   fmt.Sprintf("only %d of %s left", product.Inventory.Quantity, product.Name),
			})
		}
		if drifted(item, product) {
			issues = append(issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssuePriceChanged,
				Message:   fmt.Sprintf("price of %s has changed", product.Name),
			})
		}
	}
	return issues, nil
}

// drifted compares the captured unit price (incl. captured modifiers) with
// the current product price plus the current modifiers for the same
// selections.
func drifted(item *models.CartItem, product *models.Product) bool {
	current := product.Price
	for _, sel := range item.Selections {
		if option, ok := product.FindOption(sel.Name, sel.Value); ok {
			current = current.Add(option.PriceModifier)
		}
	}
	return item.UnitTotal().Sub(current).Abs().GreaterThan(priceDriftTolerance)
}

// resolveSelections validates each selection by name+value pair against the
// product's option list, capturing the matched modifier. Unknown selections
// are dropped without error.
func resolveSelections(product *models.Product, selections []VariantSelection) []models.CartItemSelection {
	var resolved []models.CartItemSelection
	for _, sel := range selections {
		option, ok := product.FindOption(sel.Name, sel.Value)
		if !ok {
			continue
		}
		resolved = append(resolved, models.CartItemSelection{
			Name:          sel.Name,
			Value:         sel.Value,
			PriceModifier: option.PriceModifier,
		})
	}
	return resolved
}

func selectionKey(selections []models.CartItemSelection) string {
	pairs := make([]string, 0, len(selections))
	for _, s := range selections {
		pairs = append(pairs, s.Name+"="+s.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}
