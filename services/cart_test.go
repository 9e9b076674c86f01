package services

import (
	"testing"

	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProduct(id uint, name string, price float64, stock int) models.Product {
	return models.Product{
		ID:     id,
		Name:   name,
		SKU:    name + "-sku",
		Price:  decimal.NewFromFloat(price),
		Status: models.ProductStatusActive,
		Inventory: models.Inventory{
			Quantity:      stock,
			TrackQuantity: true,
		},
	}
}

func newCartService(store *memStore) *CartService {
	return NewCartService(store, DefaultCoupons())
}

func TestAddItemCapturesPrice(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 25, 10))
	svc := newCartService(store)

	cart, err := svc.AddItem("u1", 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	item := cart.Items[0]
	assert.Equal(t, "mug", item.ProductName)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, cart.Subtotal().Equal(decimal.NewFromInt(50)))

	// Later price edits must not touch the captured price.
	store.products.products[1].Price = decimal.NewFromInt(99)
	cart, err = svc.Get("u1")
	require.NoError(t, err)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.NewFromInt(25)))
}

func TestAddItemMergesIdenticalSelections(t *testing.T) {
	store := newMemStore()
	p := activeProduct(1, "shirt", 20, 50)
	p.Variants = []models.ProductVariant{{
		Name: "Size",
		Options: []models.VariantOption{
			{Value: "M"},
			{Value: "L", PriceModifier: decimal.NewFromInt(5)},
		},
	}}
	store.products.add(p)
	svc := newCartService(store)

	_, err := svc.AddItem("u1", 1, 1, []VariantSelection{{Name: "Size", Value: "L"}})
	require.NoError(t, err)
	cart, err := svc.AddItem("u1", 1, 2, []VariantSelection{{Name: "Size", Value: "L"}})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].UnitTotal().Equal(decimal.NewFromInt(25)))

	// A different selection set starts a new line.
	cart, err = svc.AddItem("u1", 1, 1, []VariantSelection{{Name: "Size", Value: "M"}})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemDropsUnknownSelections(t *testing.T) {
	store := newMemStore()
	p := activeProduct(1, "shirt", 20, 50)
	p.Variants = []models.ProductVariant{{
		Name:    "Size",
		Options: []models.VariantOption{{Value: "L", PriceModifier: decimal.NewFromInt(5)}},
	}}
	store.products.add(p)
	svc := newCartService(store)

	cart, err := svc.AddItem("u1", 1, 1, []VariantSelection{
		{Name: "Size", Value: "L"},
		{Name: "Color", Value: "Red"},
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Len(t, cart.Items[0].Selections, 1)
	assert.Equal(t, "Size", cart.Items[0].Selections[0].Name)
	assert.True(t, cart.Items[0].UnitTotal().Equal(decimal.NewFromInt(25)))
}

func TestAddItemRejectsUnavailableProducts(t *testing.T) {
	store := newMemStore()
	draft := activeProduct(1, "hidden", 10, 10)
	draft.Status = models.ProductStatusDraft
	store.products.add(draft)
	store.products.add(activeProduct(2, "scarce", 10, 1))
	svc := newCartService(store)

	_, err := svc.AddItem("u1", 1, 1, nil)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem("u1", 2, 5, nil)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	_, err = svc.AddItem("u1", 99, 1, nil)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestUpdateItemQuantity(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 25, 10))
	svc := newCartService(store)

	cart, err := svc.AddItem("u1", 1, 2, nil)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItemQuantity("u1", itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	// Zero removes the line.
	cart, err = svc.UpdateItemQuantity("u1", itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.UpdateItemQuantity("u1", itemID, 1)
	assert.ErrorIs(t, err, models.ErrCartItemNotFound)
}

func TestApplyCoupon(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 30, 10))
	svc := newCartService(store)

	_, err := svc.AddItem("u1", 1, 2, nil)
	require.NoError(t, err)

	cart, err := svc.ApplyCoupon("u1", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", cart.CouponCode)
	assert.True(t, cart.Discount.Equal(decimal.NewFromInt(6)), "10%% of 60 is 6, got %s", cart.Discount)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(54)))

	cart, err = svc.RemoveCoupon("u1")
	require.NoError(t, err)
	assert.Empty(t, cart.CouponCode)
	assert.True(t, cart.Discount.IsZero())
}

func TestApplyCouponBelowMinimum(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 30, 10))
	svc := newCartService(store)

	_, err := svc.AddItem("u1", 1, 1, nil)
	require.NoError(t, err)

	_, err = svc.ApplyCoupon("u1", "SAVE10")
	assert.ErrorIs(t, err, ErrCouponMinimum)

	_, err = svc.ApplyCoupon("u1", "NOPE")
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestCouponDiscountCappedAtSubtotal(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 10, 10))
	coupons := StaticCoupons{
		"BIG": {Kind: CouponKindFixed, Value: decimal.NewFromInt(100)},
	}
	svc := NewCartService(store, coupons)

	_, err := svc.AddItem("u1", 1, 2, nil)
	require.NoError(t, err)

	cart, err := svc.ApplyCoupon("u1", "BIG")
	require.NoError(t, err)
	assert.True(t, cart.Discount.Equal(decimal.NewFromInt(20)))
	assert.True(t, cart.Total().IsZero())
}

func TestValidateReportsIssuesWithoutMutating(t *testing.T) {
	store := newMemStore()

	inactive := activeProduct(2, "retired", 10, 10)
	inactive.Status = models.ProductStatusInactive
	store.products.add(inactive)
	store.products.add(activeProduct(3, "gone", 10, 0))
	store.products.add(activeProduct(4, "scarce", 10, 1))
	repriced := activeProduct(5, "repriced", 12, 10)
	store.products.add(repriced)

	svc := newCartService(store)
	cart, err := svc.Get("u1")
	require.NoError(t, err)
	cart.Items = []models.CartItem{
		{ID: 1, CartID: cart.CartID, ProductID: 1, ProductName: "vanished", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ID: 2, CartID: cart.CartID, ProductID: 2, UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ID: 3, CartID: cart.CartID, ProductID: 3, UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ID: 4, CartID: cart.CartID, ProductID: 4, UnitPrice: decimal.NewFromInt(10), Quantity: 3},
		{ID: 5, CartID: cart.CartID, ProductID: 5, UnitPrice: decimal.NewFromInt(10), Quantity: 1},
	}

	issues, err := svc.Validate("u1")
	require.NoError(t, err)

	kinds := map[uint]string{}
	for _, issue := range issues {
		kinds[issue.ItemID] = issue.Kind
	}
	assert.Equal(t, IssueProductNotFound, kinds[1])
	assert.Equal(t, IssueProductInactive, kinds[2])
	assert.Equal(t, IssueOutOfStock, kinds[3])
	assert.Equal(t, IssueInsufficientStock, kinds[4])
	assert.Equal(t, IssuePriceChanged, kinds[5])

	// Validation never touches the cart.
	cart, err = svc.Get("u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 5)
}

func TestCount(t *testing.T) {
	store := newMemStore()
	store.products.add(activeProduct(1, "mug", 25, 10))
	svc := newCartService(store)

	n, err := svc.Count("u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.AddItem("u1", 1, 3, nil)
	require.NoError(t, err)

	n, err = svc.Count("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
