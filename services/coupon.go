package services

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrCouponInvalid is returned for unknown coupon codes.
var ErrCouponInvalid = errors.New("invalid coupon code")

// ErrCouponMinimum is returned when the cart subtotal is below the coupon's
// minimum.
var ErrCouponMinimum = errors.New("cart subtotal below coupon minimum")

const (
	CouponKindPercentage = "percentage"
	CouponKindFixed      = "fixed"
)

type CouponRule struct {
	Kind        string
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
}

// Discount computes the discount for a subtotal, capped at the subtotal.
func (r CouponRule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch r.Kind {
	case CouponKindPercentage:
		discount = subtotal.Mul(r.Value).Div(decimal.NewFromInt(100)).Round(2)
	default:
		discount = r.Value
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// CouponResolver turns a coupon code into its rule. Injected so a real
// coupon backend can replace the static table without touching cart logic.
type CouponResolver interface {
	Resolve(code string) (CouponRule, bool)
}

// StaticCoupons is a fixed code -> rule lookup table.
type StaticCoupons map[string]CouponRule

func (s StaticCoupons) Resolve(code string) (CouponRule, bool) {
	rule, ok := s[code]
	return rule, ok
}

// DefaultCoupons returns the built-in demo coupon table.
func DefaultCoupons() StaticCoupons {
	return StaticCoupons{
		"SAVE10": {
			Kind:        CouponKindPercentage,
			Value:       decimal.NewFromInt(10),
			MinSubtotal: decimal.NewFromInt(50),
		},
		"SAVE20": {
			Kind:        CouponKindPercentage,
			Value:       decimal.NewFromInt(20),
			MinSubtotal: decimal.NewFromInt(150),
		},
		"FLAT15": {
			Kind:        CouponKindFixed,
			Value:       decimal.NewFromInt(15),
			MinSubtotal: decimal.NewFromInt(75),
		},
	}
}
