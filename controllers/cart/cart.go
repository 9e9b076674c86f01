package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
)

type AddItemInput struct {
	ProductID  uint                        `json:"product_id" binding:"required"`
	Quantity   int                         `json:"quantity" binding:"required,min=1"`
	Selections []services.VariantSelection `json:"selections"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity"`
}

type CouponInput struct {
	Code string `json:"code" binding:"required"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
	case errors.Is(err, services.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is not available"})
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock for the requested quantity"})
	case errors.Is(err, models.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	case errors.Is(err, services.ErrCouponInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon code"})
	case errors.Is(err, services.ErrCouponMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// cartResponse attaches the derived totals, which are never stored.
func cartResponse(cart *models.Cart) gin.H {
	return gin.H{
		"cart":        cart,
		"total_items": cart.TotalItems(),
		"subtotal":    cart.Subtotal(),
		"total":       cart.Total(),
	}
}

func itemIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return 0, false
	}
	return uint(id), true
}

// GET /cart
func GetCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := svc.Get(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// GET /cart/count
func GetCartCount(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		count, err := svc.Count(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// POST /cart/items
func AddCartItem(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := svc.AddItem(userID, input.ProductID, input.Quantity, input.Selections)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cartResponse(cart))
	}
}

// PUT /cart/items/:itemId
func UpdateCartItem(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := svc.UpdateItemQuantity(userID, itemID, input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart/items/:itemId
func DeleteCartItem(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, ok := itemIDParam(c)
		if !ok {
			return
		}
		cart, err := svc.RemoveItem(userID, itemID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart
func ClearCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := svc.Clear(userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// POST /cart/coupon
func ApplyCoupon(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := svc.ApplyCoupon(userID, input.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart/coupon
func RemoveCoupon(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := svc.RemoveCoupon(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// POST /cart/validate
func ValidateCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		issues, err := svc.Validate(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid":  len(issues) == 0,
			"issues": issues,
		})
	}
}

// GET /admin/user-cart/:user_id
func GetAdminUserCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		cart, err := svc.Get(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}
