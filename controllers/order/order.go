package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
)

// -------- Request Structs --------

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type TrackingInput struct {
	Carrier           string     `json:"carrier"`
	Number            string     `json:"number" binding:"required"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

type CancelInput struct {
	Note string `json:"note"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, services.ErrNotOrderOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Order does not belong to this user"})
	case errors.Is(err, services.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotCancellable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order can no longer be cancelled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return uint(id), true
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input services.CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		order, err := svc.CreateFromCart(userID, input)
		if err != nil {
			respondError(c, err)
			return
		}
		BroadcastOrder(order)
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func GetUserOrdersHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orders, err := svc.ListForUser(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID
func GetOrderByIDHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := svc.GetForUser(userID, orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:orderID/cancel
func CancelOrderHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		var input CancelInput
		_ = c.ShouldBindJSON(&input) // note is optional

		order, err := svc.Cancel(userID, orderID, input.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		BroadcastOrder(order)
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAll()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders/:orderID
func GetAdminOrderHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		order, err := svc.Get(orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		var input UpdateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		status, valid := models.ValidOrderStatus(input.Status)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}
		actor, _ := middleware.UserID(c)

		order, err := svc.SetStatus(orderID, status, input.Note, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		BroadcastOrder(order)
		c.JSON(http.StatusOK, order)
	}
}

// PUT /admin/orders/:orderID/tracking
func UpdateTrackingHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		var input TrackingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		actor, _ := middleware.UserID(c)

		order, err := svc.SetTracking(orderID, input.Carrier, input.Number, input.EstimatedDelivery, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		BroadcastOrder(order)
		c.JSON(http.StatusOK, order)
	}
}
