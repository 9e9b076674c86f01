package paymentControllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	orderControllers "github.com/mercato-dev/mercato-api/controllers/order"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
)

type OrderRefInput struct {
	OrderID uint `json:"order_id" binding:"required"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, services.ErrNotOrderOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Order does not belong to this user"})
	case errors.Is(err, services.ErrAlreadyPaid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
	case errors.Is(err, services.ErrNoPaymentIntent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No payment intent for this order"})
	default:
		// Provider errors can carry request detail; log it, never echo it.
		log.Printf("payment provider error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider error"})
	}
}

// POST /payment/stripe/create-intent
func CreateIntentHandler(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input OrderRefInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		order, intent, err := svc.CreateIntent(userID, input.OrderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_number":  order.OrderNumber,
			"intent_id":     intent.ID,
			"client_secret": intent.ClientSecret,
		})
	}
}

// POST /payment/stripe/confirm
func ConfirmPaymentHandler(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input OrderRefInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		order, err := svc.Confirm(userID, input.OrderID)
		if err != nil {
			respondError(c, err)
			return
		}
		orderControllers.BroadcastOrder(order)
		c.JSON(http.StatusOK, order)
	}
}

// POST /payment/stripe/webhook
// Raw body plus Stripe-Signature header; signature is verified before the
// payload is trusted.
func StripeWebhookHandler(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		err = svc.HandleWebhook(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, services.ErrBadSignature) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
				return
			}
			if errors.Is(err, models.ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no order for this payment"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// POST /admin/payment/refund
func RefundHandler(svc *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input OrderRefInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		actor, _ := middleware.UserID(c)

		order, err := svc.Refund(input.OrderID, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
