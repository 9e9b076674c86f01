package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/mercato-dev/mercato-api/controllers/payment"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/services"
)

// SetupPaymentRoutes registers the Stripe endpoints. The webhook stays
// public; Stripe authenticates with the signature header, not a bearer token.
func SetupPaymentRoutes(r *gin.Engine, paymentSvc *services.PaymentService) {
	payment := r.Group("/payment/stripe")
	{
		payment.POST("/webhook", paymentControllers.StripeWebhookHandler(paymentSvc))

		authed := payment.Group("")
		authed.Use(middleware.ValidateToken)
		{
			authed.POST("/create-intent", paymentControllers.CreateIntentHandler(paymentSvc))
			authed.POST("/confirm", paymentControllers.ConfirmPaymentHandler(paymentSvc))
		}
	}
}
