package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/mercato-dev/mercato-api/controllers/order"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/services"
)

// SetupOrderRoutes registers the JWT protected order endpoints. Admin order
// management lives under /admin.
func SetupOrderRoutes(r *gin.Engine, orderSvc *services.OrderService) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		orders.POST("", orderControllers.PlaceOrderHandler(orderSvc))
		orders.GET("", orderControllers.GetUserOrdersHandler(orderSvc))
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(orderSvc))
		orders.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(orderSvc))
	}
}
