package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/mercato-dev/mercato-api/controllers/cart"
	categoryControllers "github.com/mercato-dev/mercato-api/controllers/category"
	orderControllers "github.com/mercato-dev/mercato-api/controllers/order"
	paymentControllers "github.com/mercato-dev/mercato-api/controllers/payment"
	productcontroller "github.com/mercato-dev/mercato-api/controllers/product"
	userControllers "github.com/mercato-dev/mercato-api/controllers/user"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
)

// SetupAdminRoutes registers all "/admin/*" endpoints behind the API key or
// admin bearer token check.
func SetupAdminRoutes(
	r *gin.Engine,
	products *models.ProductRepository,
	categories *models.CategoryRepository,
	users *models.UserRepository,
	cartSvc *services.CartService,
	orderSvc *services.OrderService,
	paymentSvc *services.PaymentService,
) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(users))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetAdminUserCart(cartSvc))

		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetProducts(products, categories))
			productAdmin.POST("", productcontroller.CreateProduct(products))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(products))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(products))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(products))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(products))
		}

		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", categoryControllers.CreateCategory(categories))
			categoryAdmin.PUT("/reorder", categoryControllers.ReorderCategories(categories))
			categoryAdmin.PUT("/:id", categoryControllers.UpdateCategory(categories))
			categoryAdmin.DELETE("/:id", categoryControllers.DeleteCategory(categories))
		}

		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(orderSvc))
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler)
			orderAdmin.GET("/:orderID", orderControllers.GetAdminOrderHandler(orderSvc))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(orderSvc))
			orderAdmin.PUT("/:orderID/tracking", orderControllers.UpdateTrackingHandler(orderSvc))
		}

		adminGroup.POST("/payment/refund", paymentControllers.RefundHandler(paymentSvc))
	}
}
