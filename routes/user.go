package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/mercato-dev/mercato-api/controllers/cart"
	productcontroller "github.com/mercato-dev/mercato-api/controllers/product"
	userControllers "github.com/mercato-dev/mercato-api/controllers/user"
	"github.com/mercato-dev/mercato-api/middleware"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
)

// SetupUserRoutes registers the JWT protected profile, cart, and review
// endpoints.
func SetupUserRoutes(r *gin.Engine, products *models.ProductRepository, users *models.UserRepository, cartSvc *services.CartService) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("", userControllers.GetUser(users))
		userGroup.PUT("", userControllers.UpdateUser(users))

		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(cartSvc))
			cartGroup.GET("/count", cartControllers.GetCartCount(cartSvc))
			cartGroup.POST("/validate", cartControllers.ValidateCart(cartSvc))
			cartGroup.POST("/items", cartControllers.AddCartItem(cartSvc))
			cartGroup.PUT("/items/:itemId", cartControllers.UpdateCartItem(cartSvc))
			cartGroup.DELETE("/items/:itemId", cartControllers.DeleteCartItem(cartSvc))
			cartGroup.DELETE("", cartControllers.ClearCart(cartSvc))
			cartGroup.POST("/coupon", cartControllers.ApplyCoupon(cartSvc))
			cartGroup.DELETE("/coupon", cartControllers.RemoveCoupon(cartSvc))
		}
	}

	reviewGroup := r.Group("/products")
	reviewGroup.Use(middleware.ValidateToken)
	{
		reviewGroup.POST("/:id/reviews", productcontroller.AddReview(products))
	}
}
