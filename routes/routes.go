package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/mercato-dev/mercato-api/services"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry point that wires every route group against
// the shared repositories and services.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	products := models.NewProductRepository(db)
	categories := models.NewCategoryRepository(db)
	users := models.NewUserRepository(db)

	store := services.NewDBStore(db)
	cartSvc := services.NewCartService(store, services.DefaultCoupons())
	orderSvc := services.NewOrderService(store)
	paymentSvc := services.NewPaymentService(store, orderSvc, services.NewStripeProvider())

	// Public catalog (no middleware)
	SetupCatalogRoutes(r, products, categories)

	// User routes (JWT protected)
	SetupUserRoutes(r, products, users, cartSvc)

	// Order routes (JWT protected)
	SetupOrderRoutes(r, orderSvc)

	// Payment routes (webhook public, the rest JWT protected)
	SetupPaymentRoutes(r, paymentSvc)

	// Admin routes (API key or admin bearer token)
	SetupAdminRoutes(r, products, categories, users, cartSvc, orderSvc, paymentSvc)
}
