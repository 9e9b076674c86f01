package routes

import (
	"github.com/gin-gonic/gin"
	categoryControllers "github.com/mercato-dev/mercato-api/controllers/category"
	productcontroller "github.com/mercato-dev/mercato-api/controllers/product"
	"github.com/mercato-dev/mercato-api/models"
)

// SetupCatalogRoutes registers the public browse endpoints.
func SetupCatalogRoutes(r *gin.Engine, products *models.ProductRepository, categories *models.CategoryRepository) {
	r.GET("/products", productcontroller.GetProducts(products, categories))
	r.GET("/products/:id", productcontroller.GetProductByID(products))

	categoryGroup := r.Group("/categories")
	{
		categoryGroup.GET("", categoryControllers.GetCategoryTree(categories))
		categoryGroup.GET("/:id", categoryControllers.GetCategoryByID(categories))
		categoryGroup.GET("/:id/products", categoryControllers.GetCategoryProducts(categories, products))
	}
}
