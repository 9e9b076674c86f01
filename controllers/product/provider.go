package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
)

// ProductProvider is the repository surface the product handlers consume.
type ProductProvider interface {
	List(filters models.ProductFilters, page, limit int) ([]models.Product, int64, error)
	All() ([]models.Product, error)
	FindByID(id uint) (*models.Product, error)
	FindBySKU(sku string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	AddReview(review *models.Review) error
}

// CategoryResolver expands a category filter to the category plus all its
// descendants.
type CategoryResolver interface {
	SubtreeIDs(id uint) ([]uint, error)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, models.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	case errors.Is(err, models.ErrDuplicateSKU):
		c.JSON(http.StatusBadRequest, gin.H{"error": "SKU already in use"})
	case errors.Is(err, models.ErrDuplicateReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this product"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
