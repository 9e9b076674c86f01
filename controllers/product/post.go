package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
)

type VariantOptionInput struct {
	Value         string  `json:"value" binding:"required"`
	PriceModifier float64 `json:"price_modifier"`
}

type VariantInput struct {
	Name    string               `json:"name" binding:"required"`
	Options []VariantOptionInput `json:"options" binding:"required,min=1"`
}

type ProductInput struct {
	Name         string           `json:"name" binding:"required"`
	Description  string           `json:"description"`
	Brand        string           `json:"brand"`
	SKU          string           `json:"sku" binding:"required"`
	Price        float64          `json:"price" binding:"required,gt=0"`
	ComparePrice float64          `json:"compare_price"`
	Image        string           `json:"image"`
	Tags         []string         `json:"tags"`
	CategoryID   *uint            `json:"category_id"`
	Status       string           `json:"status"`
	Featured     bool             `json:"featured"`
	Inventory    models.Inventory `json:"inventory"`
	Variants     []VariantInput   `json:"variants"`
}

func (in *ProductInput) apply(product *models.Product) bool {
	status := models.ProductStatus(in.Status)
	if in.Status == "" {
		status = models.ProductStatusDraft
	}
	switch status {
	case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDraft:
	default:
		return false
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Brand = in.Brand
	product.SKU = in.SKU
	product.Price = decimal.NewFromFloat(in.Price)
	product.ComparePrice = decimal.NewFromFloat(in.ComparePrice)
	product.Image = in.Image
	product.Tags = in.Tags
	product.CategoryID = in.CategoryID
	product.Status = status
	product.Featured = in.Featured
	product.Inventory = in.Inventory

	product.Variants = nil
	for _, v := range in.Variants {
		variant := models.ProductVariant{Name: v.Name}
		for _, o := range v.Options {
			variant.Options = append(variant.Options, models.VariantOption{
				Value:         o.Value,
				PriceModifier: decimal.NewFromFloat(o.PriceModifier),
			})
		}
		product.Variants = append(product.Variants, variant)
	}
	return true
}

// POST /admin/products
func CreateProduct(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if !input.apply(&product) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		if err := repo.Create(&product); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
