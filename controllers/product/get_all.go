package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
)

// GET /products
func GetProducts(repo ProductProvider, categories CategoryResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := models.ProductFilters{
			Search:    c.Query("search"),
			Brand:     c.Query("brand"),
			Status:    c.Query("status"),
			SortBy:    c.DefaultQuery("sortBy", "created_at"),
			SortOrder: strings.ToLower(c.DefaultQuery("sortOrder", "desc")),
		}

		if categoryStr := c.Query("category"); categoryStr != "" {
			categoryID, err := strconv.ParseUint(categoryStr, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
				return
			}
			ids, err := categories.SubtreeIDs(uint(categoryID))
			if err != nil {
				respondError(c, err)
				return
			}
			filters.CategoryIDs = ids
		}

		if minPriceStr := c.Query("minPrice"); minPriceStr != "" {
			mp, err := strconv.ParseFloat(minPriceStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid minPrice"})
				return
			}
			filters.MinPrice = &mp
		}
		if maxPriceStr := c.Query("maxPrice"); maxPriceStr != "" {
			mp, err := strconv.ParseFloat(maxPriceStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maxPrice"})
				return
			}
			filters.MaxPrice = &mp
		}
		if ratingStr := c.Query("rating"); ratingStr != "" {
			rating, err := strconv.ParseFloat(ratingStr, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating"})
				return
			}
			filters.MinRating = &rating
		}
		if tagsStr := c.Query("tags"); tagsStr != "" {
			filters.Tags = strings.Split(tagsStr, ",")
		}
		if featuredStr := c.Query("featured"); featuredStr != "" {
			featured := featuredStr == "true"
			filters.Featured = &featured
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 12
		}

		products, total, err := repo.List(filters, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		totalPages := int((total + int64(limit) - 1) / int64(limit))
		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"pagination": gin.H{
				"currentPage":   page,
				"totalPages":    totalPages,
				"totalProducts": total,
				"hasNext":       page < totalPages,
				"hasPrev":       page > 1,
			},
		})
	}
}
