package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /products/:id
func GetProductByID(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		product, err := repo.FindByID(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"product": product,
			"rating": gin.H{
				"average": product.RatingAverage(),
				"count":   product.RatingCount(),
			},
		})
	}
}
