package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PUT /admin/products/:id
func UpdateProduct(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := repo.FindByID(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		if !input.apply(product) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		if err := repo.Update(product); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
