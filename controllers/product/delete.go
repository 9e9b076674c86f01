package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DELETE /admin/products/:id
func DeleteProduct(repo ProductProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		if err := repo.Delete(uint(id)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
