package categoryControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
)

// CategoryProvider is the repository surface the category handlers consume.
type CategoryProvider interface {
	ListAll() ([]models.Category, error)
	FindByID(id uint) (*models.Category, error)
	SubtreeIDs(id uint) ([]uint, error)
	Create(category *models.Category) error
	Save(category *models.Category) error
	Delete(id uint) error
	Reorder(ids []uint) error
}

// ProductLister is the slice of the product repository needed to list a
// category's products.
type ProductLister interface {
	List(filters models.ProductFilters, page, limit int) ([]models.Product, int64, error)
}

type CategoryInput struct {
	Name      string `json:"name" binding:"required"`
	ParentID  *uint  `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
}

type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	case errors.Is(err, models.ErrDuplicateCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name already in use"})
	case errors.Is(err, models.ErrCategoryCycle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category cannot be moved under its own descendant"})
	case errors.Is(err, models.ErrCategoryHasChildren):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category still has child categories"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// buildTree assembles the category tree from the flat list. The list is
// ordered by path, so every parent is seen before its children and a single
// pass with a lookup map suffices.
func buildTree(categories []models.Category) []*CategoryNode {
	nodes := make(map[uint]*CategoryNode, len(categories))
	var roots []*CategoryNode
	for _, category := range categories {
		node := &CategoryNode{Category: category, Children: []*CategoryNode{}}
		nodes[category.ID] = node
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*category.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// GET /categories
func GetCategoryTree(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := repo.ListAll()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": buildTree(categories)})
	}
}

// GET /categories/:id
func GetCategoryByID(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		category, err := repo.FindByID(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// GET /categories/:id/products
// Lists products in the category and all of its descendants.
func GetCategoryProducts(repo CategoryProvider, products ProductLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		ids, err := repo.SubtreeIDs(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 12
		}

		filters := models.ProductFilters{
			CategoryIDs: ids,
			Status:      string(models.ProductStatusActive),
		}
		list, total, err := products.List(filters, page, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		totalPages := int((total + int64(limit) - 1) / int64(limit))
		c.JSON(http.StatusOK, gin.H{
			"products": list,
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

// POST /admin/categories
func CreateCategory(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		category := models.Category{
			Name:      input.Name,
			ParentID:  input.ParentID,
			SortOrder: input.SortOrder,
		}
		if err := repo.Create(&category); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /admin/categories/:id
func UpdateCategory(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		category, err := repo.FindByID(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		category.Name = input.Name
		category.ParentID = input.ParentID
		category.SortOrder = input.SortOrder

		if err := repo.Save(category); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id
func DeleteCategory(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		if err := repo.Delete(uint(id)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

// PUT /admin/categories/reorder
func ReorderCategories(repo CategoryProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			IDs []uint `json:"ids" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := repo.Reorder(input.IDs); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Categories reordered"})
	}
}
