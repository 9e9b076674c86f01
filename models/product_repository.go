package models

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ErrInsufficientStock is returned when a conditional stock decrement finds
// fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrDuplicateSKU is returned when another product already uses the SKU.
var ErrDuplicateSKU = errors.New("sku already in use")

// ErrDuplicateReview is returned when a user reviews the same product twice.
var ErrDuplicateReview = errors.New("product already reviewed by this user")

type ProductFilters struct {
	CategoryIDs []uint // category plus descendants, resolved by the caller
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	MinRating   *float64
	Brand       string
	Tags        []string
	Status      string
	Featured    *bool
	SortBy      string
	SortOrder   string
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

// List returns one page of products plus the total count after filtering.
func (r *ProductRepository) List(filters ProductFilters, page, limit int) ([]Product, int64, error) {
	query := r.db.Model(&Product{}).Preload("Variants.Options").Preload("Reviews").Preload("Category")

	if filters.Search != "" {
		likePattern := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ? OR brand ILIKE ?",
			likePattern, likePattern, likePattern)
	}
	if len(filters.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filters.CategoryIDs)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if len(filters.Tags) > 0 {
		query = query.Where("tags && ?", pq.Array(filters.Tags))
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Featured != nil {
		query = query.Where("featured = ?", *filters.Featured)
	}
	if filters.MinRating != nil {
		query = query.
			Joins("JOIN (SELECT product_id, AVG(rating) AS avg_rating FROM reviews GROUP BY product_id) r ON r.product_id = products.id").
			Where("r.avg_rating >= ?", *filters.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy, ok := productSortColumns[filters.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "desc"
	if filters.SortOrder == "asc" {
		sortOrder = "asc"
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	var products []Product
	if err := query.
		Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// All returns the full catalog, used by the Excel export.
func (r *ProductRepository) All() ([]Product, error) {
	var products []Product
	if err := r.db.Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) FindByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Variants.Options").
		Preload("Reviews").
		Preload("Category").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) FindBySKU(sku string) (*Product, error) {
	var product Product
	if err := r.db.Where("sku = ?", sku).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Create(product *Product) error {
	var count int64
	if err := r.db.Model(&Product{}).Where("sku = ?", product.SKU).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateSKU
	}
	return r.db.Create(product).Error
}

func (r *ProductRepository) Update(product *Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).
			Where("sku = ? AND id <> ?", product.SKU, product.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateSKU
		}

		// Save upserts associations but never deletes removed rows, so the
		// stored variant set is cleared first and the incoming one replaces
		// it wholesale.
		var variantIDs []uint
		if err := tx.Model(&ProductVariant{}).
			Where("product_id = ?", product.ID).
			Pluck("id", &variantIDs).Error; err != nil {
			return err
		}
		if len(variantIDs) > 0 {
			if err := tx.Where("product_variant_id IN ?", variantIDs).
				Delete(&VariantOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).
				Delete(&ProductVariant{}).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(product).Error
	})
}

// Delete soft-deletes the product.
func (r *ProductRepository) Delete(id uint) error {
	result := r.db.Delete(&Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) AddReview(review *Review) error {
	var count int64
	if err := r.db.Model(&Review{}).
		Where("product_id = ? AND user_id = ?", review.ProductID, review.UserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateReview
	}
	return r.db.Create(review).Error
}

// DecrementStock atomically decrements tracked inventory, failing when fewer
// than qty units remain. The condition and the write are a single UPDATE so
// two concurrent checkouts cannot both pass a stale stock check.
func (r *ProductRepository) DecrementStock(id uint, qty int) error {
	result := r.db.Model(&Product{}).
		Where("id = ? AND inventory_quantity >= ?", id, qty).
		UpdateColumn("inventory_quantity", gorm.Expr("inventory_quantity - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock increments inventory by qty (cancellation/return restock).
func (r *ProductRepository) RestoreStock(id uint, qty int) error {
	result := r.db.Model(&Product{}).
		Where("id = ?", id).
		UpdateColumn("inventory_quantity", gorm.Expr("inventory_quantity + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
