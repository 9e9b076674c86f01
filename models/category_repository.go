package models

import (
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// ErrDuplicateCategory is returned when the category name is already taken.
var ErrDuplicateCategory = errors.New("category name already in use")

// ErrCategoryCycle is returned when a parent assignment would make a
// category its own ancestor.
var ErrCategoryCycle = errors.New("category cannot be its own ancestor")

// ErrCategoryHasChildren is returned when deleting a category that still
// has child categories.
var ErrCategoryHasChildren = errors.New("category has child categories")

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByID(id uint) (*Category, error) {
	var category Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// ListAll returns every category ordered by path, so parents always precede
// their children.
func (r *CategoryRepository) ListAll() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("path ASC, sort_order ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// SubtreeIDs returns the ids of the category and all its descendants via a
// single path-prefix query.
func (r *CategoryRepository) SubtreeIDs(id uint) ([]uint, error) {
	category, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	var ids []uint
	if err := r.db.Model(&Category{}).
		Where("path = ? OR path LIKE ?", category.Path, category.Path+"/%").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create derives slug, level and path from the parent before inserting.
func (r *CategoryRepository) Create(category *Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Category{}).Where("name = ?", category.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateCategory
		}

		var parent *Category
		if category.ParentID != nil {
			parent = &Category{}
			if err := tx.First(parent, "id = ?", *category.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
		}
		category.DeriveFrom(parent)
		return tx.Create(category).Error
	})
}

// Save persists a renamed or reparented category, rederiving slug/level/path
// and rewriting every descendant's path in one statement. A parent that sits
// inside the category's own subtree is rejected.
func (r *CategoryRepository) Save(category *Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current Category
		if err := tx.First(&current, "id = ?", category.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&Category{}).
			Where("name = ? AND id <> ?", category.Name, category.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateCategory
		}

		var parent *Category
		if category.ParentID != nil {
			if *category.ParentID == category.ID {
				return ErrCategoryCycle
			}
			parent = &Category{}
			if err := tx.First(parent, "id = ?", *category.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
			if current.IsAncestorOf(parent) {
				return ErrCategoryCycle
			}
		}

		oldPath := current.Path
		oldLevel := current.Level
		category.DeriveFrom(parent)

		if err := tx.Save(category).Error; err != nil {
			return err
		}

		if oldPath != category.Path {
			// Rewrite descendant paths by swapping the prefix. substr counts
			// characters, not bytes, and slugs keep multibyte letters.
			if err := tx.Model(&Category{}).
				Where("path LIKE ?", oldPath+"/%").
				Updates(map[string]interface{}{
					"path":  gorm.Expr("? || substr(path, ?)", category.Path, utf8.RuneCountInString(oldPath)+1),
					"level": gorm.Expr("level + ?", category.Level-oldLevel),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a leaf category and detaches its products.
func (r *CategoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var children int64
		if err := tx.Model(&Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return ErrCategoryHasChildren
		}
		if err := tx.Model(&Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// Reorder assigns sort order by position in the given id list.
func (r *CategoryRepository) Reorder(ids []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&Category{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
