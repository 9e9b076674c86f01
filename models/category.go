package models

import (
	"strings"
	"time"
	"unicode"
)

// Category forms a tree. Level and Path are derived from the parent chain
// and must be recomputed whenever Name or Parent changes; Path is the
// materialized slug chain ("apparel/shoes") used for prefix queries instead
// of recursive lookups.
type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Level     int       `json:"level"`
	Path      string    `gorm:"index" json:"path"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slugify normalizes a category name into its slug: lowercase, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DeriveFrom recomputes Slug, Level and Path against the given parent
// (nil for a root category).
func (c *Category) DeriveFrom(parent *Category) {
	c.Slug = Slugify(c.Name)
	if parent == nil {
		c.Level = 0
		c.Path = c.Slug
		return
	}
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.Slug
}

// IsAncestorOf reports whether other sits somewhere under c in the tree.
func (c *Category) IsAncestorOf(other *Category) bool {
	return strings.HasPrefix(other.Path+"/", c.Path+"/")
}
