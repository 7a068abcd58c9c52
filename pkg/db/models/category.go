package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog grouping. ParentID nests subcategories one level
// under a top-level category; top-level rows have a nil parent.
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	Image       *string    `gorm:"column:image"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	Featured    bool       `gorm:"column:featured;not null;default:false"`
	SortOrder   int        `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the category sits at the top of the hierarchy.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
