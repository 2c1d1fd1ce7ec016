package models

import (
	"time"
)

// Category groups articles. Categories form a tree via plain parent-id
// adjacency; tree assembly happens in the service layer with an
// iterative pass, not in the model.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:500" json:"description,omitempty"`

	ParentID *uint     `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Category `gorm:"foreignKey:ParentID" json:"-"`
	Level    int       `gorm:"not null;default:0" json:"level"`

	IsActive      bool `gorm:"not null;default:true;index" json:"is_active"`
	ArticlesCount int  `gorm:"not null;default:0" json:"articles_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// CategoryNode is a category with its resolved children, as returned by
// the tree endpoint.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
