package models

import (
	"time"

	"gorm.io/gorm"
)

// ArticleStatus defines the publication state of an article.
type ArticleStatus string

const (
	// ArticleStatusDraft indicates an article is being written.
	ArticleStatusDraft ArticleStatus = "draft"
	// ArticleStatusPending indicates an article awaits editorial review.
	ArticleStatusPending ArticleStatus = "pending"
	// ArticleStatusPublished indicates an article is live.
	ArticleStatusPublished ArticleStatus = "published"
	// ArticleStatusArchived indicates an article was taken off the front pages.
	ArticleStatusArchived ArticleStatus = "archived"
)

// ValidArticleStatus reports whether s is one of the known statuses.
func ValidArticleStatus(s ArticleStatus) bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPending, ArticleStatusPublished, ArticleStatusArchived:
		return true
	}
	return false
}

// Article is a published piece: a review, install guide or news item.
type Article struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Slug    string `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Excerpt string `gorm:"size:500" json:"excerpt,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`
	Tags    string `gorm:"size:300" json:"tags,omitempty"` // comma-separated

	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Status      ArticleStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time    `gorm:"index" json:"published_at,omitempty"`
	IsFeatured  bool          `gorm:"not null;default:false" json:"is_featured"`

	ViewsCount  int `gorm:"not null;default:0" json:"views_count"`
	LikesCount  int `gorm:"not null;default:0" json:"likes_count"`
	SharesCount int `gorm:"not null;default:0" json:"shares_count"`

	// Rating is a running weighted mean; it is updated incrementally on
	// each submission, never recalculated from scratch.
	RatingAverage float64 `gorm:"not null;default:0" json:"rating_average"`
	RatingCount   int     `gorm:"not null;default:0" json:"rating_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPublished holds only when the status is published AND a publish
// timestamp was stamped and has passed. Setting the status column
// directly without stamping PublishedAt does not satisfy it.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished &&
		a.PublishedAt != nil &&
		!a.PublishedAt.After(time.Now())
}

// URL returns the canonical site path for the article.
func (a *Article) URL() string {
	return "/articles/" + a.Slug
}
