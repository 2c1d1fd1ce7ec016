package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentStatus defines the moderation state of a comment.
type CommentStatus string

const (
	// CommentStatusPending indicates a comment awaits moderation.
	CommentStatusPending CommentStatus = "pending"
	// CommentStatusApproved indicates a comment is visible.
	CommentStatusApproved CommentStatus = "approved"
	// CommentStatusRejected indicates a moderator declined the comment.
	CommentStatusRejected CommentStatus = "rejected"
	// CommentStatusSpam indicates the comment was flagged as spam, either
	// by the classifier at creation or by a moderator.
	CommentStatusSpam CommentStatus = "spam"
)

// ModerationReason is the reason code recorded on reject/spam decisions.
type ModerationReason string

const (
	ReasonSpam          ModerationReason = "spam"
	ReasonInappropriate ModerationReason = "inappropriate"
	ReasonOffTopic      ModerationReason = "off-topic"
	ReasonDuplicate     ModerationReason = "duplicate"
	ReasonOther         ModerationReason = "other"
)

// ValidModerationReason reports whether r is a known reason code.
func ValidModerationReason(r ModerationReason) bool {
	switch r {
	case ReasonSpam, ReasonInappropriate, ReasonOffTopic, ReasonDuplicate, ReasonOther:
		return true
	}
	return false
}

// MaxCommentLength caps comment content size.
const MaxCommentLength = 1000

// Comment is a reader comment on an article. Threading is exactly one
// level deep: a comment may have a parent, but replies to replies are
// rejected at creation.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"size:1000;not null" json:"content"`

	ArticleID uint    `gorm:"not null;index" json:"article_id"`
	Article   Article `gorm:"foreignKey:ArticleID" json:"-"`
	AuthorID  uint    `gorm:"not null;index" json:"author_id"`
	Author    User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID  *uint   `gorm:"index" json:"parent_id,omitempty"`

	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`

	Status CommentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	ModeratorID      *uint            `json:"moderator_id,omitempty"`
	ModeratedAt      *time.Time       `json:"moderated_at,omitempty"`
	ModerationReason ModerationReason `gorm:"type:varchar(20)" json:"moderation_reason,omitempty"`
	ModerationNotes  string           `gorm:"size:500" json:"-"`

	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	DislikesCount int `gorm:"not null;default:0" json:"dislikes_count"`
	RepliesCount  int `gorm:"not null;default:0" json:"replies_count"`

	IsEdited bool       `gorm:"not null;default:false" json:"is_edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	Revisions []CommentRevision `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsApproved reports whether the comment is publicly visible.
func (c *Comment) IsApproved() bool { return c.Status == CommentStatusApproved }

// IsPending reports whether the comment awaits moderation.
func (c *Comment) IsPending() bool { return c.Status == CommentStatusPending }

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool { return c.ParentID != nil }

// NetLikes returns likes minus dislikes.
func (c *Comment) NetLikes() int { return c.LikesCount - c.DislikesCount }

// CommentRevision is one prior content snapshot, appended every time a
// comment is edited.
type CommentRevision struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CommentID uint      `gorm:"not null;index" json:"-"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	EditedAt  time.Time `gorm:"not null" json:"edited_at"`
}
