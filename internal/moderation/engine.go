package moderation

import (
	"time"

	"basspress/internal/models"
)

// Comment transitions: pending -> {approved, rejected, spam}, driven by
// a moderator. A comment can also be created directly into spam by the
// classifier. Approved, rejected and spam are terminal; attempting to
// moderate a non-pending comment fails.

// Approve marks a pending comment approved and records the moderator.
func Approve(c *models.Comment, moderatorID uint, now time.Time) error {
	if c.Status != models.CommentStatusPending {
		return models.NewValidationError("Only pending comments can be moderated")
	}
	c.Status = models.CommentStatusApproved
	c.ModeratorID = &moderatorID
	c.ModeratedAt = &now
	return nil
}

// Reject marks a pending comment rejected with a reason code.
func Reject(c *models.Comment, moderatorID uint, reason models.ModerationReason, notes string, now time.Time) error {
	if c.Status != models.CommentStatusPending {
		return models.NewValidationError("Only pending comments can be moderated")
	}
	if !models.ValidModerationReason(reason) {
		return models.NewValidationError("Unknown moderation reason")
	}
	c.Status = models.CommentStatusRejected
	c.ModeratorID = &moderatorID
	c.ModeratedAt = &now
	c.ModerationReason = reason
	c.ModerationNotes = notes
	return nil
}

// MarkSpam marks a pending comment as spam. The reason code is always
// "spam"; notes are free-form.
func MarkSpam(c *models.Comment, moderatorID uint, notes string, now time.Time) error {
	if c.Status != models.CommentStatusPending {
		return models.NewValidationError("Only pending comments can be moderated")
	}
	c.Status = models.CommentStatusSpam
	c.ModeratorID = &moderatorID
	c.ModeratedAt = &now
	c.ModerationReason = models.ReasonSpam
	c.ModerationNotes = notes
	return nil
}

// Article transitions: draft -> pending -> published -> archived.
// Publish is meaningful from draft or pending and stamps the publish
// timestamp; archive only from published.

// PublishArticle moves an article to published and stamps PublishedAt.
func PublishArticle(a *models.Article, now time.Time) error {
	if a.Status != models.ArticleStatusDraft && a.Status != models.ArticleStatusPending {
		return models.NewValidationError("Only draft or pending articles can be published")
	}
	a.Status = models.ArticleStatusPublished
	published := now
	a.PublishedAt = &published
	return nil
}

// SubmitArticle moves a draft into the editorial review queue.
func SubmitArticle(a *models.Article) error {
	if a.Status != models.ArticleStatusDraft {
		return models.NewValidationError("Only draft articles can be submitted for review")
	}
	a.Status = models.ArticleStatusPending
	return nil
}

// ArchiveArticle moves a published article to archived. The publish
// timestamp stays untouched.
func ArchiveArticle(a *models.Article) error {
	if a.Status != models.ArticleStatusPublished {
		return models.NewValidationError("Only published articles can be archived")
	}
	a.Status = models.ArticleStatusArchived
	return nil
}

// ForceArticleStatus writes any valid status directly (admin path).
// Forcing published stamps PublishedAt when missing so IsPublished
// stays consistent.
func ForceArticleStatus(a *models.Article, status models.ArticleStatus, now time.Time) error {
	if !models.ValidArticleStatus(status) {
		return models.NewValidationError("Unknown article status")
	}
	a.Status = status
	if status == models.ArticleStatusPublished && a.PublishedAt == nil {
		published := now
		a.PublishedAt = &published
	}
	return nil
}
