package repository

import (
	"context"
	"errors"
	"time"

	"basspress/internal/models"

	"gorm.io/gorm"
)

// CommentFilter narrows comment listings.
type CommentFilter struct {
	ArticleID uint
	AuthorID  uint
	Status    models.CommentStatus
	Limit     int
	Offset    int
}

// CommentRepository defines persistence operations for comments and
// the moderation queue.
type CommentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment, revision *models.CommentRevision) error
	Delete(ctx context.Context, id uint) error
	ListByArticle(ctx context.Context, articleID uint, limit, offset int) ([]models.Comment, int64, error)
	ListQueue(ctx context.Context, filter CommentFilter) ([]models.Comment, int64, error)

	ApplyModeration(ctx context.Context, comment *models.Comment) error
	BulkSetStatus(ctx context.Context, ids []uint, status models.CommentStatus, moderatorID uint, reason models.ModerationReason, now time.Time) (int64, error)
	BulkDelete(ctx context.Context, ids []uint) (int64, error)

	IncrementLikes(ctx context.Context, id uint) error
	IncrementDislikes(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// Create inserts the comment and, for replies, bumps the parent's reply
// counter in the same transaction. The counter update is a single SQL
// statement so concurrent replies are all counted.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			return tx.Model(&models.Comment{}).
				Where("id = ?", *comment.ParentID).
				Update("replies_count", gorm.Expr("replies_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update saves edited content and appends the pre-edit revision.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment, revision *models.CommentRevision) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if revision != nil {
			if err := tx.Create(revision).Error; err != nil {
				return err
			}
		}
		return tx.Save(comment).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the comment and, for replies, lowers the parent's reply
// counter without letting it go negative.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			return tx.Model(&models.Comment{}).
				Where("id = ?", *comment.ParentID).
				Update("replies_count",
					gorm.Expr("CASE WHEN replies_count > 0 THEN replies_count - 1 ELSE 0 END")).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ListByArticle returns approved top-level comments with their approved
// replies preloaded.
func (r *commentRepository) ListByArticle(ctx context.Context, articleID uint, limit, offset int) ([]models.Comment, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("article_id = ? AND status = ? AND parent_id IS NULL",
			articleID, models.CommentStatusApproved)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []models.Comment
	if err := base.
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.CommentStatusApproved).
				Order("created_at ASC")
		}).
		Preload("Replies.Author").
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

// ListQueue returns comments for moderator review, oldest first.
func (r *commentRepository) ListQueue(ctx context.Context, filter CommentFilter) ([]models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ArticleID != 0 {
		query = query.Where("article_id = ?", filter.ArticleID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []models.Comment
	if err := query.
		Preload("Author").
		Order("created_at ASC").
		Limit(clampLimit(filter.Limit)).Offset(filter.Offset).
		Find(&comments).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

// ApplyModeration persists a decision made by the moderation engine.
// The WHERE clause re-checks pending status so two moderators cannot
// both decide the same comment.
func (r *commentRepository) ApplyModeration(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status = ?", comment.ID, models.CommentStatusPending).
		Updates(map[string]any{
			"status":            comment.Status,
			"moderator_id":      comment.ModeratorID,
			"moderated_at":      comment.ModeratedAt,
			"moderation_reason": comment.ModerationReason,
			"moderation_notes":  comment.ModerationNotes,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("Comment is no longer pending")
	}
	return nil
}

func (r *commentRepository) BulkSetStatus(ctx context.Context, ids []uint, status models.CommentStatus, moderatorID uint, reason models.ModerationReason, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id IN ? AND status = ?", ids, models.CommentStatusPending).
		Updates(map[string]any{
			"status":            status,
			"moderator_id":      moderatorID,
			"moderated_at":      now,
			"moderation_reason": reason,
		})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// BulkDelete removes a batch of comments, lowering the reply counter of
// each deleted reply's parent. Unknown IDs are skipped.
func (r *commentRepository) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("id IN ? AND parent_id IS NOT NULL", ids).
			Pluck("parent_id", &parentIDs).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected

		for _, parentID := range parentIDs {
			if err := tx.Model(&models.Comment{}).
				Where("id = ?", parentID).
				Update("replies_count",
					gorm.Expr("CASE WHEN replies_count > 0 THEN replies_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return deleted, nil
}

func (r *commentRepository) IncrementLikes(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("likes_count", gorm.Expr("likes_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) IncrementDislikes(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("dislikes_count", gorm.Expr("dislikes_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error) {
	type statusCount struct {
		Status models.CommentStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.CommentStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
