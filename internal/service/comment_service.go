package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"basspress/internal/featureflags"
	"basspress/internal/middleware"
	"basspress/internal/models"
	"basspress/internal/moderation"
	"basspress/internal/notifications"
	"basspress/internal/observability"
	"basspress/internal/repository"
)

// CommentService handles comment creation, editing and the moderation
// queue. New comments pass through the spam classifier before entering
// the queue.
type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	notifier    *notifications.Notifier
	flags       *featureflags.Manager

	now func() time.Time
}

type CreateCommentInput struct {
	ArticleID uint
	AuthorID  uint
	ParentID  *uint
	Content   string
}

type EditCommentInput struct {
	CommentID uint
	ActorID   uint
	Content   string
}

type ModerateCommentInput struct {
	CommentID   uint
	ModeratorID uint
	Action      string // approve, reject, spam
	Reason      models.ModerationReason
	Notes       string
}

func NewCommentService(commentRepo repository.CommentRepository, articleRepo repository.ArticleRepository, notifier *notifications.Notifier, flags *featureflags.Manager) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		notifier:    notifier,
		flags:       flags,
		now:         time.Now,
	}
}

// CreateComment validates and classifies a new comment. Replies may
// only target top-level comments on the same article.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	// Character limit, not bytes: multibyte scripts must not halve it.
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished() {
		return nil, models.NewValidationError("Comments are only accepted on published articles")
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ArticleID != in.ArticleID {
			return nil, models.NewValidationError("Parent comment belongs to a different article")
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Replies to replies are not allowed")
		}
	}

	status := models.CommentStatusPending
	if s.flags.SpamFilterEnabled() && moderation.ClassifySpam(content) {
		status = models.CommentStatusSpam
		observability.SpamCaught.Inc()
		middleware.Logger.InfoContext(ctx, "comment auto-flagged as spam",
			"article_id", in.ArticleID, "author_id", in.AuthorID)
	}

	comment := &models.Comment{
		Content:   content,
		ArticleID: in.ArticleID,
		AuthorID:  in.AuthorID,
		ParentID:  in.ParentID,
		Status:    status,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if status == models.CommentStatusPending {
		_ = s.notifier.CommentPending(ctx, comment.ID, in.ArticleID, in.AuthorID)
	}
	return comment, nil
}

// EditComment lets the author revise their comment. The pre-edit text
// is kept as a revision.
func (s *CommentService) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.ActorID {
		return nil, models.NewForbiddenError("Only the author can edit this comment")
	}

	now := s.now()
	revision := &models.CommentRevision{
		CommentID: comment.ID,
		Content:   comment.Content,
		EditedAt:  now,
	}
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now

	if err := s.commentRepo.Update(ctx, comment, revision); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Authors can delete their own;
// moderators can delete any.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint, actorRole models.Role) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID && !roleAtLeast(actorRole, models.RoleModerator) {
		return models.NewForbiddenError("You do not have permission to delete this comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID uint, limit, offset int) ([]models.Comment, int64, error) {
	return s.commentRepo.ListByArticle(ctx, articleID, limit, offset)
}

// Queue returns comments awaiting moderation, oldest first.
func (s *CommentService) Queue(ctx context.Context, filter repository.CommentFilter) ([]models.Comment, int64, error) {
	if filter.Status == "" {
		filter.Status = models.CommentStatusPending
	}
	return s.commentRepo.ListQueue(ctx, filter)
}

// Moderate applies one moderator decision to a pending comment.
func (s *CommentService) Moderate(ctx context.Context, in ModerateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch in.Action {
	case "approve":
		err = moderation.Approve(comment, in.ModeratorID, now)
	case "reject":
		err = moderation.Reject(comment, in.ModeratorID, in.Reason, in.Notes, now)
	case "spam":
		err = moderation.MarkSpam(comment, in.ModeratorID, in.Notes, now)
	default:
		return nil, models.NewValidationError("Unknown moderation action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.ApplyModeration(ctx, comment); err != nil {
		return nil, err
	}

	observability.ModerationDecisions.WithLabelValues(string(comment.Status)).Inc()
	_ = s.notifier.CommentModerated(ctx, comment.ID, string(comment.Status), in.ModeratorID)
	return comment, nil
}

func (s *CommentService) Like(ctx context.Context, commentID uint) error {
	return s.commentRepo.IncrementLikes(ctx, commentID)
}

func (s *CommentService) Dislike(ctx context.Context, commentID uint) error {
	return s.commentRepo.IncrementDislikes(ctx, commentID)
}

// Stats returns comment counts grouped by moderation status.
func (s *CommentService) Stats(ctx context.Context) (map[models.CommentStatus]int64, error) {
	return s.commentRepo.CountByStatus(ctx)
}
