package service

import (
	"context"
	"time"

	"basspress/internal/cache"
	"basspress/internal/models"
	"basspress/internal/moderation"
	"basspress/internal/observability"
	"basspress/internal/repository"
)

// AdminService covers admin-only operations: site stats, role and
// account management, and bulk moderation.
type AdminService struct {
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository

	now func() time.Time
}

// SiteStats aggregates counts across the whole site.
type SiteStats struct {
	UsersByRole       map[models.Role]int64          `json:"users_by_role"`
	ArticlesByStatus  map[models.ArticleStatus]int64 `json:"articles_by_status"`
	CommentsByStatus  map[models.CommentStatus]int64 `json:"comments_by_status"`
	PendingModeration int64                          `json:"pending_moderation"`
}

type BulkModerateInput struct {
	CommentIDs  []uint
	ModeratorID uint
	Action      string // approve, reject, spam
	Reason      models.ModerationReason
}

func NewAdminService(userRepo repository.UserRepository, articleRepo repository.ArticleRepository, commentRepo repository.CommentRepository) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

// Stats returns cached site-wide aggregates.
func (s *AdminService) Stats(ctx context.Context) (*SiteStats, error) {
	var stats SiteStats

	err := cache.CacheAside(ctx, cache.AdminStatsKey, &stats, cache.AdminStatsTTL, func() error {
		usersByRole, err := s.userRepo.CountByRole(ctx)
		if err != nil {
			return err
		}
		articlesByStatus, err := s.articleRepo.CountByStatus(ctx)
		if err != nil {
			return err
		}
		commentsByStatus, err := s.commentRepo.CountByStatus(ctx)
		if err != nil {
			return err
		}
		stats = SiteStats{
			UsersByRole:       usersByRole,
			ArticlesByStatus:  articlesByStatus,
			CommentsByStatus:  commentsByStatus,
			PendingModeration: commentsByStatus[models.CommentStatusPending],
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetUserRole changes an account's role. Admins cannot demote
// themselves; that path runs through another admin.
func (s *AdminService) SetUserRole(ctx context.Context, actorID, targetID uint, role models.Role) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Unknown role")
	}
	if actorID == targetID {
		return nil, models.NewValidationError("You cannot change your own role")
	}
	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// SetUserActive blocks or unblocks an account. Blocking revokes every
// refresh token so open sessions die with it.
func (s *AdminService) SetUserActive(ctx context.Context, actorID, targetID uint, active bool) (*models.User, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("You cannot block your own account")
	}
	if err := s.userRepo.SetActive(ctx, targetID, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.userRepo.RemoveAllRefreshTokens(ctx, targetID); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// ForceArticleStatus lets an admin move an article to any status,
// bypassing the normal transitions.
func (s *AdminService) ForceArticleStatus(ctx context.Context, articleID uint, status models.ArticleStatus) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := moderation.ForceArticleStatus(article, status, s.now()); err != nil {
		return nil, err
	}
	if err := s.articleRepo.SetStatus(ctx, article.ID, article.Status, article.PublishedAt); err != nil {
		return nil, err
	}
	return article, nil
}

// BulkModerate applies one action to many comments at once. Status
// decisions only touch pending comments and skip already-decided ones;
// delete removes the rows outright. The affected count is returned.
func (s *AdminService) BulkModerate(ctx context.Context, in BulkModerateInput) (int64, error) {
	if len(in.CommentIDs) == 0 {
		return 0, models.NewValidationError("No comment IDs given")
	}

	var status models.CommentStatus
	switch in.Action {
	case "delete":
		deleted, err := s.commentRepo.BulkDelete(ctx, in.CommentIDs)
		if err != nil {
			return 0, err
		}
		cache.Invalidate(ctx, cache.AdminStatsKey)
		return deleted, nil
	case "approve":
		status = models.CommentStatusApproved
	case "reject":
		if !models.ValidModerationReason(in.Reason) {
			return 0, models.NewValidationError("A valid reason is required to reject")
		}
		status = models.CommentStatusRejected
	case "spam":
		status = models.CommentStatusSpam
		in.Reason = models.ReasonSpam
	default:
		return 0, models.NewValidationError("Unknown moderation action")
	}

	updated, err := s.commentRepo.BulkSetStatus(ctx, in.CommentIDs, status, in.ModeratorID, in.Reason, s.now())
	if err != nil {
		return 0, err
	}
	observability.ModerationDecisions.WithLabelValues(string(status)).Add(float64(updated))
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return updated, nil
}
