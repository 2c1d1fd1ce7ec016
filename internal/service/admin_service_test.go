package service

import (
	"context"
	"testing"
	"time"

	"basspress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetUserRole(t *testing.T) {
	var setRole models.Role
	repo := &stubUserRepoWithRole{
		stubUserRepo: stubUserRepo{
			getByID: func(ctx context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, Role: setRole}, nil
			},
		},
		setRole: func(ctx context.Context, id uint, role models.Role) error {
			setRole = role
			return nil
		},
	}
	svc := NewAdminService(repo, &stubArticleRepo{}, &stubCommentRepo{})

	user, err := svc.SetUserRole(context.Background(), 1, 2, models.RoleAuthor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, user.Role)
}

func TestSetUserRole_Guards(t *testing.T) {
	svc := NewAdminService(&stubUserRepo{}, &stubArticleRepo{}, &stubCommentRepo{})
	ctx := context.Background()

	_, err := svc.SetUserRole(ctx, 1, 2, models.Role("overlord"))
	assert.Error(t, err, "unknown role")

	_, err = svc.SetUserRole(ctx, 1, 1, models.RoleUser)
	assert.Error(t, err, "self role change")
}

func TestSetUserActive_BlockRevokesSessions(t *testing.T) {
	var revoked bool
	repo := &stubUserRepoWithRole{
		stubUserRepo: stubUserRepo{
			getByID: func(ctx context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, IsActive: false}, nil
			},
			removeAll: func(ctx context.Context, userID uint) error {
				revoked = true
				return nil
			},
		},
	}
	svc := NewAdminService(repo, &stubArticleRepo{}, &stubCommentRepo{})

	user, err := svc.SetUserActive(context.Background(), 1, 2, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.True(t, revoked, "blocking kills outstanding refresh tokens")
}

func TestSetUserActive_UnblockKeepsSessionsAlone(t *testing.T) {
	var revoked bool
	repo := &stubUserRepoWithRole{
		stubUserRepo: stubUserRepo{
			getByID: func(ctx context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, IsActive: true}, nil
			},
			removeAll: func(ctx context.Context, userID uint) error {
				revoked = true
				return nil
			},
		},
	}
	svc := NewAdminService(repo, &stubArticleRepo{}, &stubCommentRepo{})

	_, err := svc.SetUserActive(context.Background(), 1, 2, true)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSetUserActive_SelfBlockRejected(t *testing.T) {
	svc := NewAdminService(&stubUserRepo{}, &stubArticleRepo{}, &stubCommentRepo{})

	_, err := svc.SetUserActive(context.Background(), 1, 1, false)
	assert.Error(t, err)
}

func TestForceArticleStatus_StampsPublishTime(t *testing.T) {
	article := &models.Article{ID: 1, Status: models.ArticleStatusArchived}

	var savedAt *time.Time
	articles := &stubArticleRepo{
		getByID: func(ctx context.Context, id uint) (*models.Article, error) { return article, nil },
		setStatus: func(ctx context.Context, id uint, status models.ArticleStatus, publishedAt *time.Time) error {
			savedAt = publishedAt
			return nil
		},
	}
	svc := NewAdminService(&stubUserRepo{}, articles, &stubCommentRepo{})

	got, err := svc.ForceArticleStatus(context.Background(), 1, models.ArticleStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusPublished, got.Status)
	require.NotNil(t, savedAt)
}

func TestBulkModerate(t *testing.T) {
	var gotStatus models.CommentStatus
	var gotReason models.ModerationReason
	comments := &stubCommentRepo{
		bulkSetStatus: func(ctx context.Context, ids []uint, status models.CommentStatus, moderatorID uint, reason models.ModerationReason, now time.Time) (int64, error) {
			gotStatus = status
			gotReason = reason
			return int64(len(ids)) - 1, nil
		},
	}
	svc := NewAdminService(&stubUserRepo{}, &stubArticleRepo{}, comments)
	ctx := context.Background()

	updated, err := svc.BulkModerate(ctx, BulkModerateInput{
		CommentIDs: []uint{1, 2, 3}, ModeratorID: 9, Action: "spam", Reason: models.ReasonOther,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated, "already-decided comments are skipped")
	assert.Equal(t, models.CommentStatusSpam, gotStatus)
	assert.Equal(t, models.ReasonSpam, gotReason, "spam action forces the spam reason")
}

func TestBulkModerate_Delete(t *testing.T) {
	var gotIDs []uint
	comments := &stubCommentRepo{
		bulkDelete: func(ctx context.Context, ids []uint) (int64, error) {
			gotIDs = ids
			return int64(len(ids)), nil
		},
	}
	svc := NewAdminService(&stubUserRepo{}, &stubArticleRepo{}, comments)

	deleted, err := svc.BulkModerate(context.Background(), BulkModerateInput{
		CommentIDs: []uint{4, 5}, ModeratorID: 9, Action: "delete",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []uint{4, 5}, gotIDs)
}

func TestBulkModerate_Validation(t *testing.T) {
	svc := NewAdminService(&stubUserRepo{}, &stubArticleRepo{}, &stubCommentRepo{})
	ctx := context.Background()

	_, err := svc.BulkModerate(ctx, BulkModerateInput{ModeratorID: 9, Action: "approve"})
	assert.Error(t, err, "no IDs")

	_, err = svc.BulkModerate(ctx, BulkModerateInput{
		CommentIDs: []uint{1}, ModeratorID: 9, Action: "reject", Reason: models.ModerationReason("meh"),
	})
	assert.Error(t, err, "reject needs a valid reason")

	_, err = svc.BulkModerate(ctx, BulkModerateInput{
		CommentIDs: []uint{1}, ModeratorID: 9, Action: "yolo",
	})
	assert.Error(t, err, "unknown action")
}

func TestStats(t *testing.T) {
	repo := &stubUserRepoWithRole{
		stubUserRepo: stubUserRepo{},
		countByRole: func(ctx context.Context) (map[models.Role]int64, error) {
			return map[models.Role]int64{models.RoleUser: 10, models.RoleAuthor: 2}, nil
		},
	}
	articles := &stubArticleRepo{
		countByStatus: func(ctx context.Context) (map[models.ArticleStatus]int64, error) {
			return map[models.ArticleStatus]int64{models.ArticleStatusPublished: 5}, nil
		},
	}
	comments := &stubCommentRepo{
		countByStatus: func(ctx context.Context) (map[models.CommentStatus]int64, error) {
			return map[models.CommentStatus]int64{
				models.CommentStatusApproved: 20,
				models.CommentStatusPending:  3,
			}, nil
		},
	}
	svc := NewAdminService(repo, articles, comments)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.UsersByRole[models.RoleUser])
	assert.Equal(t, int64(5), stats.ArticlesByStatus[models.ArticleStatusPublished])
	assert.Equal(t, int64(3), stats.PendingModeration)
}

// stubUserRepoWithRole extends stubUserRepo with the admin-facing hooks.
type stubUserRepoWithRole struct {
	stubUserRepo
	setRole     func(ctx context.Context, id uint, role models.Role) error
	setActive   func(ctx context.Context, id uint, active bool) error
	countByRole func(ctx context.Context) (map[models.Role]int64, error)
}

func (s *stubUserRepoWithRole) SetRole(ctx context.Context, id uint, role models.Role) error {
	if s.setRole == nil {
		return nil
	}
	return s.setRole(ctx, id, role)
}

func (s *stubUserRepoWithRole) SetActive(ctx context.Context, id uint, active bool) error {
	if s.setActive == nil {
		return nil
	}
	return s.setActive(ctx, id, active)
}

func (s *stubUserRepoWithRole) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	if s.countByRole == nil {
		return nil, nil
	}
	return s.countByRole(ctx)
}
