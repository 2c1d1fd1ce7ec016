package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"basspress/internal/featureflags"
	"basspress/internal/models"
	"basspress/internal/moderation"
	"basspress/internal/notifications"
	"basspress/internal/repository"
	"basspress/internal/validation"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 500
	minRating        = 1
	maxRating        = 5
)

// ArticleService handles the article lifecycle from draft to archive.
type ArticleService struct {
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	notifier     *notifications.Notifier
	flags        *featureflags.Manager

	now func() time.Time
}

type CreateArticleInput struct {
	AuthorID   uint
	Title      string
	Content    string
	Excerpt    string
	CategoryID uint
	Tags       string
}

type UpdateArticleInput struct {
	ArticleID  uint
	ActorID    uint
	ActorRole  models.Role
	Title      string
	Content    string
	Excerpt    string
	CategoryID uint
	Tags       string
}

func NewArticleService(articleRepo repository.ArticleRepository, categoryRepo repository.CategoryRepository, notifier *notifications.Notifier, flags *featureflags.Manager) *ArticleService {
	return &ArticleService{
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
		flags:        flags,
		now:          time.Now,
	}
}

// CreateArticle creates a draft. The slug derives from the title; a
// taken slug gets a timestamp suffix and one retry.
func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(in.Excerpt) > maxExcerptLength {
		return nil, models.NewValidationError("Excerpt too long (max 500 characters)")
	}

	var categoryID *uint
	if in.CategoryID != 0 {
		if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		categoryID = &in.CategoryID
	}

	article := &models.Article{
		Title:      title,
		Slug:       validation.Slugify(title),
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		Tags:       in.Tags,
		AuthorID:   in.AuthorID,
		CategoryID: categoryID,
		Status:     models.ArticleStatusDraft,
	}

	err := s.articleRepo.Create(ctx, article)
	if errors.Is(err, repository.ErrDuplicateSlug) {
		article.Slug = validation.DedupeSlug(article.Slug, s.now())
		err = s.articleRepo.Create(ctx, article)
	}
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		if cerr := s.categoryRepo.IncrementArticles(ctx, *categoryID); cerr != nil {
			return nil, cerr
		}
	}
	return article, nil
}

// UpdateArticle edits content fields. Authors may edit their own
// articles; moderators may edit any.
func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrModerator(article, in.ActorID, in.ActorRole); err != nil {
		return nil, err
	}

	if in.Title != "" {
		if utf8.RuneCountInString(in.Title) > maxTitleLength {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		article.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		article.Content = in.Content
	}
	if in.Excerpt != "" {
		if utf8.RuneCountInString(in.Excerpt) > maxExcerptLength {
			return nil, models.NewValidationError("Excerpt too long (max 500 characters)")
		}
		article.Excerpt = in.Excerpt
	}
	if in.Tags != "" {
		article.Tags = in.Tags
	}
	if in.CategoryID != 0 {
		if err := s.moveCategory(ctx, article, in.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) moveCategory(ctx context.Context, article *models.Article, newCategoryID uint) error {
	if article.CategoryID != nil && *article.CategoryID == newCategoryID {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, newCategoryID); err != nil {
		return err
	}
	if article.CategoryID != nil {
		if err := s.categoryRepo.DecrementArticles(ctx, *article.CategoryID); err != nil {
			return err
		}
	}
	if err := s.categoryRepo.IncrementArticles(ctx, newCategoryID); err != nil {
		return err
	}
	article.CategoryID = &newCategoryID
	return nil
}

func (s *ArticleService) DeleteArticle(ctx context.Context, articleID, actorID uint, actorRole models.Role) error {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return err
	}
	if err := s.requireOwnershipOrModerator(article, actorID, actorRole); err != nil {
		return err
	}
	if err := s.articleRepo.Delete(ctx, articleID); err != nil {
		return err
	}
	if article.CategoryID != nil {
		return s.categoryRepo.DecrementArticles(ctx, *article.CategoryID)
	}
	return nil
}

// GetArticle fetches an article by slug. Reading a published article
// counts one view.
func (s *ArticleService) GetArticle(ctx context.Context, slug string, countView bool) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if countView && article.IsPublished() {
		if err := s.articleRepo.IncrementViews(ctx, article.ID); err != nil {
			return nil, err
		}
		article.ViewsCount++
	}
	return article, nil
}

func (s *ArticleService) ListPublished(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, int64, error) {
	return s.articleRepo.ListPublished(ctx, filter)
}

func (s *ArticleService) ListAll(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, int64, error) {
	return s.articleRepo.List(ctx, filter)
}

func (s *ArticleService) Trending(ctx context.Context, limit int) ([]models.Article, error) {
	return s.articleRepo.Trending(ctx, limit, s.flags.TrendingCacheEnabled())
}

func (s *ArticleService) Recent(ctx context.Context, limit int) ([]models.Article, error) {
	return s.articleRepo.Recent(ctx, limit)
}

// Submit moves an author's draft into the editorial review queue.
func (s *ArticleService) Submit(ctx context.Context, articleID, actorID uint, actorRole models.Role) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrModerator(article, actorID, actorRole); err != nil {
		return nil, err
	}
	if err := moderation.SubmitArticle(article); err != nil {
		return nil, err
	}
	if err := s.articleRepo.SetStatus(ctx, article.ID, article.Status, nil); err != nil {
		return nil, err
	}
	_ = s.notifier.ArticleSubmitted(ctx, article.ID, actorID)
	return article, nil
}

// Publish makes an article live and stamps its publish time. The
// owning author may publish their own work; moderators may publish
// anyone's.
func (s *ArticleService) Publish(ctx context.Context, articleID, actorID uint, actorRole models.Role) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrModerator(article, actorID, actorRole); err != nil {
		return nil, err
	}
	if err := moderation.PublishArticle(article, s.now()); err != nil {
		return nil, err
	}
	if err := s.articleRepo.SetStatus(ctx, article.ID, article.Status, article.PublishedAt); err != nil {
		return nil, err
	}
	return article, nil
}

// Archive retires a published article.
func (s *ArticleService) Archive(ctx context.Context, articleID uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := moderation.ArchiveArticle(article); err != nil {
		return nil, err
	}
	if err := s.articleRepo.SetStatus(ctx, article.ID, article.Status, nil); err != nil {
		return nil, err
	}
	return article, nil
}

// Rate folds one rating between 1 and 5 into the running average.
func (s *ArticleService) Rate(ctx context.Context, articleID uint, rating float64) (*models.Article, error) {
	if rating < minRating || rating > maxRating {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished() {
		return nil, models.NewValidationError("Only published articles can be rated")
	}
	return s.articleRepo.AddRating(ctx, articleID, rating)
}

func (s *ArticleService) Like(ctx context.Context, articleID uint) error {
	return s.articleRepo.IncrementLikes(ctx, articleID)
}

func (s *ArticleService) Unlike(ctx context.Context, articleID uint) error {
	return s.articleRepo.DecrementLikes(ctx, articleID)
}

func (s *ArticleService) Share(ctx context.Context, articleID uint) error {
	return s.articleRepo.IncrementShares(ctx, articleID)
}

func (s *ArticleService) requireOwnershipOrModerator(article *models.Article, actorID uint, actorRole models.Role) error {
	if article.AuthorID == actorID {
		return nil
	}
	if roleAtLeast(actorRole, models.RoleModerator) {
		return nil
	}
	return models.NewForbiddenError("You do not have permission to modify this article")
}

func roleAtLeast(role, required models.Role) bool {
	u := models.User{Role: role}
	return u.HasRole(required)
}
