package repository

import (
	"context"
	"errors"
	"time"

	"basspress/internal/cache"
	"basspress/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateSlug signals that an article slug is already taken.
// Callers retry with a deduplicated slug.
var ErrDuplicateSlug = errors.New("slug already exists")

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Status     models.ArticleStatus
	CategoryID uint
	AuthorID   uint
	Tag        string
	Search     string
	Limit      int
	Offset     int
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error)
	ListPublished(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error)
	Trending(ctx context.Context, limit int, cached bool) ([]models.Article, error)
	Recent(ctx context.Context, limit int) ([]models.Article, error)

	IncrementViews(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) error
	DecrementLikes(ctx context.Context, id uint) error
	IncrementShares(ctx context.Context, id uint) error
	AddRating(ctx context.Context, id uint, rating float64) (*models.Article, error)

	SetStatus(ctx context.Context, id uint, status models.ArticleStatus, publishedAt *time.Time) error
	CountByStatus(ctx context.Context) (map[models.ArticleStatus]int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).
		Preload("Author").Preload("Category").
		First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	key := cache.ArticleKey(slug)

	err := cache.CacheAside(ctx, key, &article, cache.ArticleTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author").Preload("Category").
			Where("slug = ?", slug).
			First(&article).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateSlug
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateSlug
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	article, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error) {
	return r.list(ctx, filter, false)
}

// ListPublished restricts the listing to articles visible to readers.
func (r *articleRepository) ListPublished(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error) {
	filter.Status = models.ArticleStatusPublished
	return r.list(ctx, filter, true)
}

func (r *articleRepository) list(ctx context.Context, filter ArticleFilter, publishedOnly bool) ([]models.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if publishedOnly {
		query = query.Where("published_at IS NOT NULL AND published_at <= ?", time.Now())
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Tag != "" {
		query = query.Where("tags LIKE ?", "%"+filter.Tag+"%")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var articles []models.Article
	if err := query.
		Preload("Author").Preload("Category").
		Order("created_at DESC").
		Limit(clampLimit(filter.Limit)).Offset(filter.Offset).
		Find(&articles).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

// Trending lists published articles by popularity. The cached flag
// routes reads through Redis; callers disable it via feature flag.
func (r *articleRepository) Trending(ctx context.Context, limit int, cached bool) ([]models.Article, error) {
	var articles []models.Article

	fetch := func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author").Preload("Category").
			Where("status = ? AND published_at IS NOT NULL AND published_at <= ?",
				models.ArticleStatusPublished, time.Now()).
			Order("views_count DESC, likes_count DESC").
			Limit(clampLimit(limit)).
			Find(&articles).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	if !cached {
		if err := fetch(); err != nil {
			return nil, err
		}
		return articles, nil
	}

	if err := cache.CacheAside(ctx, cache.TrendingKey, &articles, cache.TrendingTTL, fetch); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepository) Recent(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article

	err := cache.CacheAside(ctx, cache.RecentKey, &articles, cache.RecentTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author").Preload("Category").
			Where("status = ? AND published_at IS NOT NULL AND published_at <= ?",
				models.ArticleStatusPublished, time.Now()).
			Order("published_at DESC").
			Limit(clampLimit(limit)).
			Find(&articles).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return articles, nil
}

// Counter updates run as single UPDATE statements so concurrent requests
// never lose increments to read-modify-write races.

func (r *articleRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.bump(ctx, id, "views_count", gorm.Expr("views_count + 1"))
}

func (r *articleRepository) IncrementLikes(ctx context.Context, id uint) error {
	return r.bump(ctx, id, "likes_count", gorm.Expr("likes_count + 1"))
}

func (r *articleRepository) DecrementLikes(ctx context.Context, id uint) error {
	return r.bump(ctx, id, "likes_count",
		gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END"))
}

func (r *articleRepository) IncrementShares(ctx context.Context, id uint) error {
	return r.bump(ctx, id, "shares_count", gorm.Expr("shares_count + 1"))
}

func (r *articleRepository) bump(ctx context.Context, id uint, column string, expr any) error {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update(column, expr)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	return nil
}

// AddRating folds one vote into the running mean in a single statement:
// new_avg = (avg * count + rating) / (count + 1).
func (r *articleRepository) AddRating(ctx context.Context, id uint, rating float64) (*models.Article, error) {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating_average": gorm.Expr(
				"(rating_average * rating_count + ?) / (rating_count + 1)", rating),
			"rating_count": gorm.Expr("rating_count + 1"),
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Article", id)
	}

	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return &article, nil
}

func (r *articleRepository) SetStatus(ctx context.Context, id uint, status models.ArticleStatus, publishedAt *time.Time) error {
	var article models.Article
	if err := r.db.WithContext(ctx).Select("id", "slug").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Article", id)
		}
		return models.NewInternalError(err)
	}

	updates := map[string]any{"status": status}
	if publishedAt != nil {
		updates["published_at"] = *publishedAt
	}
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	// The slug entry may hold the pre-transition row; drop it with the
	// listing keys.
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int64, error) {
	type statusCount struct {
		Status models.ArticleStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.Article{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.ArticleStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
