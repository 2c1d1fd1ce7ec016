package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"basspress/internal/models"
	"basspress/internal/moderation"
	"basspress/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// seedPassword is the shared password for all demo accounts.
const seedPassword = "Password123"

// CreateUsers seeds n accounts. Roles skew heavily toward plain users
// with a handful of authors and one moderator.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		role := models.RoleUser
		switch {
		case i == 0:
			role = models.RoleModerator
		case i <= n/5:
			role = models.RoleAuthor
		}

		user := &models.User{
			Username:  fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			Email:     fmt.Sprintf("user%d.%s", i, gofakeit.Email()),
			Password:  string(hash),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(10),
			Location:  gofakeit.City(),
			Role:      role,
			IsActive:  true,
			CreatedAt: pastTime(f.r, 365),
		}
		users = append(users, user)
	}
	if err := f.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateCategories seeds the preset category tree.
func (f *Factory) CreateCategories() ([]*models.Category, error) {
	var all []*models.Category
	for _, preset := range categoryPresets {
		root := &models.Category{
			Name:        preset.Name,
			Slug:        validation.Slugify(preset.Name),
			Description: gofakeit.Sentence(8),
			Level:       0,
			IsActive:    true,
		}
		if err := f.db.Create(root).Error; err != nil {
			return nil, err
		}
		all = append(all, root)

		for _, childName := range preset.Children {
			child := &models.Category{
				Name:        childName,
				Slug:        validation.Slugify(childName),
				Description: gofakeit.Sentence(8),
				ParentID:    &root.ID,
				Level:       1,
				IsActive:    true,
			}
			if err := f.db.Create(child).Error; err != nil {
				return nil, err
			}
			all = append(all, child)
		}
	}
	return all, nil
}

// CreateArticles seeds n articles spread across authors and categories.
// Roughly 70% are published, the rest split between draft, pending and
// archived.
func (f *Factory) CreateArticles(users []*models.User, categories []*models.Category, n int) ([]*models.Article, error) {
	authors := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.HasRole(models.RoleAuthor) {
			authors = append(authors, u)
		}
	}
	if len(authors) == 0 {
		authors = users
	}

	articles := make([]*models.Article, 0, n)
	for i := 0; i < n; i++ {
		author := authors[f.r.Intn(len(authors))]
		category := categories[f.r.Intn(len(categories))]
		title := gofakeit.Sentence(6)
		createdAt := pastTime(f.r, 180)

		article := &models.Article{
			Title:      title,
			Slug:       validation.DedupeSlug(validation.Slugify(title), createdAt.Add(time.Duration(i)*time.Millisecond)),
			Excerpt:    gofakeit.Sentence(15),
			Content:    gofakeit.Paragraph(4, 6, 12, "\n\n"),
			Tags:       strings.Join([]string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}, ","),
			AuthorID:   author.ID,
			CategoryID: &category.ID,
			Status:     models.ArticleStatusDraft,
			CreatedAt:  createdAt,
			ViewsCount: f.r.Intn(5000),
			LikesCount: f.r.Intn(300),
		}

		switch roll := f.r.Intn(10); {
		case roll < 7:
			publishedAt := createdAt.Add(time.Duration(f.r.Intn(72)) * time.Hour)
			article.Status = models.ArticleStatusPublished
			article.PublishedAt = &publishedAt
		case roll < 8:
			article.Status = models.ArticleStatusPending
		case roll < 9:
			article.Status = models.ArticleStatusArchived
		}

		if article.RatingCount = f.r.Intn(50); article.RatingCount > 0 {
			article.RatingAverage = 1 + f.r.Float64()*4
		}

		articles = append(articles, article)
	}

	if err := f.db.Create(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// CreateComments seeds n comments on published articles, running each
// through the spam classifier the way live traffic would. A few are
// seeded with spam keywords so moderation queues are not empty.
func (f *Factory) CreateComments(users []*models.User, articles []*models.Article, n int) ([]*models.Comment, error) {
	published := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if a.IsPublished() {
			published = append(published, a)
		}
	}
	if len(published) == 0 {
		return nil, nil
	}

	comments := make([]*models.Comment, 0, n)
	for i := 0; i < n; i++ {
		content := gofakeit.Sentence(12)
		if f.r.Intn(20) == 0 {
			content = "Buy now and earn free credit with this discount!"
		}

		status := models.CommentStatusApproved
		if moderation.ClassifySpam(content) {
			status = models.CommentStatusSpam
		} else if f.r.Intn(5) == 0 {
			status = models.CommentStatusPending
		}

		comment := &models.Comment{
			Content:   content,
			ArticleID: published[f.r.Intn(len(published))].ID,
			AuthorID:  users[f.r.Intn(len(users))].ID,
			Status:    status,
			CreatedAt: pastTime(f.r, 60),
		}
		comments = append(comments, comment)
	}

	if err := f.db.Create(&comments).Error; err != nil {
		return nil, err
	}

	// Attach replies to a subset of approved top-level comments.
	var replies []*models.Comment
	for _, parent := range comments {
		if parent.Status != models.CommentStatusApproved || f.r.Intn(4) != 0 {
			continue
		}
		reply := &models.Comment{
			Content:   gofakeit.Sentence(8),
			ArticleID: parent.ArticleID,
			AuthorID:  users[f.r.Intn(len(users))].ID,
			ParentID:  &parent.ID,
			Status:    models.CommentStatusApproved,
			CreatedAt: parent.CreatedAt.Add(time.Duration(f.r.Intn(48)) * time.Hour),
		}
		replies = append(replies, reply)
		parent.RepliesCount++
	}
	if len(replies) > 0 {
		if err := f.db.Create(&replies).Error; err != nil {
			return nil, err
		}
		for _, parent := range comments {
			if parent.RepliesCount > 0 {
				if err := f.db.Model(parent).Update("replies_count", parent.RepliesCount).Error; err != nil {
					return nil, err
				}
			}
		}
		comments = append(comments, replies...)
	}

	return comments, nil
}
