package repository

import (
	"testing"

	"basspress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	parent := &models.Category{Name: "Car Audio", Slug: "car-audio", IsActive: true}
	require.NoError(t, repo.Create(testCtx(), parent))
	child := &models.Category{Name: "Subwoofers", Slug: "subwoofers", ParentID: &parent.ID, Level: 1, IsActive: true}
	require.NoError(t, repo.Create(testCtx(), child))

	hasChildren, err := repo.HasChildren(testCtx(), parent.ID)
	require.NoError(t, err)
	assert.True(t, hasChildren)

	hasChildren, err = repo.HasChildren(testCtx(), child.ID)
	require.NoError(t, err)
	assert.False(t, hasChildren)

	author := createTestUser(t, db, "writer")
	article := createTestArticle(t, db, author.ID, "box-build", models.ArticleStatusPublished)
	require.NoError(t, db.Model(article).Update("category_id", child.ID).Error)

	hasArticles, err := repo.HasArticles(testCtx(), child.ID)
	require.NoError(t, err)
	assert.True(t, hasArticles)
}

func TestCategoryArticleCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	category := &models.Category{Name: "Car Audio", Slug: "car-audio", IsActive: true}
	require.NoError(t, repo.Create(testCtx(), category))

	require.NoError(t, repo.IncrementArticles(testCtx(), category.ID))
	require.NoError(t, repo.IncrementArticles(testCtx(), category.ID))
	require.NoError(t, repo.DecrementArticles(testCtx(), category.ID))

	var reloaded models.Category
	require.NoError(t, db.First(&reloaded, category.ID).Error)
	assert.Equal(t, 1, reloaded.ArticlesCount)

	require.NoError(t, repo.DecrementArticles(testCtx(), category.ID))
	require.NoError(t, repo.DecrementArticles(testCtx(), category.ID))
	require.NoError(t, db.First(&reloaded, category.ID).Error)
	assert.Zero(t, reloaded.ArticlesCount, "counter is floored at zero")
}

func TestCategoryCreate_DuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	require.NoError(t, repo.Create(testCtx(), &models.Category{Name: "Car Audio", Slug: "car-audio"}))
	err := repo.Create(testCtx(), &models.Category{Name: "Car Audio 2", Slug: "car-audio"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestListActive_SkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	require.NoError(t, repo.Create(testCtx(), &models.Category{Name: "Active", Slug: "active", IsActive: true}))
	require.NoError(t, repo.Create(testCtx(), &models.Category{Name: "Hidden", Slug: "hidden", IsActive: false}))

	categories, err := repo.ListActive(testCtx())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Active", categories[0].Name)
}
