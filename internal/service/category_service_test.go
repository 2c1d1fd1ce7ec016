package service

import (
	"context"
	"testing"

	"basspress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	svc := NewCategoryService(&stubCategoryRepo{})

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "  Car Audio  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Car Audio", category.Name)
	assert.Equal(t, "car-audio", category.Slug)
	assert.Equal(t, 0, category.Level)
	assert.True(t, category.IsActive)
}

func TestCreateCategory_ChildLevel(t *testing.T) {
	parentID := uint(1)
	categories := &stubCategoryRepo{
		getByID: func(ctx context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Car Audio", Level: 0}, nil
		},
	}
	svc := NewCategoryService(categories)

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Subwoofers", ParentID: &parentID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, category.Level)
}

func TestCreateCategory_DepthLimit(t *testing.T) {
	parentID := uint(1)
	categories := &stubCategoryRepo{
		getByID: func(ctx context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Level: maxCategoryDepth}, nil
		},
	}
	svc := NewCategoryService(categories)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Too Deep", ParentID: &parentID,
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestDeleteCategory_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses with subcategories", func(t *testing.T) {
		categories := &stubCategoryRepo{
			hasChildren: func(ctx context.Context, id uint) (bool, error) { return true, nil },
		}
		err := NewCategoryService(categories).DeleteCategory(ctx, 1)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("refuses with articles", func(t *testing.T) {
		categories := &stubCategoryRepo{
			hasChildren: func(ctx context.Context, id uint) (bool, error) { return false, nil },
			hasArticles: func(ctx context.Context, id uint) (bool, error) { return true, nil },
		}
		err := NewCategoryService(categories).DeleteCategory(ctx, 1)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("deletes an empty leaf", func(t *testing.T) {
		var deleted uint
		categories := &stubCategoryRepo{
			hasChildren: func(ctx context.Context, id uint) (bool, error) { return false, nil },
			hasArticles: func(ctx context.Context, id uint) (bool, error) { return false, nil },
			delete: func(ctx context.Context, id uint) error {
				deleted = id
				return nil
			},
		}
		require.NoError(t, NewCategoryService(categories).DeleteCategory(ctx, 1))
		assert.Equal(t, uint(1), deleted)
	})
}

func TestCategoryStats(t *testing.T) {
	categories := &stubCategoryRepo{
		listActive: func(ctx context.Context) ([]models.Category, error) {
			return []models.Category{
				{ID: 1, Name: "Car Audio", Slug: "car-audio", ArticlesCount: 4},
				{ID: 2, Name: "Subwoofers", Slug: "subwoofers", ArticlesCount: 0},
			}, nil
		},
	}
	svc := NewCategoryService(categories)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, int64(4), stats.ArticlesByCategory["car-audio"])
	assert.Equal(t, int64(0), stats.ArticlesByCategory["subwoofers"])
}

func TestBuildCategoryTree(t *testing.T) {
	parent := func(id uint) *uint { return &id }

	flat := []models.Category{
		{ID: 1, Name: "Car Audio"},
		{ID: 2, Name: "Subwoofers", ParentID: parent(1), Level: 1},
		{ID: 3, Name: "Amplifiers", ParentID: parent(1), Level: 1},
		{ID: 4, Name: "Music"},
		{ID: 5, Name: "Shallow Mounts", ParentID: parent(2), Level: 2},
	}

	roots := BuildCategoryTree(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "Car Audio", roots[0].Name)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "Subwoofers", roots[0].Children[0].Name)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "Shallow Mounts", roots[0].Children[0].Children[0].Name)
	assert.Empty(t, roots[1].Children)
}

func TestBuildCategoryTree_OrphanBecomesRoot(t *testing.T) {
	missing := uint(99)
	flat := []models.Category{
		{ID: 1, Name: "Car Audio"},
		{ID: 2, Name: "Orphan", ParentID: &missing, Level: 1},
	}

	roots := BuildCategoryTree(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "Orphan", roots[1].Name)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	assert.Empty(t, BuildCategoryTree(nil))
}
