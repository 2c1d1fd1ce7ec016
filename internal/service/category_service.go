package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"basspress/internal/cache"
	"basspress/internal/models"
	"basspress/internal/repository"
	"basspress/internal/validation"
)

// Categories nest at most this deep (root is level 0).
const maxCategoryDepth = 2

// CategoryService manages the category tree.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *uint
}

type UpdateCategoryInput struct {
	CategoryID  uint
	Name        string
	Description string
	IsActive    *bool
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, models.NewValidationError("Category name too long (max 100 characters)")
	}

	level := 0
	if in.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Level >= maxCategoryDepth {
			return nil, models.NewValidationError("Category nesting too deep")
		}
		level = parent.Level + 1
	}

	category := &models.Category{
		Name:        name,
		Slug:        validation.Slugify(name),
		Description: in.Description,
		ParentID:    in.ParentID,
		Level:       level,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, in UpdateCategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		name := strings.TrimSpace(in.Name)
		if utf8.RuneCountInString(name) > 100 {
			return nil, models.NewValidationError("Category name too long (max 100 characters)")
		}
		category.Name = name
		category.Slug = validation.Slugify(name)
	}
	if in.Description != "" {
		category.Description = in.Description
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that still has children
// or articles attached.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return models.NewConflictError("Category has subcategories")
	}
	hasArticles, err := s.categoryRepo.HasArticles(ctx, id)
	if err != nil {
		return err
	}
	if hasArticles {
		return models.NewConflictError("Category still has articles")
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, slug)
}

func (s *CategoryService) ListActive(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListActive(ctx)
}

// CategoryStats summarizes how articles spread across active categories.
type CategoryStats struct {
	Total              int              `json:"total"`
	ArticlesByCategory map[string]int64 `json:"articles_by_category"`
}

func (s *CategoryService) Stats(ctx context.Context) (*CategoryStats, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int64, len(categories))
	for _, category := range categories {
		byCategory[category.Slug] = int64(category.ArticlesCount)
	}
	return &CategoryStats{
		Total:              len(categories),
		ArticlesByCategory: byCategory,
	}, nil
}

// Tree assembles active categories into a forest of nodes. A single
// pass builds an index by ID, a second pass attaches children; no
// recursion, so malformed parent links cannot blow the stack.
func (s *CategoryService) Tree(ctx context.Context) ([]*models.CategoryNode, error) {
	var roots []*models.CategoryNode

	err := cache.CacheAside(ctx, cache.CategoryTreeKey, &roots, cache.CategoryTreeTTL, func() error {
		categories, err := s.categoryRepo.ListActive(ctx)
		if err != nil {
			return err
		}
		roots = BuildCategoryTree(categories)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return roots, nil
}

// BuildCategoryTree links a flat category list into parent/child nodes.
// Categories whose parent is missing or inactive surface as roots
// rather than disappearing.
func BuildCategoryTree(categories []models.Category) []*models.CategoryNode {
	index := make(map[uint]*models.CategoryNode, len(categories))
	for i := range categories {
		index[categories[i].ID] = &models.CategoryNode{Category: categories[i]}
	}

	var roots []*models.CategoryNode
	for _, category := range categories {
		node := index[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*category.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}
