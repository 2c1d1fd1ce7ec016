package server

import (
	"basspress/internal/models"
	"basspress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /api/categories
// @Summary List active categories
// @Tags categories
// @Produce json
// @Success 200 {object} object{categories=[]models.Category}
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListActive(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetCategoryTree handles GET /api/categories/tree
// @Summary Category tree
// @Tags categories
// @Produce json
// @Success 200 {object} object{tree=[]models.CategoryNode}
// @Router /categories/tree [get]
func (s *Server) GetCategoryTree(c *fiber.Ctx) error {
	tree, err := s.categoryService.Tree(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"tree": tree})
}

// GetCategory handles GET /api/categories/:slug
// @Summary Get category by slug
// @Tags categories
// @Router /categories/{slug} [get]
func (s *Server) GetCategory(c *fiber.Ctx) error {
	category, err := s.categoryService.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(category)
}

// GetCategoryStats handles GET /api/categories/stats
// @Summary Article counts per category
// @Tags categories
// @Produce json
// @Success 200 {object} service.CategoryStats
// @Router /categories/stats [get]
func (s *Server) GetCategoryStats(c *fiber.Ctx) error {
	stats, err := s.categoryService.Stats(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(stats)
}

// CreateCategory handles POST /api/categories
// @Summary Create category
// @Tags admin
// @Security BearerAuth
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categoryService.CreateCategory(c.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/categories/:id
// @Summary Update category
// @Tags admin
// @Security BearerAuth
// @Router /categories/{id} [put]
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, serr := s.categoryService.UpdateCategory(c.Context(), service.UpdateCategoryInput{
		CategoryID:  id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /api/admin/categories/:id
// @Summary Delete category
// @Tags admin
// @Security BearerAuth
// @Router /admin/categories/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.categoryService.DeleteCategory(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}
