package server

import (
	"basspress/internal/models"
	"basspress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats handles GET /api/admin/stats
// @Summary Site-wide aggregates
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} service.SiteStats
// @Router /admin/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.Stats(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(stats)
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Configured feature flags
// @Tags admin
// @Security BearerAuth
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags":    s.featureFlags.Raw(),
		"resolved": s.featureFlags.Snapshot(c.Locals("userID").(uint)),
	})
}

// SetUserRole handles PUT /api/admin/users/:id/role
// @Summary Change account role
// @Tags admin
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, serr := s.adminService.SetUserRole(c.Context(),
		c.Locals("userID").(uint), id, models.Role(req.Role))
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(user)
}

// SetUserActive handles PUT /api/users/:id/active
// @Summary Block or unblock account
// @Tags users
// @Security BearerAuth
// @Router /users/{id}/active [put]
func (s *Server) SetUserActive(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("active is required"))
	}

	user, serr := s.adminService.SetUserActive(c.Context(),
		c.Locals("userID").(uint), id, *req.Active)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(user)
}

// ForceArticleStatus handles PUT /api/admin/articles/:id/status
// @Summary Force article status
// @Description Move an article to any status, bypassing normal transitions
// @Tags admin
// @Security BearerAuth
// @Router /admin/articles/{id}/status [put]
func (s *Server) ForceArticleStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, serr := s.adminService.ForceArticleStatus(c.Context(), id, models.ArticleStatus(req.Status))
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(article)
}

// BulkModerateComments handles POST /api/admin/comments/bulk
// @Summary Bulk moderate comments
// @Description Apply approve, reject, spam or delete to many comments; returns the affected count
// @Tags admin
// @Security BearerAuth
// @Router /admin/comments/bulk [post]
func (s *Server) BulkModerateComments(c *fiber.Ctx) error {
	var req struct {
		CommentIDs []uint `json:"comment_ids"`
		Action     string `json:"action"`
		Reason     string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.adminService.BulkModerate(c.Context(), service.BulkModerateInput{
		CommentIDs:  req.CommentIDs,
		ModeratorID: c.Locals("userID").(uint),
		Action:      req.Action,
		Reason:      models.ModerationReason(req.Reason),
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
