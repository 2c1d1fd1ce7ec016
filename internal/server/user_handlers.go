package server

import (
	"basspress/internal/models"
	"basspress/internal/repository"
	"basspress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Own profile
// @Tags users
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Bio       string `json:"bio"`
		Avatar    string `json:"avatar"`
		Location  string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    c.Locals("userID").(uint),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
		Location:  req.Location,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Public profile
// @Tags users
// @Security BearerAuth
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List accounts
// @Tags users
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active state"
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.UserFilter{
		Role:   models.Role(c.Query("role")),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if v := c.Query("active"); v != "" {
		active := v == "true" || v == "1"
		filter.Active = &active
	}

	users, err := s.userService.ListUsers(c.Context(), filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
