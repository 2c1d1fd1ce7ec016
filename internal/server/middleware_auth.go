package server

import (
	"context"
	"strings"

	"basspress/internal/middleware"
	"basspress/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns the authentication middleware. It resolves the
// bearer token to a user and stores both in locals. The error code
// tells clients why authentication failed: NO_TOKEN, INVALID_TOKEN,
// TOKEN_EXPIRED, USER_NOT_FOUND or ACCOUNT_BLOCKED.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewTokenError(models.CodeNoToken, "Authorization required"))
		}

		user, err := s.authService.VerifyAccess(c.Context(), tokenString)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is presented but never
// rejects the request. Requests without a usable token proceed as
// anonymous.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		user, err := s.authService.VerifyAccess(c.Context(), tokenString)
		if err != nil {
			return c.Next()
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RoleRequired returns middleware enforcing a minimum role. Must be
// placed after AuthRequired so the user is available in locals.
func (s *Server) RoleRequired(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewTokenError(models.CodeNoToken, "Authorization required"))
		}
		if !user.HasRole(required) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError(string(required)+" access required"))
		}
		return c.Next()
	}
}

// currentUser returns the authenticated user stored by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
