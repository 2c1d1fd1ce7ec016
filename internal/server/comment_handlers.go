package server

import (
	"basspress/internal/models"
	"basspress/internal/repository"
	"basspress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticleComments handles GET /api/articles/:id/comments
// @Summary List approved comments for an article
// @Tags comments
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} object{comments=[]models.Comment,total=int}
// @Router /articles/{id}/comments [get]
func (s *Server) GetArticleComments(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	comments, total, serr := s.commentService.ListByArticle(c.Context(), articleID, p.Limit, p.Offset)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"comments": comments, "total": total})
}

// CreateComment handles POST /api/articles/:id/comments
// @Summary Create comment
// @Description New comments pass the spam classifier and enter the moderation queue.
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body object{content=string,parent_id=int} true "Comment fields"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Router /articles/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, serr := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		ArticleID: articleID,
		AuthorID:  c.Locals("userID").(uint),
		ParentID:  req.ParentID,
		Content:   req.Content,
	})
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit own comment
// @Tags comments
// @Security BearerAuth
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, serr := s.commentService.EditComment(c.Context(), service.EditCommentInput{
		CommentID: id,
		ActorID:   c.Locals("userID").(uint),
		Content:   req.Content,
	})
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := currentUser(c)
	if serr := s.commentService.DeleteComment(c.Context(), id, user.ID, user.Role); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.commentService.Like(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DislikeComment handles POST /api/comments/:id/dislike
func (s *Server) DislikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.commentService.Dislike(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetModerationQueue handles GET /api/moderation/queue
// @Summary List comments awaiting moderation
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param status query string false "Queue status (default pending)"
// @Success 200 {object} object{comments=[]models.Comment,total=int}
// @Router /moderation/queue [get]
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.CommentFilter{
		Status:    models.CommentStatus(c.Query("status")),
		ArticleID: uint(c.QueryInt("article_id", 0)),
		Limit:     p.Limit,
		Offset:    p.Offset,
	}

	comments, total, err := s.commentService.Queue(c.Context(), filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "total": total})
}

// GetModerationStats handles GET /api/moderation/stats
// @Summary Comment counts by moderation status
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{by_status=map[string]int64}
// @Router /moderation/stats [get]
func (s *Server) GetModerationStats(c *fiber.Ctx) error {
	byStatus, err := s.commentService.Stats(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"by_status": byStatus})
}

// ModerateComment handles POST /api/moderation/comments/:id
// @Summary Decide a pending comment
// @Description Apply approve, reject or spam to a pending comment
// @Tags moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{action=string,reason=string,notes=string} true "Decision"
// @Success 200 {object} models.Comment
// @Failure 409 {object} models.ErrorResponse
// @Router /moderation/comments/{id} [post]
func (s *Server) ModerateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, serr := s.commentService.Moderate(c.Context(), service.ModerateCommentInput{
		CommentID:   id,
		ModeratorID: c.Locals("userID").(uint),
		Action:      req.Action,
		Reason:      models.ModerationReason(req.Reason),
		Notes:       req.Notes,
	})
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(comment)
}
