package server

import (
	"basspress/internal/models"
	"basspress/internal/repository"
	"basspress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListArticles handles GET /api/articles
// @Summary List published articles
// @Tags articles
// @Produce json
// @Param category_id query int false "Filter by category"
// @Param author_id query int false "Filter by author"
// @Param tag query string false "Filter by tag"
// @Param search query string false "Title/content search"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{articles=[]models.Article,total=int}
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.ArticleFilter{
		CategoryID: uint(c.QueryInt("category_id", 0)),
		AuthorID:   uint(c.QueryInt("author_id", 0)),
		Tag:        c.Query("tag"),
		Search:     c.Query("search"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}

	articles, total, err := s.articleService.ListPublished(c.Context(), filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles, "total": total})
}

// TrendingArticles handles GET /api/articles/trending
// @Summary Trending articles
// @Tags articles
// @Produce json
// @Success 200 {object} object{articles=[]models.Article}
// @Router /articles/trending [get]
func (s *Server) TrendingArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.Trending(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles})
}

// RecentArticles handles GET /api/articles/recent
// @Summary Recently published articles
// @Tags articles
// @Produce json
// @Success 200 {object} object{articles=[]models.Article}
// @Router /articles/recent [get]
func (s *Server) RecentArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.Recent(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles})
}

// GetArticle handles GET /api/articles/:slug
// @Summary Get article by slug
// @Description Fetch one article. Reading a published article counts a view.
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} models.Article
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{slug} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	slug := c.Params("slug")
	article, err := s.articleService.GetArticle(c.Context(), slug, true)
	if err != nil {
		return respondErr(c, err)
	}
	// Unpublished articles are only visible to staff and their author.
	if !article.IsPublished() {
		user := currentUser(c)
		if user == nil || (article.AuthorID != user.ID && !user.CanModerate()) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Article", slug))
		}
	}
	return c.JSON(article)
}

// CreateArticle handles POST /api/articles
// @Summary Create article draft
// @Tags articles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,excerpt=string,category_id=int,tags=string} true "Article fields"
// @Success 201 {object} models.Article
// @Failure 400 {object} models.ErrorResponse
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		Excerpt    string `json:"excerpt"`
		CategoryID uint   `json:"category_id"`
		Tags       string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, err := s.articleService.CreateArticle(c.Context(), service.CreateArticleInput{
		AuthorID:   c.Locals("userID").(uint),
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PUT /api/articles/:id
// @Summary Update article
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id} [put]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		Excerpt    string `json:"excerpt"`
		CategoryID uint   `json:"category_id"`
		Tags       string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user := currentUser(c)
	article, serr := s.articleService.UpdateArticle(c.Context(), service.UpdateArticleInput{
		ArticleID:  id,
		ActorID:    user.ID,
		ActorRole:  user.Role,
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	})
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:id
// @Summary Delete article
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := currentUser(c)
	if serr := s.articleService.DeleteArticle(c.Context(), id, user.ID, user.Role); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SubmitArticle handles POST /api/articles/:id/submit
// @Summary Submit draft for review
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id}/submit [post]
func (s *Server) SubmitArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := currentUser(c)
	article, serr := s.articleService.Submit(c.Context(), id, user.ID, user.Role)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(article)
}

// PublishArticle handles POST /api/articles/:id/publish
// @Summary Publish article
// @Description Publish own article, or any article as moderator
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id}/publish [post]
func (s *Server) PublishArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user := currentUser(c)
	article, serr := s.articleService.Publish(c.Context(), id, user.ID, user.Role)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(article)
}

// ArchiveArticle handles POST /api/articles/:id/archive
// @Summary Archive article
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id}/archive [post]
func (s *Server) ArchiveArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	article, serr := s.articleService.Archive(c.Context(), id)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(article)
}

// RateArticle handles POST /api/articles/:id/rate
// @Summary Rate article
// @Description Fold one 1-5 rating into the running average
// @Tags articles
// @Security BearerAuth
// @Router /articles/{id}/rate [post]
func (s *Server) RateArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Rating float64 `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, serr := s.articleService.Rate(c.Context(), id, req.Rating)
	if serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{
		"rating_average": article.RatingAverage,
		"rating_count":   article.RatingCount,
	})
}

// LikeArticle handles POST /api/articles/:id/like
func (s *Server) LikeArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.articleService.Like(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// UnlikeArticle handles DELETE /api/articles/:id/like
func (s *Server) UnlikeArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.articleService.Unlike(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ShareArticle handles POST /api/articles/:id/share
func (s *Server) ShareArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if serr := s.articleService.Share(c.Context(), id); serr != nil {
		return respondErr(c, serr)
	}
	return c.JSON(fiber.Map{"success": true})
}
