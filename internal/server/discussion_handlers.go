package server

import (
	"agora/internal/middleware"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type discussionRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	CommunityID uint   `json:"community_id"`
}

func (r discussionRequest) input() service.DiscussionInput {
	return service.DiscussionInput{
		Title:       r.Title,
		Content:     r.Content,
		CommunityID: r.CommunityID,
	}
}

// CreateDiscussion handles POST /api/discussions
// @Summary Start a discussion
// @Description The author must be a member of the target community
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,community_id=int} true "Discussion"
// @Success 201 {object} models.DiscussionView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /discussions [post]
func (s *Server) CreateDiscussion(c *fiber.Ctx) error {
	var req discussionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := s.services.Discussions.CreateDiscussion(c.UserContext(), service.CreateDiscussionInput{
		AuthorID:        middleware.UserID(c),
		DiscussionInput: req.input(),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetDiscussion handles GET /api/discussions/:id
// @Summary Get a discussion
// @Tags discussions
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} models.DiscussionView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /discussions/{id} [get]
func (s *Server) GetDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.services.Discussions.GetDiscussion(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateDiscussion handles PUT /api/discussions/:id
// @Summary Edit or move a discussion
// @Description Author only; moving requires membership of the destination community
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Param request body object{title=string,content=string,community_id=int} true "Discussion"
// @Success 200 {object} models.DiscussionView
// @Failure 403 {object} models.ErrorResponse
// @Router /discussions/{id} [put]
func (s *Server) UpdateDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req discussionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := s.services.Discussions.UpdateDiscussion(c.UserContext(), service.UpdateDiscussionInput{
		ActorID:         middleware.UserID(c),
		DiscussionID:    id,
		DiscussionInput: req.input(),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteDiscussion handles DELETE /api/discussions/:id
// @Summary Delete a discussion
// @Description Allowed for the author and the community creator
// @Tags discussions
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /discussions/{id} [delete]
func (s *Server) DeleteDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.services.Discussions.DeleteDiscussion(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCommunityDiscussions handles GET /api/discussions/community/:communityId
// @Summary Discussions of a community, newest first
// @Tags discussions
// @Produce json
// @Param communityId path int true "Community ID"
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.DiscussionView]
// @Failure 403 {object} models.ErrorResponse
// @Router /discussions/community/{communityId} [get]
func (s *Server) GetCommunityDiscussions(c *fiber.Ctx) error {
	communityID, err := s.parseID(c, "communityId")
	if err != nil {
		return nil
	}
	p := s.parsePagination(c)
	page, err := s.services.Discussions.ListByCommunity(c.UserContext(), communityID, middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetUserDiscussions handles GET /api/discussions/user/:userId
// @Summary Discussions written by a user
// @Tags discussions
// @Produce json
// @Param userId path int true "User ID"
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.DiscussionView]
// @Failure 404 {object} models.ErrorResponse
// @Router /discussions/user/{userId} [get]
func (s *Server) GetUserDiscussions(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	p := s.parsePagination(c)
	page, err := s.services.Discussions.ListByUser(c.UserContext(), userID, middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// SearchDiscussions handles GET /api/discussions/search
// @Summary Search discussions by title and content
// @Tags discussions
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.DiscussionView]
// @Failure 400 {object} models.ErrorResponse
// @Router /discussions/search [get]
func (s *Server) SearchDiscussions(c *fiber.Ctx) error {
	p := s.parsePagination(c)
	page, err := s.services.Discussions.Search(c.UserContext(), c.Query("q"), middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetTrendingDiscussions handles GET /api/discussions/trending
// @Summary Most commented discussions
// @Tags discussions
// @Produce json
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.DiscussionView]
// @Router /discussions/trending [get]
func (s *Server) GetTrendingDiscussions(c *fiber.Ctx) error {
	p := s.parsePagination(c)
	page, err := s.services.Discussions.Trending(c.UserContext(), middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// LikeDiscussion handles POST /api/discussions/:id/like
// @Summary Like a discussion
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} models.LikeState
// @Failure 409 {object} models.ErrorResponse
// @Router /discussions/{id}/like [post]
func (s *Server) LikeDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.services.Discussions.LikeDiscussion(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// UnlikeDiscussion handles POST /api/discussions/:id/unlike
// @Summary Remove a like from a discussion
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} models.LikeState
// @Failure 409 {object} models.ErrorResponse
// @Router /discussions/{id}/unlike [post]
func (s *Server) UnlikeDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.services.Discussions.UnlikeDiscussion(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// HasLikedDiscussion handles GET /api/discussions/:id/liked
// @Summary Whether the caller liked a discussion
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} object{liked=bool}
// @Router /discussions/{id}/liked [get]
func (s *Server) HasLikedDiscussion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.services.Discussions.HasLiked(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
