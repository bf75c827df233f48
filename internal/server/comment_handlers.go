package server

import (
	"agora/internal/middleware"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/discussions/:id/comments
// @Summary Comment tree of a discussion
// @Description Root comments oldest first, each with its replies nested
// @Tags comments
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {array} models.CommentNode
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /discussions/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	discussionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tree, err := s.services.Comments.ListComments(c.UserContext(), discussionID, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tree)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a discussion or reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{discussion_id=int,parent_id=int,content=string} true "Comment"
// @Success 201 {object} models.CommentNode
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		DiscussionID uint   `json:"discussion_id"`
		ParentID     *uint  `json:"parent_id"`
		Content      string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	node, err := s.services.Comments.CreateComment(c.UserContext(), service.CreateCommentInput{
		AuthorID:     middleware.UserID(c),
		DiscussionID: req.DiscussionID,
		ParentID:     req.ParentID,
		Content:      req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(node)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.CommentNode
// @Failure 403 {object} models.ErrorResponse
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
		return badBody(c)
	}
	node, err := s.services.Comments.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		ActorID:   middleware.UserID(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(node)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment and its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{deleted=int}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	removed, err := s.services.Comments.DeleteComment(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": removed})
}

// LikeComment handles POST /api/comments/:id/like
// @Summary Like a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.LikeState
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.services.Comments.LikeComment(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// UnlikeComment handles POST /api/comments/:id/unlike
// @Summary Remove a like from a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.LikeState
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/unlike [post]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.services.Comments.UnlikeComment(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// HasLikedComment handles GET /api/comments/:id/liked
func (s *Server) HasLikedComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.services.Comments.HasLiked(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
