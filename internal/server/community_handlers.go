package server

import (
	"agora/internal/middleware"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type communityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsPrivate   bool   `json:"is_private"`
}

func (r communityRequest) input() service.CommunityInput {
	return service.CommunityInput{
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		IsPrivate:   r.IsPrivate,
	}
}

// ListCommunities handles GET /api/communities
// @Summary List public communities
// @Tags communities
// @Produce json
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.CommunityView]
// @Router /communities [get]
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	p := s.parsePagination(c)
	page, err := s.services.Communities.ListPublic(c.UserContext(), middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// SearchCommunities handles GET /api/communities/search
// @Summary Search communities
// @Description Matches names and descriptions; private communities the caller cannot see are skipped
// @Tags communities
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "0-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.Page[models.CommunityView]
// @Failure 400 {object} models.ErrorResponse
// @Router /communities/search [get]
func (s *Server) SearchCommunities(c *fiber.Ctx) error {
	p := s.parsePagination(c)
	page, err := s.services.Communities.Search(c.UserContext(), c.Query("q"), middleware.UserID(c), p.Page, p.Size)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetUserCommunities handles GET /api/communities/user/:userId
// @Summary Communities a user belongs to
// @Tags communities
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.CommunityView
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/user/{userId} [get]
func (s *Server) GetUserCommunities(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	list, err := s.services.Communities.UserCommunities(c.UserContext(), userID, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(list)
}

// CreateCommunity handles POST /api/communities
// @Summary Create a community
// @Description The creator becomes its first member
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string,image_url=string,is_private=bool} true "Community"
// @Success 201 {object} models.CommunityView
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /communities [post]
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req communityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := s.services.Communities.CreateCommunity(c.UserContext(), req.input(), middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetCommunity handles GET /api/communities/:id
// @Summary Get a community
// @Tags communities
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} models.CommunityView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{id} [get]
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.services.Communities.GetCommunity(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateCommunity handles PUT /api/communities/:id
// @Summary Update a community
// @Description Only the creator may update
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body object{name=string,description=string,image_url=string,is_private=bool} true "Community"
// @Success 200 {object} models.CommunityView
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /communities/{id} [put]
func (s *Server) UpdateCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req communityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := s.services.Communities.UpdateCommunity(c.UserContext(), id, req.input(), middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteCommunity handles DELETE /api/communities/:id
// @Summary Delete a community
// @Description Removes its discussions, comments, likes and members
// @Tags communities
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /communities/{id} [delete]
func (s *Server) DeleteCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.services.Communities.DeleteCommunity(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinCommunity handles POST /api/communities/:id/join
// @Summary Join a community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} models.CommunityView
// @Failure 409 {object} models.ErrorResponse
// @Router /communities/{id}/join [post]
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.services.Communities.Join(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// LeaveCommunity handles POST /api/communities/:id/leave
// @Summary Leave a community
// @Description The creator cannot leave their own community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} models.CommunityView
// @Failure 409 {object} models.ErrorResponse
// @Router /communities/{id}/leave [post]
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.services.Communities.Leave(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// GetMemberStatus handles GET /api/communities/:id/member-status
// @Summary Whether the caller is a member
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} object{member=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{id}/member-status [get]
func (s *Server) GetMemberStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	member, err := s.services.Communities.MemberStatus(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"member": member})
}
