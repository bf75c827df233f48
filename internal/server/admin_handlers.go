package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateUser handles POST /api/admin/users
// @Summary Create an administrator
// @Description The email must belong to the configured admin domain
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,email=string,password=string} true "Administrator"
// @Success 201 {object} models.UserView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/users [post]
func (s *Server) AdminCreateUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	user, err := s.services.Users.CreateAdmin(c.UserContext(), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewUserView(user, true))
}

// AdminDeleteUser handles DELETE /api/admin/users/:id
// @Summary Delete a user
// @Description Best effort; the outcome is reported as text
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{status=string}
// @Router /admin/users/{id} [delete]
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	status := s.services.Users.DeleteUser(c.UserContext(), id)
	code := fiber.StatusOK
	if status != service.UserDeletedStatus {
		code = fiber.StatusUnprocessableEntity
	}
	return c.Status(code).JSON(fiber.Map{"status": status})
}
