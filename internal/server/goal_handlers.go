package server

import (
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type goalRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil, models.NewValidationError(field + " must be a YYYY-MM-DD date")
	}
	return &t, nil
}

func (r goalRequest) input() (service.GoalInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return service.GoalInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return service.GoalInput{}, err
	}
	return service.GoalInput{
		Title:       r.Title,
		Description: r.Description,
		TargetValue: r.TargetValue,
		Unit:        r.Unit,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func (s *Server) goalInput(c *fiber.Ctx) (service.GoalInput, bool) {
	var req goalRequest
	if err := c.BodyParser(&req); err != nil {
		_ = badBody(c)
		return service.GoalInput{}, false
	}
	in, err := req.input()
	if err != nil {
		_ = s.respondError(c, err)
		return service.GoalInput{}, false
	}
	return in, true
}

// ListGoals handles GET /api/goals
// @Summary List the caller's goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param status query string false "IN_PROGRESS, COMPLETED or FAILED"
// @Success 200 {array} models.GoalView
// @Failure 400 {object} models.ErrorResponse
// @Router /goals [get]
func (s *Server) ListGoals(c *fiber.Ctx) error {
	status := models.GoalStatus(strings.ToUpper(c.Query("status")))
	goals, err := s.services.Goals.ListGoals(c.UserContext(), middleware.UserID(c), status)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(goals)
}

// CreateGoal handles POST /api/goals
// @Summary Create a goal
// @Description Starts IN_PROGRESS; start_date defaults to today
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,target_value=number,unit=string,start_date=string,end_date=string} true "Goal"
// @Success 201 {object} models.GoalView
// @Failure 400 {object} models.ErrorResponse
// @Router /goals [post]
func (s *Server) CreateGoal(c *fiber.Ctx) error {
	in, ok := s.goalInput(c)
	if !ok {
		return nil
	}
	view, err := s.services.Goals.CreateGoal(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetGoal handles GET /api/goals/:id
// @Summary Get one of the caller's goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Success 200 {object} models.GoalView
// @Failure 404 {object} models.ErrorResponse
// @Router /goals/{id} [get]
func (s *Server) GetGoal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.services.Goals.GetGoal(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateGoal handles PUT /api/goals/:id
// @Summary Update a goal
// @Description Replaces the goal's fields; progress and status are kept
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body object{title=string,description=string,target_value=number,unit=string,start_date=string,end_date=string} true "Goal"
// @Success 200 {object} models.GoalView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /goals/{id} [put]
func (s *Server) UpdateGoal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	in, ok := s.goalInput(c)
	if !ok {
		return nil
	}
	view, err := s.services.Goals.UpdateGoal(c.UserContext(), id, middleware.UserID(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteGoal handles DELETE /api/goals/:id
// @Summary Delete a goal
// @Tags goals
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /goals/{id} [delete]
func (s *Server) DeleteGoal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.services.Goals.DeleteGoal(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateGoalProgress handles PATCH /api/goals/:id/progress
// @Summary Log progress against a goal
// @Description Adds progress to the current value. Reaching the target completes the goal; progress after the end date without reaching it fails the goal.
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body object{progress=number} true "Progress"
// @Success 200 {object} models.GoalView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /goals/{id}/progress [patch]
func (s *Server) UpdateGoalProgress(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req progressRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Progress == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("progress is required"))
	}
	view, err := s.services.Goals.UpdateProgress(c.UserContext(), id, middleware.UserID(c), *req.Progress)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}
