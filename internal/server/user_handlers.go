package server

import (
	"threadloom/internal/models"
	"threadloom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SaveMyProfile handles PUT /api/users/me
func (s *Server) SaveMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Username  string `json:"username"`
		Name      string `json:"name"`
		Bio       string `json:"bio,omitempty"`
		AvatarURL string `json:"avatar_url,omitempty"`
		Path      string `json:"path,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SaveProfile(ctx, service.SaveProfileInput{
		UserID:    currentUserID(c),
		Username:  req.Username,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Path:      req.Path,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()

	user, err := s.userService.GetUser(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.Context()

	user, err := s.userService.GetUser(ctx, c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetUsers handles GET /api/users?q=...&page=N&size=M
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.Context()

	page, err := s.userService.ListUsers(ctx, service.ListUsersInput{
		RequestingUserID: currentUserID(c),
		Search:           c.Query("q"),
		PageNumber:       c.QueryInt("page", 1),
		PageSize:         c.QueryInt("size", s.config.UserPageSize),
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(page)
}

// GetUserMessages handles GET /api/users/:id/messages
func (s *Server) GetUserMessages(c *fiber.Ctx) error {
	ctx := c.Context()

	nodes, err := s.userService.UserMessages(ctx, c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"messages": nodes})
}

// GetMyActivity handles GET /api/users/me/activity
func (s *Server) GetMyActivity(c *fiber.Ctx) error {
	ctx := c.Context()

	items, err := s.userService.Activity(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"activity": items})
}
