package server

import (
	"threadloom/internal/models"
	"threadloom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/messages?page=N&size=M
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", s.config.FeedPageSize)

	feed, err := s.messageService.ListRootMessages(ctx, page, size)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(feed)
}

// GetMessageTree handles GET /api/messages/:id
func (s *Server) GetMessageTree(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")

	node, err := s.messageService.GetMessageTree(ctx, id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(node)
}

// CreateMessage handles POST /api/messages
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Text        string `json:"text"`
		CommunityID string `json:"community_id,omitempty"`
		Path        string `json:"path,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.messageService.CreateMessage(ctx, service.CreateMessageInput{
		Text:        req.Text,
		AuthorID:    currentUserID(c),
		CommunityID: req.CommunityID,
		Path:        req.Path,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// CreateReply handles POST /api/messages/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Text string `json:"text"`
		Path string `json:"path,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.messageService.CreateReply(ctx, service.CreateReplyInput{
		ParentID: c.Params("id"),
		Text:     req.Text,
		AuthorID: currentUserID(c),
		Path:     req.Path,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")
	path := c.Query("path")

	if err := s.messageService.DeleteMessage(ctx, id, path); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
