package server

import (
	"threadloom/internal/models"
	"threadloom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCommunities handles GET /api/communities?page=N&size=M
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	ctx := c.Context()

	communities, hasNext, err := s.communityService.ListCommunities(ctx,
		c.QueryInt("page", 1), c.QueryInt("size", 20))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"communities": communities, "has_next": hasNext})
}

// GetCommunity handles GET /api/communities/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	ctx := c.Context()

	community, err := s.communityService.GetCommunity(ctx, c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(community)
}

// GetCommunityMessages handles GET /api/communities/:id/messages
func (s *Server) GetCommunityMessages(c *fiber.Ctx) error {
	ctx := c.Context()

	nodes, err := s.communityService.CommunityMessages(ctx, c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"messages": nodes})
}

// CreateCommunity handles POST /api/communities
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		CommunityID string `json:"community_id"`
		Username    string `json:"username"`
		Name        string `json:"name"`
		Bio         string `json:"bio,omitempty"`
		AvatarURL   string `json:"avatar_url,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	community, err := s.communityService.CreateCommunity(ctx, service.CreateCommunityInput{
		CommunityID:   req.CommunityID,
		Username:      req.Username,
		Name:          req.Name,
		Bio:           req.Bio,
		AvatarURL:     req.AvatarURL,
		CreatorUserID: currentUserID(c),
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	ctx := c.Context()

	if err := s.communityService.JoinCommunity(ctx, currentUserID(c), c.Params("id")); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
