package server

import (
	"github.com/gofiber/fiber/v2"

	"quickforge/internal/models"
	"quickforge/internal/service"
)

type promptRequest struct {
	Title    string   `json:"title"`
	Prompt   string   `json:"prompt"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	IsPublic bool     `json:"is_public"`
	Publish  bool     `json:"publish"`
}

func (s *Server) handleCreatePrompt(c *fiber.Ctx) error {
	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	creation, err := s.creation.CreatePrompt(c.UserContext(), service.CreatePromptInput{
		UserID: userID, Title: req.Title, Prompt: req.Prompt, Content: req.Content,
		Tags: req.Tags, IsPublic: req.IsPublic, Publish: req.Publish,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "creation": creation})
}

func (s *Server) handleEditPrompt(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	creation, err := s.creation.EditPrompt(c.UserContext(), service.EditPromptInput{
		ID: id, UserID: userID, Title: req.Title, Prompt: req.Prompt, Content: req.Content,
		Tags: req.Tags, IsPublic: req.IsPublic, Publish: req.Publish,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "creation": creation})
}

func (s *Server) handleDeleteCreation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, isAdmin := currentUser(c)

	if err := s.creation.DeleteCreation(c.UserContext(), id, userID, isAdmin); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "creation deleted"})
}

func (s *Server) handleGetUserCreations(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	limit, offset := parsePagination(c)

	creations, err := s.creation.GetUserCreations(c.UserContext(), userID, c.Query("type"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "creations": creations})
}

// handleGetUserPrompts is the type-fixed variant older clients call.
func (s *Server) handleGetUserPrompts(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	limit, offset := parsePagination(c)

	creations, err := s.creation.GetUserCreations(c.UserContext(), userID, models.CreationTypePrompt, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "creations": creations})
}

func (s *Server) handleGetPublishedCreations(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	limit, offset := parsePagination(c)

	creations, err := s.feed.ComposePublicFeed(c.UserContext(), c.Query("filter"), userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "creations": creations})
}

type toggleLikeRequest struct {
	ID uint `json:"id"`
}

func (s *Server) handleToggleLike(c *fiber.Ctx) error {
	var req toggleLikeRequest
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return respondError(c, models.NewValidationError("creation id is required"))
	}
	userID, _ := currentUser(c)

	result, err := s.creation.ToggleLike(c.UserContext(), req.ID, userID)
	if err != nil {
		return respondError(c, err)
	}

	message := "Creation unliked"
	if result.Liked {
		message = "Creation liked"
	}
	return c.JSON(fiber.Map{
		"success": true, "message": message,
		"liked": result.Liked, "likes_count": result.LikesCount,
	})
}
