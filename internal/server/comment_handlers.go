package server

import (
	"github.com/gofiber/fiber/v2"

	"quickforge/internal/models"
	"quickforge/internal/service"
)

type addCommentRequest struct {
	CreationID uint   `json:"creation_id"`
	Text       string `json:"text"`
}

func (s *Server) handleAddComment(c *fiber.Ctx) error {
	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil || req.CreationID == 0 {
		return respondError(c, models.NewValidationError("creation id is required"))
	}
	userID, _ := currentUser(c)

	comment, err := s.comments.Add(c.UserContext(), service.AddCommentInput{
		CreationID: req.CreationID, UserID: userID, Text: req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "comment": comment})
}

func (s *Server) handleGetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	comments, err := s.comments.List(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "comments": comments})
}
