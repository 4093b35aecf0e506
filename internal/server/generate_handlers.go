package server

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"quickforge/internal/models"
	"quickforge/internal/service"
)

type generateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length string `json:"length"`
}

func (s *Server) handleGenerateArticle(c *fiber.Ctx) error {
	var req generateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	creation, err := s.generation.GenerateArticle(c.UserContext(), service.GenerateArticleInput{
		UserID: userID, Prompt: req.Prompt, Length: req.Length,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

type generateBlogTitleRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

func (s *Server) handleGenerateBlogTitle(c *fiber.Ctx) error {
	var req generateBlogTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	creation, err := s.generation.GenerateBlogTitle(c.UserContext(), service.GenerateBlogTitleInput{
		UserID: userID, Keyword: req.Keyword, Category: req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

type generateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

func (s *Server) handleGenerateImage(c *fiber.Ctx) error {
	var req generateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	creation, err := s.generation.GenerateImage(c.UserContext(), service.GenerateImageInput{
		UserID: userID, Prompt: req.Prompt, Publish: req.Publish,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

// receiveUpload stages a multipart upload in a temp file and returns
// an open handle plus a cleanup function. The random name keeps
// concurrent uploads from colliding.
func (s *Server) receiveUpload(c *fiber.Ctx, field string) (*os.File, string, int64, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", 0, nil, models.NewValidationError(field + " file is required")
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return nil, "", 0, nil, models.NewInternalError(err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, "", 0, nil, models.NewInternalError(err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(tmpPath)
	}
	return f, fileHeader.Filename, fileHeader.Size, cleanup, nil
}

func (s *Server) handleRemoveImageBackground(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	f, name, _, cleanup, err := s.receiveUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	defer cleanup()

	creation, err := s.generation.RemoveImageBackground(c.UserContext(), service.ImageEditInput{
		UserID: userID, Filename: name, File: f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

func (s *Server) handleRemoveImageObject(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	object := c.FormValue("object")

	f, name, _, cleanup, err := s.receiveUpload(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	defer cleanup()

	creation, err := s.generation.RemoveImageObject(c.UserContext(), service.ImageEditInput{
		UserID: userID, Filename: name, File: f, ObjectName: object,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

func (s *Server) handleReviewResume(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	f, name, size, cleanup, err := s.receiveUpload(c, "resume")
	if err != nil {
		return respondError(c, err)
	}
	defer cleanup()

	creation, err := s.generation.ReviewResume(c.UserContext(), service.ReviewResumeInput{
		UserID: userID, Filename: name, Size: size, File: f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": creation.Content, "creation": creation})
}

type enhancePromptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleEnhancePrompt(c *fiber.Ctx) error {
	var req enhancePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	userID, _ := currentUser(c)

	enhanced, err := s.generation.EnhancePrompt(c.UserContext(), userID, req.Prompt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "content": enhanced})
}
