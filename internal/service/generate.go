package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"quickforge/internal/clients"
	"quickforge/internal/models"
	"quickforge/internal/observability"
	"quickforge/internal/repository"
)

// MaxResumeSize caps uploaded resume files at 5MB.
const MaxResumeSize = 5 << 20

// articleTokens maps requested article lengths to generator token limits.
var articleTokens = map[string]int{
	"short":  800,
	"medium": 1200,
	"long":   1600,
}

// GenerationService runs the generate-and-persist flows: quota check,
// external generation, creation record, usage report.
type GenerationService struct {
	creations repository.CreationRepository
	quota     *QuotaGate
	generator TextGenerator
	blobs     BlobStore
}

func NewGenerationService(creations repository.CreationRepository, quota *QuotaGate, generator TextGenerator, blobs BlobStore) *GenerationService {
	return &GenerationService{creations: creations, quota: quota, generator: generator, blobs: blobs}
}

// GenerateArticleInput carries the parameters for article generation.
type GenerateArticleInput struct {
	UserID string
	Prompt string
	Length string
}

func (s *GenerationService) GenerateArticle(ctx context.Context, input GenerateArticleInput) (*models.Creation, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, models.NewValidationError("prompt is required")
	}

	user, err := s.quota.Check(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	tokens, ok := articleTokens[input.Length]
	if !ok {
		tokens = articleTokens["medium"]
	}

	content, err := s.generator.GenerateText(ctx, input.Prompt, tokens)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(models.CreationTypeArticle, "error").Inc()
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeArticle,
		PromptText: input.Prompt,
		Content:    content,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}

	s.quota.ReportUsage(ctx, user)
	observability.GenerationsTotal.WithLabelValues(models.CreationTypeArticle, "ok").Inc()
	return creation, nil
}

// GenerateBlogTitleInput carries the parameters for title generation.
type GenerateBlogTitleInput struct {
	UserID   string
	Keyword  string
	Category string
}

func (s *GenerationService) GenerateBlogTitle(ctx context.Context, input GenerateBlogTitleInput) (*models.Creation, error) {
	if strings.TrimSpace(input.Keyword) == "" {
		return nil, models.NewValidationError("keyword is required")
	}

	user, err := s.quota.Check(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Generate a blog title for the keyword %q in the category %q.",
		input.Keyword, input.Category)
	content, err := s.generator.GenerateText(ctx, prompt, 100)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(models.CreationTypeBlogTitle, "error").Inc()
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeBlogTitle,
		PromptText: prompt,
		Content:    content,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}

	s.quota.ReportUsage(ctx, user)
	observability.GenerationsTotal.WithLabelValues(models.CreationTypeBlogTitle, "ok").Inc()
	return creation, nil
}

// requirePremium loads the user and rejects non-premium plans.
func (s *GenerationService) requirePremium(ctx context.Context, userID string) (clients.IdentityUser, error) {
	user, err := s.quota.identity.GetUser(ctx, userID)
	if err != nil {
		return user, err
	}
	if user.Plan != clients.PlanPremium {
		return user, models.NewPlanForbiddenError("this feature is only available on the premium plan")
	}
	return user, nil
}

// GenerateImageInput carries the parameters for image generation.
type GenerateImageInput struct {
	UserID  string
	Prompt  string
	Publish bool
}

// GenerateImage is premium only. The generated bytes are pushed to the
// blob store and the creation stores the public URL.
func (s *GenerationService) GenerateImage(ctx context.Context, input GenerateImageInput) (*models.Creation, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, models.NewValidationError("prompt is required")
	}

	user, err := s.requirePremium(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	img, err := s.generator.GenerateImage(ctx, input.Prompt)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(models.CreationTypeImage, "error").Inc()
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, uuid.NewString()+".png", bytes.NewReader(img))
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(models.CreationTypeImage, "error").Inc()
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeImage,
		PromptText: input.Prompt,
		Content:    url,
		Publish:    input.Publish,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}

	observability.GenerationsTotal.WithLabelValues(models.CreationTypeImage, "ok").Inc()
	return creation, nil
}

// ImageEditInput carries an uploaded image for server-side editing.
type ImageEditInput struct {
	UserID   string
	Filename string
	File     io.Reader
	// ObjectName names the object to erase; only used by RemoveImageObject.
	ObjectName string
}

// RemoveImageBackground is premium only.
func (s *GenerationService) RemoveImageBackground(ctx context.Context, input ImageEditInput) (*models.Creation, error) {
	user, err := s.requirePremium(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.UploadWithTransform(ctx, uuid.NewString()+".png", input.File,
		clients.TransformRemoveBackground)
	if err != nil {
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeImage,
		PromptText: "Remove background from image",
		Content:    url,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}
	return creation, nil
}

// RemoveImageObject is premium only. The object name must be a single
// object description.
func (s *GenerationService) RemoveImageObject(ctx context.Context, input ImageEditInput) (*models.Creation, error) {
	object := strings.TrimSpace(input.ObjectName)
	if object == "" {
		return nil, models.NewValidationError("object name is required")
	}

	user, err := s.requirePremium(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	transform := fmt.Sprintf("%s:prompt_%s", clients.TransformRemoveObject, object)
	url, err := s.blobs.UploadWithTransform(ctx, uuid.NewString()+".png", input.File, transform)
	if err != nil {
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeImage,
		PromptText: fmt.Sprintf("Removed %s from image", object),
		Content:    url,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}
	return creation, nil
}

// ReviewResumeInput carries an uploaded resume for analysis.
type ReviewResumeInput struct {
	UserID   string
	Filename string
	Size     int64
	File     io.Reader
}

// ReviewResume is premium only and rejects files over MaxResumeSize.
func (s *GenerationService) ReviewResume(ctx context.Context, input ReviewResumeInput) (*models.Creation, error) {
	if input.Size > MaxResumeSize {
		return nil, models.NewValidationError("resume file size exceeds allowed size (5MB)")
	}

	user, err := s.requirePremium(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	review, err := s.generator.ReviewResume(ctx, input.Filename, input.File)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(models.CreationTypeResume, "error").Inc()
		return nil, err
	}

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypeResume,
		PromptText: "Review the uploaded resume",
		Content:    review,
		Username:   user.Name,
		UserImage:  user.ImageURL,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}

	observability.GenerationsTotal.WithLabelValues(models.CreationTypeResume, "ok").Inc()
	return creation, nil
}

// EnhancePrompt rewrites a rough prompt with the text model. It counts
// against the free quota but produces no creation record.
func (s *GenerationService) EnhancePrompt(ctx context.Context, userID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", models.NewValidationError("prompt is required")
	}

	user, err := s.quota.Check(ctx, userID)
	if err != nil {
		return "", err
	}

	enhanced, err := s.generator.EnhancePrompt(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.quota.ReportUsage(ctx, user)
	return enhanced, nil
}
