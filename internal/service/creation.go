package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"quickforge/internal/cache"
	"quickforge/internal/models"
	"quickforge/internal/repository"
)

// CreationService handles manually authored prompts and the lifecycle
// operations shared by all creation types.
type CreationService struct {
	creations repository.CreationRepository
	likes     repository.LikeRepository
	identity  IdentityProvider
	rdb       *redis.Client
}

func NewCreationService(creations repository.CreationRepository, likes repository.LikeRepository, identity IdentityProvider, rdb *redis.Client) *CreationService {
	return &CreationService{creations: creations, likes: likes, identity: identity, rdb: rdb}
}

// CreatePromptInput carries a manually authored prompt.
type CreatePromptInput struct {
	UserID   string
	Title    string
	Prompt   string
	Content  string
	Tags     []string
	IsPublic bool
	Publish  bool
}

func (in *CreatePromptInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return models.NewValidationError("prompt is required")
	}
	if len(in.Tags) == 0 {
		return models.NewValidationError("tags are required")
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return models.NewValidationError("tags must not be empty")
		}
	}
	return nil
}

// authorSnapshot resolves the caller's display identity with an
// Anonymous fallback. An identity provider outage never blocks a write.
func (s *CreationService) authorSnapshot(ctx context.Context, userID string) (name, image string) {
	name = "Anonymous"
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "identity lookup failed, using anonymous snapshot",
			"user_id", userID, "error", err)
		return name, ""
	}
	if user.Name != "" {
		name = user.Name
	}
	return name, user.ImageURL
}

func (s *CreationService) CreatePrompt(ctx context.Context, input CreatePromptInput) (*models.Creation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	username, userImage := s.authorSnapshot(ctx, input.UserID)

	creation := &models.Creation{
		UserID:     input.UserID,
		Type:       models.CreationTypePrompt,
		Title:      strings.TrimSpace(input.Title),
		PromptText: input.Prompt,
		Content:    input.Content,
		Tags:       input.Tags,
		IsPublic:   input.IsPublic,
		Publish:    input.Publish,
		Username:   username,
		UserImage:  userImage,
	}
	if err := s.creations.Create(ctx, creation); err != nil {
		return nil, err
	}
	return creation, nil
}

// EditPromptInput carries an edit to an existing prompt creation.
type EditPromptInput struct {
	ID       uint
	UserID   string
	Title    string
	Prompt   string
	Content  string
	Tags     []string
	IsPublic bool
	Publish  bool
}

// EditPrompt updates a prompt the user owns. Non-owners get the same
// not-found answer as a missing id, so ids cannot be probed.
func (s *CreationService) EditPrompt(ctx context.Context, input EditPromptInput) (*models.Creation, error) {
	existing, err := s.creations.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != input.UserID {
		return nil, models.NewNotFoundError("creation")
	}
	if !existing.Editable() {
		return nil, models.NewValidationError("only prompt creations can be edited")
	}

	create := CreatePromptInput{Title: input.Title, Prompt: input.Prompt, Tags: input.Tags}
	if err := create.validate(); err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.PromptText = input.Prompt
	existing.Content = input.Content
	existing.Tags = input.Tags
	existing.IsPublic = input.IsPublic
	existing.Publish = input.Publish

	if err := s.creations.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteCreation removes a creation with its likes and comments. Only
// the owner or an admin may delete; others get not-found.
func (s *CreationService) DeleteCreation(ctx context.Context, id uint, userID string, isAdmin bool) error {
	existing, err := s.creations.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if existing.UserID != userID && !isAdmin {
		return models.NewNotFoundError("creation")
	}

	return s.creations.Delete(ctx, id)
}

// GetUserCreations lists the user's own creations, optionally filtered
// by type, newest first.
func (s *CreationService) GetUserCreations(ctx context.Context, userID, creationType string, limit, offset int) ([]models.Creation, error) {
	if creationType != "" && !models.ValidCreationType(creationType) {
		return nil, models.NewValidationError("unknown creation type")
	}
	return s.creations.ListByUser(ctx, userID, creationType, limit, offset)
}

// ToggleLikeResult reports the state after a like toggle.
type ToggleLikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// ToggleLike flips the user's like on a creation and returns the
// resulting state.
func (s *CreationService) ToggleLike(ctx context.Context, creationID uint, userID string) (*ToggleLikeResult, error) {
	if _, err := s.creations.GetByID(ctx, creationID, userID); err != nil {
		return nil, err
	}

	liked, err := s.likes.Toggle(ctx, creationID, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.likes.Count(ctx, creationID)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{Liked: liked, LikesCount: count}, nil
}

// RefreshIdentitySnapshot rewrites the denormalized author identity on
// all of the user's creations. Driven by identity provider webhooks.
func (s *CreationService) RefreshIdentitySnapshot(ctx context.Context, userID, username, userImage string) (int64, error) {
	rows, err := s.creations.UpdateIdentitySnapshot(ctx, userID, username, userImage)
	if err != nil {
		return 0, err
	}
	cache.Invalidate(ctx, s.rdb, cache.IdentityKey(userID))
	return rows, nil
}
