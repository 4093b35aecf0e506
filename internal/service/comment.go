package service

import (
	"context"
	"log/slog"
	"strings"

	"quickforge/internal/models"
	"quickforge/internal/repository"
)

// CommentService appends and lists comments on creations.
type CommentService struct {
	comments  repository.CommentRepository
	creations repository.CreationRepository
	identity  IdentityProvider
}

func NewCommentService(comments repository.CommentRepository, creations repository.CreationRepository, identity IdentityProvider) *CommentService {
	return &CommentService{comments: comments, creations: creations, identity: identity}
}

// AddCommentInput carries a new comment.
type AddCommentInput struct {
	CreationID uint
	UserID     string
	Text       string
}

// Add appends a comment. The author's display name and image are
// snapshotted at write time; when the identity lookup fails the
// comment still lands, attributed to Anonymous.
func (s *CommentService) Add(ctx context.Context, input AddCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, models.NewValidationError("comment text is required")
	}

	if _, err := s.creations.GetByID(ctx, input.CreationID, input.UserID); err != nil {
		return nil, err
	}

	name, image := "Anonymous", ""
	if user, err := s.identity.GetUser(ctx, input.UserID); err == nil {
		if user.Name != "" {
			name = user.Name
		}
		image = user.ImageURL
	} else {
		slog.WarnContext(ctx, "identity lookup failed for comment author",
			"user_id", input.UserID, "error", err)
	}

	comment := &models.Comment{
		CreationID:   input.CreationID,
		AuthorUserID: input.UserID,
		AuthorName:   name,
		AuthorImage:  image,
		Text:         text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns a creation's comments oldest first.
func (s *CommentService) List(ctx context.Context, creationID uint) ([]models.Comment, error) {
	if _, err := s.creations.GetByID(ctx, creationID, ""); err != nil {
		return nil, err
	}
	return s.comments.ListByCreation(ctx, creationID)
}
