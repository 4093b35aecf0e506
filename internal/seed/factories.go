// Package seed populates a development database with plausible data.
package seed

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"quickforge/internal/models"
)

// FakeUserID returns an identity-provider style user id.
func FakeUserID() string {
	return "user_" + gofakeit.LetterN(24)
}

// FakeCreation builds a creation of the given type for the user.
func FakeCreation(userID, creationType string) models.Creation {
	creation := models.Creation{
		UserID:    userID,
		Type:      creationType,
		Publish:   gofakeit.Bool(),
		Username:  gofakeit.Username(),
		UserImage: gofakeit.ImageURL(128, 128),
	}

	switch creationType {
	case models.CreationTypeArticle:
		creation.PromptText = "Write an article about " + gofakeit.BuzzWord()
		creation.Content = gofakeit.Paragraph(4, 6, 20, "\n\n")
	case models.CreationTypeBlogTitle:
		creation.PromptText = fmt.Sprintf("Generate a blog title for the keyword %q.", gofakeit.Word())
		creation.Content = gofakeit.Sentence(8)
	case models.CreationTypeImage:
		creation.PromptText = gofakeit.Sentence(6)
		creation.Content = gofakeit.ImageURL(1024, 1024)
	case models.CreationTypeResume:
		creation.PromptText = "Review the uploaded resume"
		creation.Content = gofakeit.Paragraph(3, 4, 15, "\n\n")
	default:
		creation.Type = models.CreationTypePrompt
		creation.Title = gofakeit.Sentence(4)
		creation.PromptText = gofakeit.Paragraph(1, 3, 12, " ")
		creation.Tags = models.StringList{gofakeit.Word(), gofakeit.Word()}
		creation.IsPublic = true
	}
	return creation
}

// FakeComment builds a comment on the creation from the given author.
func FakeComment(creationID uint, authorID string) models.Comment {
	return models.Comment{
		CreationID:   creationID,
		AuthorUserID: authorID,
		AuthorName:   gofakeit.Username(),
		AuthorImage:  gofakeit.ImageURL(64, 64),
		Text:         gofakeit.Sentence(gofakeit.Number(3, 15)),
	}
}

// FakeLike builds a like row.
func FakeLike(creationID uint, userID string) models.Like {
	return models.Like{CreationID: creationID, UserID: userID}
}
