package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"quickforge/internal/clients"
	"quickforge/internal/models"
)

type mockCreationRepo struct{ mock.Mock }

func (m *mockCreationRepo) Create(ctx context.Context, creation *models.Creation) error {
	return m.Called(ctx, creation).Error(0)
}

func (m *mockCreationRepo) GetByID(ctx context.Context, id uint, viewerID string) (*models.Creation, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Creation), args.Error(1)
}

func (m *mockCreationRepo) ListByUser(ctx context.Context, userID, creationType string, limit, offset int) ([]models.Creation, error) {
	args := m.Called(ctx, userID, creationType, limit, offset)
	return args.Get(0).([]models.Creation), args.Error(1)
}

func (m *mockCreationRepo) ListPublic(ctx context.Context, filter, viewerID string, limit, offset int) ([]models.Creation, error) {
	args := m.Called(ctx, filter, viewerID, limit, offset)
	return args.Get(0).([]models.Creation), args.Error(1)
}

func (m *mockCreationRepo) Update(ctx context.Context, creation *models.Creation) error {
	return m.Called(ctx, creation).Error(0)
}

func (m *mockCreationRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCreationRepo) UpdateIdentitySnapshot(ctx context.Context, userID, username, userImage string) (int64, error) {
	args := m.Called(ctx, userID, username, userImage)
	return args.Get(0).(int64), args.Error(1)
}

type mockLikeRepo struct{ mock.Mock }

func (m *mockLikeRepo) Toggle(ctx context.Context, creationID uint, userID string) (bool, error) {
	args := m.Called(ctx, creationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepo) Count(ctx context.Context, creationID uint) (int64, error) {
	args := m.Called(ctx, creationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLikeRepo) LikedUserIDs(ctx context.Context, creationID uint) ([]string, error) {
	args := m.Called(ctx, creationID)
	return args.Get(0).([]string), args.Error(1)
}

type mockCommentRepo struct{ mock.Mock }

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentRepo) ListByCreation(ctx context.Context, creationID uint) ([]models.Comment, error) {
	args := m.Called(ctx, creationID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *mockCommentRepo) CountByCreation(ctx context.Context, creationID uint) (int64, error) {
	args := m.Called(ctx, creationID)
	return args.Get(0).(int64), args.Error(1)
}

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) GetUser(ctx context.Context, userID string) (clients.IdentityUser, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(clients.IdentityUser), args.Error(1)
}

func (m *mockIdentity) SetFreeUsage(ctx context.Context, userID string, usage int) error {
	return m.Called(ctx, userID, usage).Error(0)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockGenerator) ReviewResume(ctx context.Context, filename string, file io.Reader) (string, error) {
	args := m.Called(ctx, filename, file)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) UploadWithTransform(ctx context.Context, name string, r io.Reader, transform string) (string, error) {
	args := m.Called(ctx, name, r, transform)
	return args.String(0), args.Error(1)
}
