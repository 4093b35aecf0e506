package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quickforge/internal/clients"
	"quickforge/internal/config"
	"quickforge/internal/database"
	"quickforge/internal/repository"
	"quickforge/internal/service"
)

const (
	testJWTSecret = "test-secret"
	testIssuer    = "quickforge-identity"
	testAudience  = "quickforge-client"
)

// stubIdentity is a deterministic in-memory identity provider.
type stubIdentity struct {
	mu    sync.Mutex
	users map[string]clients.IdentityUser
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{users: map[string]clients.IdentityUser{}}
}

func (s *stubIdentity) put(user clients.IdentityUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *stubIdentity) GetUser(_ context.Context, userID string) (clients.IdentityUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	return clients.IdentityUser{}, fmt.Errorf("unknown user %s", userID)
}

func (s *stubIdentity) SetFreeUsage(_ context.Context, userID string, usage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.FreeUsage = usage
	s.users[userID] = user
	return nil
}

type stubVerifier struct{ err error }

func (v stubVerifier) VerifyWebhook(_, _, _ string, _ []byte) error { return v.err }

type stubGenerator struct{}

func (stubGenerator) GenerateText(context.Context, string, int) (string, error) {
	return "generated content", nil
}
func (stubGenerator) GenerateImage(context.Context, string) ([]byte, error) {
	return []byte("png-bytes"), nil
}
func (stubGenerator) ReviewResume(context.Context, string, io.Reader) (string, error) {
	return "resume review", nil
}
func (stubGenerator) EnhancePrompt(context.Context, string) (string, error) {
	return "enhanced prompt", nil
}

type stubBlobStore struct{}

func (stubBlobStore) Upload(context.Context, string, io.Reader) (string, error) {
	return "https://cdn.test/img.png", nil
}
func (stubBlobStore) UploadWithTransform(context.Context, string, io.Reader, string) (string, error) {
	return "https://cdn.test/edited.png", nil
}

type testEnv struct {
	server   *Server
	db       *gorm.DB
	identity *stubIdentity
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	// Unique shared-memory name keeps tests isolated while letting the
	// connection pool see one database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	identity := newStubIdentity()
	identity.put(clients.IdentityUser{ID: "user_free", Plan: "free", FreeUsage: 0, Name: "Ada", ImageURL: "https://img/a.png"})
	identity.put(clients.IdentityUser{ID: "user_maxed", Plan: "free", FreeUsage: 10, Name: "Max"})
	identity.put(clients.IdentityUser{ID: "user_premium", Plan: clients.PlanPremium, Name: "Grace"})

	creationRepo := repository.NewCreationRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	quota := service.NewQuotaGate(identity, 10)

	cfg := &config.Config{
		Port: "0", Env: "test",
		IdentityJWTSecret: testJWTSecret,
		IdentityIssuer:    testIssuer,
		IdentityAudience:  testAudience,
		FreeUsageLimit:    10,
	}

	srv := NewServerWithDeps(cfg, db, nil, Deps{
		Generation: service.NewGenerationService(creationRepo, quota, stubGenerator{}, stubBlobStore{}),
		Creation:   service.NewCreationService(creationRepo, likeRepo, identity, nil),
		Comments:   service.NewCommentService(commentRepo, creationRepo, identity),
		Feed:       service.NewFeedService(creationRepo, likeRepo, nil),
		Webhooks:   stubVerifier{},
	})
	return &testEnv{server: srv, db: db, identity: identity}
}

func bearerToken(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": testIssuer,
		"aud": testAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if isAdmin {
		claims["admin"] = true
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) request(t *testing.T, method, path, userID string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", bearerToken(t, userID, false))
	}
	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
