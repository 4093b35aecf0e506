// Package server wires the HTTP transport: fiber app, middleware and
// route handlers.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"quickforge/internal/clients"
	"quickforge/internal/config"
	"quickforge/internal/middleware"
	"quickforge/internal/models"
	"quickforge/internal/observability"
	"quickforge/internal/repository"
	"quickforge/internal/service"
)

// WebhookVerifier checks identity provider webhook signatures.
type WebhookVerifier interface {
	VerifyWebhook(id, timestamp, signature string, payload []byte) error
}

// Server holds the fiber app and the services the handlers call.
type Server struct {
	app *fiber.App
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client

	generation *service.GenerationService
	creation   *service.CreationService
	comments   *service.CommentService
	feed       *service.FeedService
	webhooks   WebhookVerifier
}

// NewServer builds the full dependency graph from configuration.
func NewServer(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	identity := clients.NewIdentityClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, cfg.WebhookSecret, rdb)
	generator := clients.NewGeneratorClient(cfg.GeneratorBaseURL, cfg.GeneratorAPIKey)
	blobs := clients.NewBlobStoreClient(cfg.BlobStoreBaseURL, cfg.BlobStoreAPIKey, cfg.BlobStoreFolder)

	creationRepo := repository.NewCreationRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	quota := service.NewQuotaGate(identity, cfg.FreeUsageLimit)

	return NewServerWithDeps(cfg, db, rdb, Deps{
		Generation: service.NewGenerationService(creationRepo, quota, generator, blobs),
		Creation:   service.NewCreationService(creationRepo, likeRepo, identity, rdb),
		Comments:   service.NewCommentService(commentRepo, creationRepo, identity),
		Feed:       service.NewFeedService(creationRepo, likeRepo, rdb),
		Webhooks:   identity,
	})
}

// Deps bundles the services for injection in tests.
type Deps struct {
	Generation *service.GenerationService
	Creation   *service.CreationService
	Comments   *service.CommentService
	Feed       *service.FeedService
	Webhooks   WebhookVerifier
}

// NewServerWithDeps builds a server around pre-built services.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "quickforge",
		BodyLimit:    12 << 20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	s := &Server{
		app: app, cfg: cfg, db: db, rdb: rdb,
		generation: deps.Generation,
		creation:   deps.Creation,
		comments:   deps.Comments,
		feed:       deps.Feed,
		webhooks:   deps.Webhooks,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(helmet.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	s.app.Use(middleware.ContextMiddleware())
	s.app.Use(middleware.Tracing())
	s.app.Use(middleware.StructuredLogger())

	if s.cfg.Env != "test" {
		observability.RegisterMetrics(s.app, "quickforge")
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/readyz", s.handleReady)

	auth := middleware.AuthRequired(middleware.AuthConfig{
		JWTSecret: s.cfg.IdentityJWTSecret,
		Issuer:    s.cfg.IdentityIssuer,
		Audience:  s.cfg.IdentityAudience,
	})

	api := s.app.Group("/api")

	// Generation endpoints are the expensive ones; they get the
	// tighter rate limit.
	ai := api.Group("/ai", auth, middleware.RateLimit(s.rdb, middleware.RateLimitConfig{
		Max: 20, Window: time.Minute, KeyPrefix: "ai",
		FailureMode: middleware.FailOpen, Env: s.cfg.Env,
	}))
	ai.Post("/generate-article", s.handleGenerateArticle)
	ai.Post("/generate-blog-title", s.handleGenerateBlogTitle)
	ai.Post("/generate-image", s.handleGenerateImage)
	ai.Post("/generate-image-background", s.handleRemoveImageBackground)
	ai.Post("/generate-image-object", s.handleRemoveImageObject)
	ai.Post("/generate-resume-review", s.handleReviewResume)
	ai.Post("/enhance-prompt", s.handleEnhancePrompt)

	user := api.Group("/user", auth, middleware.RateLimit(s.rdb, middleware.RateLimitConfig{
		Max: 120, Window: time.Minute, KeyPrefix: "user",
		FailureMode: middleware.FailOpen, Env: s.cfg.Env,
	}))
	user.Post("/create-prompt", s.handleCreatePrompt)
	user.Put("/edit-prompt/:id", s.handleEditPrompt)
	user.Delete("/delete-creation/:id", s.handleDeleteCreation)
	// Older clients call the prompt-specific path.
	user.Delete("/delete-prompt/:id", s.handleDeleteCreation)
	user.Get("/get-user-creations", s.handleGetUserCreations)
	user.Get("/get-user-prompts", s.handleGetUserPrompts)
	user.Get("/published-creations", s.handleGetPublishedCreations)
	user.Post("/toggle-like", s.handleToggleLike)
	user.Post("/add-comment", s.handleAddComment)
	user.Get("/get-comments/:id", s.handleGetComments)

	webhooks := api.Group("/webhooks")
	webhooks.Post("/identity", s.handleIdentityWebhook)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewDependencyError("database unavailable", err))
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// Listen starts serving on the configured port.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
