package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the authenticated user id.
	UserIDKey contextKey = "user_id"
)

// ctxHandler wraps a slog.Handler and promotes request-scoped values
// from the context into attributes on every record.
type ctxHandler struct {
	slog.Handler
}

func (h ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		r.AddAttrs(slog.String("user_id", userID))
	}
	return h.Handler.Handle(ctx, r)
}

// InitLogger configures the default slog logger. Production and prod
// environments log JSON; everything else logs human-readable text.
func InitLogger(env string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(ctxHandler{handler}))
}

// ContextMiddleware copies the fiber request id and any authenticated
// user id into the request's context.Context so downstream layers and
// the ctxHandler can see them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if reqID, ok := c.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, RequestIDKey, reqID)
		}
		if userID, ok := c.Locals("user_id").(string); ok {
			ctx = context.WithValue(ctx, UserIDKey, userID)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request with method, path, status
// and latency.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		status := c.Response().StatusCode()
		switch {
		case status >= 500:
			slog.ErrorContext(c.UserContext(), "request", attrs...)
		case status >= 400:
			slog.WarnContext(c.UserContext(), "request", attrs...)
		default:
			slog.InfoContext(c.UserContext(), "request", attrs...)
		}
		return err
	}
}
