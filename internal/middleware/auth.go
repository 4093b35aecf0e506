package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"quickforge/internal/models"
)

// AuthConfig holds what the auth middleware needs to verify identity
// provider tokens.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

// AuthRequired verifies the Bearer token issued by the identity
// provider and stores the subject (the external user id) and admin
// flag in Locals.
func AuthRequired(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("missing authorization header"))
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("invalid authorization header format"))
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		},
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("invalid or expired token"))
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("token missing subject"))
		}

		c.Locals("user_id", sub)
		if isAdmin, ok := claims["admin"].(bool); ok {
			c.Locals("is_admin", isAdmin)
		}

		return c.Next()
	}
}
