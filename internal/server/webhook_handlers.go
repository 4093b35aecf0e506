package server

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quickforge/internal/models"
)

type identityWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

// handleIdentityWebhook applies user.updated events from the identity
// provider to the denormalized author snapshots. The signature is
// verified before the payload is even parsed.
func (s *Server) handleIdentityWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	err := s.webhooks.VerifyWebhook(
		c.Get("webhook-id"),
		c.Get("webhook-timestamp"),
		c.Get("webhook-signature"),
		payload,
	)
	if err != nil {
		return respondError(c, err)
	}

	var event identityWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return respondError(c, models.NewValidationError("invalid webhook payload"))
	}

	switch event.Type {
	case "user.updated":
		if event.Data.ID == "" {
			return respondError(c, models.NewValidationError("webhook event missing user id"))
		}
		rows, err := s.creation.RefreshIdentitySnapshot(c.UserContext(),
			event.Data.ID, event.Data.Name, event.Data.ImageURL)
		if err != nil {
			return respondError(c, err)
		}
		slog.InfoContext(c.UserContext(), "identity snapshot refreshed",
			"user_id", event.Data.ID, "rows", rows)
	default:
		slog.DebugContext(c.UserContext(), "ignoring webhook event", "type", event.Type)
	}

	return c.JSON(fiber.Map{"success": true})
}
