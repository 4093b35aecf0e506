package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"quickforge/internal/models"
	"quickforge/internal/service"
)

// quotaDeclineMessage matches what paying clients were built against;
// a decline is a successful response with success=false, not an error.
const quotaDeclineMessage = "Limit reached. Upgrade to continue"

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("invalid " + name)
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters with defaults.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// currentUser returns the authenticated user id and admin flag set by
// the auth middleware.
func currentUser(c *fiber.Ctx) (string, bool) {
	userID, _ := c.Locals("user_id").(string)
	isAdmin, _ := c.Locals("is_admin").(bool)
	return userID, isAdmin
}

// respondError maps service errors onto HTTP statuses. Quota declines
// are not errors at the HTTP level.
func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrQuotaExceeded) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"message": quotaDeclineMessage,
		})
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeValidation:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case models.CodePlanForbidden:
		status = fiber.StatusForbidden
	case models.CodeNotFound:
		status = fiber.StatusNotFound
	case models.CodeRateLimited:
		status = fiber.StatusTooManyRequests
	}
	return models.RespondWithError(c, status, appErr)
}
