package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/auth"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

const maxPageSize = 200

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// idParam returns the named path parameter after checking it is a UUID.
// Malformed ids are reported as missing resources.
func idParam(c *fiber.Ctx, name string, notFound func(map[string]any) error) (string, error) {
	raw := c.Params(name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", notFound(map[string]any{"id": raw})
	}
	return raw, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid timestamp", map[string]any{key: raw})
	}
	return &t, nil
}

func queryInt(c *fiber.Ctx, key string, fallback, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError("invalid integer", map[string]any{key: raw})
	}
	if max > 0 && v > max {
		v = max
	}
	return v, nil
}
