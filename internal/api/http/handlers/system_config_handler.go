package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/service"
)

// SystemConfigHandler exposes administrator settings.
type SystemConfigHandler struct {
	timezone *service.TimezoneService
}

// NewSystemConfigHandler constructs handler.
func NewSystemConfigHandler(timezoneService *service.TimezoneService) *SystemConfigHandler {
	return &SystemConfigHandler{timezone: timezoneService}
}

// List GET /system-config.
func (h *SystemConfigHandler) List(c *fiber.Ctx) error {
	items, err := h.timezone.ListConfigs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewConfigResponses(items)})
}

// Set POST /system-config (admin).
func (h *SystemConfigHandler) Set(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetConfigRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cfg, err := h.timezone.SetConfig(c.UserContext(), principal.Identity(), req.Key, req.Value, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewConfigResponses([]domain.SystemConfig{*cfg})[0]})
}

// GetTimezone GET /system-config/timezone.
func (h *SystemConfigHandler) GetTimezone(c *fiber.Ctx) error {
	ctx := c.UserContext()
	name, err := h.timezone.GetSystemTimezone(ctx)
	if err != nil {
		return err
	}
	now, err := h.timezone.NowInSystemTimezone(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TimezoneResponse{Timezone: name, Now: now}})
}

// SetTimezone POST /system-config/timezone (admin).
func (h *SystemConfigHandler) SetTimezone(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetTimezoneRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cfg, err := h.timezone.SetSystemTimezone(c.UserContext(), principal.Identity(), req.Timezone)
	if err != nil {
		return err
	}
	now, err := h.timezone.NowInSystemTimezone(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TimezoneResponse{Timezone: cfg.Value, Now: now}})
}
