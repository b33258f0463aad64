package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	"github.com/spec-kit/room-booking/internal/service"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// ReservationsHandler exposes booking endpoints.
type ReservationsHandler struct {
	service *service.ReservationService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservationService *service.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{service: reservationService}
}

// CreateReservation POST /reservations.
func (h *ReservationsHandler) CreateReservation(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateReservationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	duration := 1
	if req.DurationHours != nil {
		duration = *req.DurationHours
	}
	res, err := h.service.CreateReservation(c.UserContext(), principal.Identity(), service.CreateReservationInput{
		RoomID:        req.RoomID,
		StartTime:     req.StartTime,
		DurationHours: duration,
		Purpose:       req.Purpose,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewReservationResponse(res)})
}

// ListReservations GET /reservations (admin).
func (h *ReservationsHandler) ListReservations(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	filter, err := parseReservationQuery(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListReservations(c.UserContext(), principal.Identity(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReservationResponses(items)})
}

// ListMine GET /reservations/mine.
func (h *ReservationsHandler) ListMine(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListMyReservations(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReservationResponses(items)})
}

// GetReservation GET /reservations/:id.
func (h *ReservationsHandler) GetReservation(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id", apperrors.NewReservationNotFound)
	if err != nil {
		return err
	}
	res, err := h.service.GetReservation(c.UserContext(), principal.Identity(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReservationResponse(res)})
}

// UpdateReservation PATCH /reservations/:id.
func (h *ReservationsHandler) UpdateReservation(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id", apperrors.NewReservationNotFound)
	if err != nil {
		return err
	}
	var req dto.UpdateReservationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.UpdateReservation(c.UserContext(), principal.Identity(), id, service.ReservationPatch{
		Purpose:   req.Purpose,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReservationResponse(res)})
}

// CancelReservation PATCH /reservations/:id/cancel.
func (h *ReservationsHandler) CancelReservation(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id", apperrors.NewReservationNotFound)
	if err != nil {
		return err
	}
	res, err := h.service.CancelReservation(c.UserContext(), principal.Identity(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReservationResponse(res)})
}

// parseReservationQuery reads the admin listing filters. Without a limit the
// listing is unbounded.
func parseReservationQuery(c *fiber.Ctx) (repository.ReservationFilter, error) {
	var filter repository.ReservationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.ReservationStatus(strings.ToLower(strings.TrimSpace(part)))
			if !status.Valid() {
				return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	for key, dst := range map[string]**string{"room_id": &filter.RoomID, "user_id": &filter.UserID} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		if _, err := uuid.Parse(raw); err != nil {
			return filter, apperrors.NewValidationError("invalid id", map[string]any{key: raw})
		}
		*dst = &raw
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(c, "limit", 0, maxPageSize); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(c, "offset", 0, 0); err != nil {
		return filter, err
	}
	return filter, nil
}
