package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/service"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// RoomsHandler manages the room directory.
type RoomsHandler struct {
	service *service.RoomService
}

// NewRoomsHandler constructs handler.
func NewRoomsHandler(roomService *service.RoomService) *RoomsHandler {
	return &RoomsHandler{service: roomService}
}

// ListRooms GET /rooms.
func (h *RoomsHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.service.ListRooms(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoomResponses(rooms)})
}

// ListAvailable GET /rooms/available?start_time=&end_time=.
func (h *RoomsHandler) ListAvailable(c *fiber.Ctx) error {
	start, err := queryTime(c, "start_time")
	if err != nil {
		return err
	}
	end, err := queryTime(c, "end_time")
	if err != nil {
		return err
	}
	if start == nil || end == nil {
		return apperrors.NewValidationError("start_time and end_time required", nil)
	}
	rooms, err := h.service.ListAvailableRooms(c.UserContext(), *start, *end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoomResponses(rooms)})
}

// GetRoom GET /rooms/:id.
func (h *RoomsHandler) GetRoom(c *fiber.Ctx) error {
	id, err := idParam(c, "id", apperrors.NewRoomNotFound)
	if err != nil {
		return err
	}
	room, err := h.service.GetRoom(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoomResponse(room)})
}

// CreateRoom POST /rooms (admin).
func (h *RoomsHandler) CreateRoom(c *fiber.Ctx) error {
	var req dto.CreateRoomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	rate := decimal.Zero
	if req.HourlyRate != nil {
		rate = *req.HourlyRate
	}
	room, err := h.service.CreateRoom(c.UserContext(), service.RoomInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Equipment:   req.Equipment,
		HourlyRate:  rate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRoomResponse(room)})
}

// UpdateRoom PATCH /rooms/:id (admin).
func (h *RoomsHandler) UpdateRoom(c *fiber.Ctx) error {
	id, err := idParam(c, "id", apperrors.NewRoomNotFound)
	if err != nil {
		return err
	}
	var req dto.UpdateRoomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	room, err := h.service.UpdateRoom(c.UserContext(), id, service.RoomPatch{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Equipment:   req.Equipment,
		HourlyRate:  req.HourlyRate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoomResponse(room)})
}

// DeleteRoom DELETE /rooms/:id (admin). The room is deactivated, not removed.
func (h *RoomsHandler) DeleteRoom(c *fiber.Ctx) error {
	id, err := idParam(c, "id", apperrors.NewRoomNotFound)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRoom(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
