package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// RoomService manages the room directory.
type RoomService struct {
	rooms  repository.RoomRepository
	logger *zap.Logger
}

// RoomInput describes a room to create.
type RoomInput struct {
	Name        string
	Description *string
	Capacity    int
	Equipment   []string
	HourlyRate  decimal.Decimal
}

// RoomPatch lists optional room changes.
type RoomPatch struct {
	Name        *string
	Description *string
	Capacity    *int
	Equipment   []string
	HourlyRate  *decimal.Decimal
	IsActive    *bool
}

// NewRoomService constructs the service.
func NewRoomService(rooms repository.RoomRepository, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{rooms: rooms, logger: logger}
}

// CreateRoom adds an active room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (*domain.Room, error) {
	room := &domain.Room{
		Name:        strings.TrimSpace(input.Name),
		Description: trimmedOrNil(input.Description),
		Capacity:    input.Capacity,
		Equipment:   normalizeEquipment(input.Equipment),
		HourlyRate:  input.HourlyRate,
		IsActive:    true,
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.logger.Info("room created", zap.String("room_id", room.ID), zap.String("name", room.Name))
	return room, nil
}

// ListRooms returns active rooms ordered by name.
func (s *RoomService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return rooms, nil
}

// GetRoom returns an active room.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.rooms.GetActiveByID(ctx, id)
	if err != nil {
		return nil, roomLookupError(err, id)
	}
	return room, nil
}

// UpdateRoom applies a patch. Inactive rooms can be edited and reactivated.
func (s *RoomService) UpdateRoom(ctx context.Context, id string, patch RoomPatch) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, roomLookupError(err, id)
	}
	if patch.Name != nil {
		room.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		room.Description = trimmedOrNil(patch.Description)
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if patch.Equipment != nil {
		room.Equipment = normalizeEquipment(patch.Equipment)
	}
	if patch.HourlyRate != nil {
		room.HourlyRate = *patch.HourlyRate
	}
	if patch.IsActive != nil {
		room.IsActive = *patch.IsActive
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, roomLookupError(err, id)
	}
	return room, nil
}

// DeleteRoom soft-deletes a room so existing reservations keep their reference.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if err := s.rooms.Deactivate(ctx, id); err != nil {
		return roomLookupError(err, id)
	}
	s.logger.Info("room deactivated", zap.String("room_id", id))
	return nil
}

// ListAvailableRooms returns active rooms free of confirmed reservations over [start, end).
func (s *RoomService) ListAvailableRooms(ctx context.Context, start, end time.Time) ([]domain.Room, error) {
	if !start.Before(end) {
		return nil, apperrors.NewValidationError("start_time must be before end_time", map[string]any{
			"start_time": start,
			"end_time":   end,
		})
	}
	rooms, err := s.rooms.ListAvailable(ctx, start, end)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return rooms, nil
}

func validateRoom(room *domain.Room) error {
	details := map[string]any{}
	if room.Name == "" {
		details["name"] = "required"
	}
	if room.Capacity <= 0 {
		details["capacity"] = "must be positive"
	}
	if room.HourlyRate.IsNegative() {
		details["hourly_rate"] = "must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid room", details)
	}
	return nil
}

// normalizeEquipment trims entries and drops blanks and duplicates, keeping order.
func normalizeEquipment(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

func roomLookupError(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewRoomNotFound(map[string]any{"room_id": id})
	}
	return apperrors.NewStorageError(err)
}
