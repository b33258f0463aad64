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
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/observability"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

const admissionAccepted = "accepted"

// ReservationService is the reservation policy engine. It is the only path
// through which reservations are created or change state.
type ReservationService struct {
	reservations repository.ReservationRepository
	rooms        repository.RoomRepository
	users        repository.UserRepository
	timezone     TimezoneProvider
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	weekStart    time.Weekday
}

// ReservationDependencies bundles collaborators for the reservation service.
type ReservationDependencies struct {
	ReservationRepo repository.ReservationRepository
	RoomRepo        repository.RoomRepository
	UserRepo        repository.UserRepository
	Timezone        TimezoneProvider
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	WeekStart       time.Weekday
}

// CreateReservationInput describes a booking request.
type CreateReservationInput struct {
	RoomID        string
	StartTime     time.Time
	DurationHours int
	Purpose       *string
}

// ReservationPatch lists the fields an update may touch. Nil means unchanged.
type ReservationPatch struct {
	Purpose   *string
	RoomID    *string
	StartTime *time.Time
	Status    *domain.ReservationStatus
}

// WeeklyUsage reports quota consumption for the calendar week in progress.
// Limit and Remaining are -1 for unlimited tiers.
type WeeklyUsage struct {
	UserID    string
	Limit     int
	Used      decimal.Decimal
	Remaining decimal.Decimal
	WeekStart time.Time
	WeekEnd   time.Time
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		reservations: deps.ReservationRepo,
		rooms:        deps.RoomRepo,
		users:        deps.UserRepo,
		timezone:     deps.Timezone,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		weekStart:    deps.WeekStart,
	}
}

// CreateReservation runs the admission checks in order and persists the
// reservation only when every one of them passes.
func (s *ReservationService) CreateReservation(ctx context.Context, principal domain.Principal, input CreateReservationInput) (*domain.Reservation, error) {
	userID := principal.UserID
	res, err := s.admit(ctx, userID, input)
	outcome := admissionAccepted
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	s.metrics.RecordAdmission(outcome)

	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.String("room_id", input.RoomID),
		zap.Time("start_time", input.StartTime),
	}
	if err != nil {
		fields = append(fields, zap.String("error_code", outcome))
		if outcome == apperrors.CodeStorage || outcome == apperrors.CodeInternal {
			s.logger.Error("reservation admission failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Debug("reservation rejected", fields...)
		}
		return nil, err
	}
	s.logger.Info("reservation admitted", append(fields, zap.String("reservation_id", res.ID))...)

	s.publish(ctx, events.EventReservationCreated, principal, res, events.NewReservationPayload(res))
	return res, nil
}

func (s *ReservationService) admit(ctx context.Context, userID string, input CreateReservationInput) (*domain.Reservation, error) {
	now, err := s.timezone.NowInSystemTimezone(ctx)
	if err != nil {
		return nil, err
	}
	start := input.StartTime
	if start.Before(now) {
		return nil, apperrors.NewPastBooking(map[string]any{
			"now":        now,
			"start_time": start,
		})
	}

	if !alignedToHour(start, now.Location()) {
		return nil, apperrors.NewSlotNotAligned(map[string]any{"start_time": start})
	}

	duration, err := domain.NewSlotDuration(input.DurationHours)
	if err != nil {
		return nil, apperrors.NewUnsupportedDuration(map[string]any{"duration_hours": input.DurationHours})
	}
	end := start.Add(duration.Duration())

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadActiveRoom(ctx, input.RoomID); err != nil {
		return nil, err
	}

	overlapping, err := s.reservations.FindOverlapping(ctx, input.RoomID, start, end, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if len(overlapping) > 0 {
		return nil, roomConflict(input.RoomID, start, end, overlapping[0].ID)
	}

	adjacent, err := s.reservations.FindAdjacent(ctx, userID, start, end, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if len(adjacent) > 0 {
		return nil, apperrors.NewConsecutiveBooking(map[string]any{
			"adjacent_reservation_id": adjacent[0].ID,
			"adjacent_start_time":     adjacent[0].StartTime,
			"adjacent_end_time":       adjacent[0].EndTime,
		})
	}

	if err := s.checkQuota(ctx, user, start, now.Location(), duration); err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		UserID:     userID,
		RoomID:     input.RoomID,
		StartTime:  start,
		EndTime:    end,
		Status:     domain.ReservationStatusConfirmed,
		Purpose:    trimmedOrNil(input.Purpose),
		TotalHours: duration.TotalHours(),
	}
	if err := s.reservations.Insert(ctx, res); err != nil {
		return nil, s.translateWriteError(err, input.RoomID, start, end)
	}
	return res, nil
}

func (s *ReservationService) checkQuota(ctx context.Context, user *domain.User, start time.Time, loc *time.Location, duration domain.SlotDuration) error {
	if user.UserType == nil {
		return apperrors.NewUserTierMissing(map[string]any{"user_id": user.ID})
	}
	if user.UserType.Unlimited() {
		return nil
	}
	weekStart, weekEnd := WeekWindow(start, loc, s.weekStart)
	current, err := s.reservations.SumHoursInWindow(ctx, user.ID, weekStart, weekEnd, domain.ReservationStatusConfirmed)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	limit := decimal.NewFromInt(int64(user.UserType.WeeklyHoursLimit))
	if current.Add(duration.TotalHours()).GreaterThan(limit) {
		return apperrors.NewWeeklyQuotaExceeded(map[string]any{
			"current_hours":   current.InexactFloat64(),
			"requested_hours": duration.Hours(),
			"weekly_limit":    user.UserType.WeeklyHoursLimit,
			"week_start":      weekStart,
			"week_end":        weekEnd,
		})
	}
	return nil
}

// GetReservation returns a reservation visible to the principal.
func (s *ReservationService) GetReservation(ctx context.Context, principal domain.Principal, id string) (*domain.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(principal, res) {
		return nil, apperrors.NewForbidden("reservation belongs to another user")
	}
	return res, nil
}

// ListReservations is the admin view across all users.
func (s *ReservationService) ListReservations(ctx context.Context, principal domain.Principal, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators may list all reservations")
	}
	items, err := s.reservations.FindAll(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return items, nil
}

// ListMyReservations returns the user's reservations, newest first.
func (s *ReservationService) ListMyReservations(ctx context.Context, userID string) ([]domain.Reservation, error) {
	items, err := s.reservations.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return items, nil
}

// CancelReservation moves a confirmed reservation to cancelled. Cancelling an
// already cancelled reservation returns it unchanged.
func (s *ReservationService) CancelReservation(ctx context.Context, principal domain.Principal, id string) (*domain.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(principal, res) {
		return nil, apperrors.NewForbidden("only the owner or an administrator may cancel this reservation")
	}
	if res.Status == domain.ReservationStatusCancelled {
		return res, nil
	}
	if !domain.CanTransition(res.Status, domain.ReservationStatusCancelled) {
		return nil, invalidTransition(res.Status, domain.ReservationStatusCancelled)
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, res.Status, domain.ReservationStatusCancelled)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewStorageError(err)
		}
		// Lost a race with another writer; report against the fresh state.
		current, loadErr := s.loadReservation(ctx, id)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.Status == domain.ReservationStatusCancelled {
			return current, nil
		}
		return nil, invalidTransition(current.Status, domain.ReservationStatusCancelled)
	}

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", id),
		zap.String("user_id", principal.UserID))
	s.publish(ctx, events.EventReservationCancelled, principal, updated, events.NewReservationPayload(updated))
	return updated, nil
}

// UpdateReservation applies a patch. Owners may change the purpose or cancel;
// moving a reservation to another room or slot is reserved to administrators
// and is re-validated against alignment, room existence and overlap.
func (s *ReservationService) UpdateReservation(ctx context.Context, principal domain.Principal, id string, patch ReservationPatch) (*domain.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(principal, res) {
		return nil, apperrors.NewForbidden("only the owner or an administrator may update this reservation")
	}

	loaded := res.Status
	var changed []string
	if patch.Purpose != nil {
		res.Purpose = trimmedOrNil(patch.Purpose)
		changed = append(changed, "purpose")
	}

	moving := (patch.RoomID != nil && *patch.RoomID != res.RoomID) ||
		(patch.StartTime != nil && !patch.StartTime.Equal(res.StartTime))
	if moving {
		if !principal.IsAdmin() {
			return nil, apperrors.NewForbidden("only administrators may move a reservation")
		}
		if res.Status != domain.ReservationStatusConfirmed {
			return nil, apperrors.NewInvalidTransition(map[string]any{
				"status": res.Status,
				"reason": "only confirmed reservations can be moved",
			})
		}
		if err := s.applyMove(ctx, res, patch); err != nil {
			return nil, err
		}
		if patch.RoomID != nil {
			changed = append(changed, "room_id")
		}
		if patch.StartTime != nil {
			changed = append(changed, "start_time", "end_time")
		}
	}

	cancelled := false
	if patch.Status != nil && *patch.Status != res.Status {
		if *patch.Status != domain.ReservationStatusCancelled || !domain.CanTransition(res.Status, *patch.Status) {
			return nil, invalidTransition(res.Status, *patch.Status)
		}
		res.Status = *patch.Status
		changed = append(changed, "status")
		cancelled = true
	}

	if len(changed) == 0 {
		return res, nil
	}
	if cancelled && len(changed) == 1 {
		updated, err := s.reservations.UpdateStatus(ctx, id, loaded, domain.ReservationStatusCancelled)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewStorageError(err)
			}
			current, loadErr := s.loadReservation(ctx, id)
			if loadErr != nil {
				return nil, loadErr
			}
			if current.Status == domain.ReservationStatusCancelled {
				return current, nil
			}
			return nil, invalidTransition(current.Status, domain.ReservationStatusCancelled)
		}
		res = updated
	} else if err := s.reservations.Update(ctx, res, loaded); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, s.translateWriteError(err, res.RoomID, res.StartTime, res.EndTime)
		}
		return nil, s.staleUpdate(ctx, id, loaded)
	}

	eventType := events.EventReservationUpdated
	if cancelled {
		eventType = events.EventReservationCancelled
	}
	s.logger.Info("reservation updated",
		zap.String("reservation_id", id),
		zap.String("user_id", principal.UserID),
		zap.Strings("changed", changed))
	s.publish(ctx, eventType, principal, res, events.ReservationUpdatedPayload{
		ReservationPayload: events.NewReservationPayload(res),
		Changed:            changed,
	})
	return res, nil
}

func (s *ReservationService) applyMove(ctx context.Context, res *domain.Reservation, patch ReservationPatch) error {
	roomID := res.RoomID
	if patch.RoomID != nil {
		roomID = *patch.RoomID
	}
	start := res.StartTime
	if patch.StartTime != nil {
		start = *patch.StartTime
	}

	now, err := s.timezone.NowInSystemTimezone(ctx)
	if err != nil {
		return err
	}
	if start.Before(now) {
		return apperrors.NewPastBooking(map[string]any{"now": now, "start_time": start})
	}
	if !alignedToHour(start, now.Location()) {
		return apperrors.NewSlotNotAligned(map[string]any{"start_time": start})
	}
	if _, err := s.loadActiveRoom(ctx, roomID); err != nil {
		return err
	}

	end := start.Add(res.EndTime.Sub(res.StartTime))
	overlapping, err := s.reservations.FindOverlapping(ctx, roomID, start, end, domain.ReservationStatusConfirmed)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	for _, other := range overlapping {
		if other.ID != res.ID {
			return roomConflict(roomID, start, end, other.ID)
		}
	}

	res.RoomID = roomID
	res.StartTime = start
	res.EndTime = end
	return nil
}

// GetWeeklyUsage reports the user's quota for the current calendar week in
// the system timezone.
func (s *ReservationService) GetWeeklyUsage(ctx context.Context, userID string) (*WeeklyUsage, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UserType == nil {
		return nil, apperrors.NewUserTierMissing(map[string]any{"user_id": user.ID})
	}
	now, err := s.timezone.NowInSystemTimezone(ctx)
	if err != nil {
		return nil, err
	}
	weekStart, weekEnd := WeekWindow(now, now.Location(), s.weekStart)
	used, err := s.reservations.SumHoursInWindow(ctx, user.ID, weekStart, weekEnd, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	usage := &WeeklyUsage{
		UserID:    user.ID,
		Limit:     user.UserType.WeeklyHoursLimit,
		Used:      used,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}
	if user.UserType.Unlimited() {
		usage.Remaining = decimal.NewFromInt(domain.UnlimitedWeeklyHours)
		return usage, nil
	}
	remaining := decimal.NewFromInt(int64(usage.Limit)).Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	usage.Remaining = remaining
	return usage, nil
}

// WeekWindow returns the calendar week containing t in loc, starting at
// midnight on weekStart. The end is exclusive and seven calendar days later.
func WeekWindow(t time.Time, loc *time.Location, weekStart time.Weekday) (time.Time, time.Time) {
	local := t.In(loc)
	offset := (int(local.Weekday()) - int(weekStart) + 7) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 7)
}

// canMutate is the single owner-or-admin predicate behind read, update and cancel.
func canMutate(principal domain.Principal, res *domain.Reservation) bool {
	if principal.UserID == "" {
		return false
	}
	return principal.IsAdmin() || res.UserID == principal.UserID
}

func alignedToHour(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	return local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0
}

func (s *ReservationService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if !user.IsActive {
		return nil, apperrors.NewUserNotFound(map[string]any{"user_id": userID})
	}
	return user, nil
}

func (s *ReservationService) loadActiveRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	room, err := s.rooms.GetActiveByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRoomNotFound(map[string]any{"room_id": roomID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return room, nil
}

func (s *ReservationService) loadReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewReservationNotFound(map[string]any{"reservation_id": id})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return res, nil
}

func (s *ReservationService) translateWriteError(err error, roomID string, start, end time.Time) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		return roomConflict(roomID, start, end, "")
	case errors.Is(err, repository.ErrReference):
		return apperrors.NewRoomNotFound(map[string]any{"room_id": roomID})
	default:
		return apperrors.NewStorageError(err)
	}
}

func (s *ReservationService) publish(ctx context.Context, eventType events.EventType, actor domain.Principal, res *domain.Reservation, payload any) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:          eventType,
		ReservationID: res.ID,
		Actor:         events.Actor{UserID: actor.UserID, Role: actor.Role},
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		s.logger.Debug("reservation event publish failed",
			zap.String("event_type", string(eventType)),
			zap.String("reservation_id", res.ID),
			zap.Error(err))
	}
}

// staleUpdate reports a patch whose guarded write found the row changed since
// it was loaded, against the row as it is now.
func (s *ReservationService) staleUpdate(ctx context.Context, id string, loaded domain.ReservationStatus) error {
	current, err := s.loadReservation(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.NewInvalidTransition(map[string]any{
		"status":          current.Status,
		"expected_status": loaded,
		"reason":          "reservation changed while it was being updated",
	})
}

func roomConflict(roomID string, start, end time.Time, conflictingID string) error {
	details := map[string]any{
		"room_id":    roomID,
		"start_time": start,
		"end_time":   end,
	}
	if conflictingID != "" {
		details["conflicting_reservation_id"] = conflictingID
	}
	return apperrors.NewRoomConflict(details)
}

func invalidTransition(from, to domain.ReservationStatus) error {
	return apperrors.NewInvalidTransition(map[string]any{"from": from, "to": to})
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
