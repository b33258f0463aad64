package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/events"
)

// NotificationService fans reservation events out to a Redis channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  redis.Cmdable
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil, in which
// case events are only logged.
func NewNotificationService(dispatcher events.Dispatcher, publisher redis.Cmdable, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReservationCreated, n.handleReservationEvent)
	n.dispatcher.Subscribe(events.EventReservationUpdated, n.handleReservationEvent)
	n.dispatcher.Subscribe(events.EventReservationCancelled, n.handleReservationEvent)
}

func (n *NotificationService) handleReservationEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("reservation_id", event.ReservationID),
		zap.String("actor_id", event.Actor.UserID))
	return n.publish(ctx, event)
}

func (n *NotificationService) publish(ctx context.Context, event events.Event) error {
	channel := strings.TrimSpace(n.cfg.Channel)
	if n.publisher == nil || channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, channel, body).Err(); err != nil {
		n.logger.Warn("reservation event publish failed",
			zap.String("channel", channel),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return err
	}
	n.logger.Debug("reservation event published",
		zap.String("channel", channel),
		zap.String("event_type", string(event.Type)))
	return nil
}
