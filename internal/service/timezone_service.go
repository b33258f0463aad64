package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

const timezoneCacheKey = "booking:config:" + domain.TimezoneConfigKey

// TimezoneProvider resolves the process-wide timezone used for cutoff checks.
type TimezoneProvider interface {
	GetSystemTimezone(ctx context.Context) (string, error)
	NowInSystemTimezone(ctx context.Context) (time.Time, error)
}

// TimezoneService reads and manages system configuration, with the timezone
// value cached in Redis.
type TimezoneService struct {
	configs  repository.SystemConfigRepository
	cache    redis.Cmdable
	cacheTTL time.Duration
	fallback string
	logger   *zap.Logger
	clock    func() time.Time
}

// NewTimezoneService builds the service. cache may be nil.
func NewTimezoneService(configs repository.SystemConfigRepository, cache redis.Cmdable, cfg config.BookingConfig, logger *zap.Logger) *TimezoneService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimezoneService{
		configs:  configs,
		cache:    cache,
		cacheTTL: cfg.TimezoneCacheTTL(),
		fallback: cfg.DefaultTimezone,
		logger:   logger,
		clock:    time.Now,
	}
}

// GetSystemTimezone returns the configured IANA timezone name.
func (s *TimezoneService) GetSystemTimezone(ctx context.Context) (string, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		cached, err := s.cache.Get(ctx, timezoneCacheKey).Result()
		if err == nil && cached != "" {
			return cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("timezone cache read failed", zap.Error(err))
		}
	}

	name := s.fallback
	cfg, err := s.configs.Get(ctx, domain.TimezoneConfigKey)
	switch {
	case err == nil:
		if _, loadErr := time.LoadLocation(cfg.Value); loadErr != nil {
			s.logger.Warn("stored timezone is invalid, using default",
				zap.String("stored", cfg.Value),
				zap.String("default", s.fallback))
		} else {
			name = cfg.Value
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return "", apperrors.NewStorageError(err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, timezoneCacheKey, name, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("timezone cache write failed", zap.Error(err))
		}
	}
	return name, nil
}

// NowInSystemTimezone returns the current instant expressed in the system timezone.
func (s *TimezoneService) NowInSystemTimezone(ctx context.Context) (time.Time, error) {
	name, err := s.GetSystemTimezone(ctx)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Time{}, apperrors.NewInternalError(err)
	}
	return s.clock().In(loc), nil
}

// SetSystemTimezone stores a new timezone. Only admins may call it.
func (s *TimezoneService) SetSystemTimezone(ctx context.Context, principal domain.Principal, name string) (*domain.SystemConfig, error) {
	return s.SetConfig(ctx, principal, domain.TimezoneConfigKey, name, nil)
}

// ListConfigs returns every stored setting.
func (s *TimezoneService) ListConfigs(ctx context.Context) ([]domain.SystemConfig, error) {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return configs, nil
}

// SetConfig upserts a setting. Writing the timezone key validates the name
// against the IANA database and drops the cached value.
func (s *TimezoneService) SetConfig(ctx context.Context, principal domain.Principal, key, value string, description *string) (*domain.SystemConfig, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators may change system configuration")
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return nil, apperrors.NewValidationError("config key and value are required", nil)
	}
	if key == domain.TimezoneConfigKey {
		if _, err := time.LoadLocation(value); err != nil || value == "Local" {
			return nil, apperrors.NewValidationError("unknown timezone", map[string]any{"timezone": value})
		}
	}

	cfg := &domain.SystemConfig{Key: key, Value: value, Description: description}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	if key == domain.TimezoneConfigKey && s.cache != nil {
		if err := s.cache.Del(ctx, timezoneCacheKey).Err(); err != nil {
			s.logger.Warn("timezone cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("system config updated",
		zap.String("key", key),
		zap.String("user_id", principal.UserID))
	return cfg, nil
}
