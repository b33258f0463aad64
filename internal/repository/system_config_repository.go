package repository

import (
	"context"

	"github.com/spec-kit/room-booking/internal/domain"
)

// SystemConfigRepository is the key-value store behind system settings.
type SystemConfigRepository interface {
	Get(ctx context.Context, key string) (*domain.SystemConfig, error)
	Upsert(ctx context.Context, cfg *domain.SystemConfig) error
	List(ctx context.Context) ([]domain.SystemConfig, error)
}

type systemConfigRepository struct {
	db DB
}

// NewSystemConfigRepository returns a Postgres-backed implementation.
func NewSystemConfigRepository(db DB) SystemConfigRepository {
	return &systemConfigRepository{db: db}
}

func (r *systemConfigRepository) Get(ctx context.Context, key string) (*domain.SystemConfig, error) {
	const query = `
        SELECT id, config_key, config_value, description, created_at, updated_at
        FROM system_config WHERE config_key=$1`
	var cfg domain.SystemConfig
	if err := r.db.QueryRow(ctx, query, key).Scan(
		&cfg.ID, &cfg.Key, &cfg.Value, &cfg.Description, &cfg.CreatedAt, &cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert writes the value, keeping the stored description when none is given.
func (r *systemConfigRepository) Upsert(ctx context.Context, cfg *domain.SystemConfig) error {
	const query = `
        INSERT INTO system_config (config_key, config_value, description)
        VALUES ($1,$2,$3)
        ON CONFLICT (config_key) DO UPDATE SET
            config_value = EXCLUDED.config_value,
            description = COALESCE(EXCLUDED.description, system_config.description),
            updated_at = NOW()
        RETURNING id, description, created_at, updated_at`
	return r.db.QueryRow(ctx, query, cfg.Key, cfg.Value, cfg.Description).
		Scan(&cfg.ID, &cfg.Description, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *systemConfigRepository) List(ctx context.Context) ([]domain.SystemConfig, error) {
	const query = `
        SELECT id, config_key, config_value, description, created_at, updated_at
        FROM system_config ORDER BY config_key`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []domain.SystemConfig{}
	for rows.Next() {
		var cfg domain.SystemConfig
		if err := rows.Scan(&cfg.ID, &cfg.Key, &cfg.Value, &cfg.Description, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}
