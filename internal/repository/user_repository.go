package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/room-booking/internal/domain"
)

// UserRepository defines persistence access for employees and their tiers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userSelect = `
        SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role, u.user_type_id,
               u.is_active, u.created_at, u.updated_at,
               ut.id, ut.name, ut.weekly_hours_limit, ut.description, ut.created_at, ut.updated_at
        FROM users u
        LEFT JOIN user_types ut ON ut.id = u.user_type_id`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, first_name, last_name, role, user_type_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.UserTypeID,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translateError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.email=$1`, email))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user       domain.User
		typeID     *string
		typeName   *string
		typeLimit  *int
		typeDesc   *string
		typeCreate *time.Time
		typeUpdate *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.UserTypeID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&typeID,
		&typeName,
		&typeLimit,
		&typeDesc,
		&typeCreate,
		&typeUpdate,
	); err != nil {
		return nil, err
	}
	if typeID != nil {
		ut := &domain.UserType{ID: *typeID, Description: typeDesc}
		if typeName != nil {
			ut.Name = *typeName
		}
		if typeLimit != nil {
			ut.WeeklyHoursLimit = *typeLimit
		}
		if typeCreate != nil {
			ut.CreatedAt = *typeCreate
		}
		if typeUpdate != nil {
			ut.UpdatedAt = *typeUpdate
		}
		user.UserType = ut
	}
	return &user, nil
}
