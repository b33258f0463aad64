package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/room-booking/internal/domain"
)

// UserTypeRepository reads quota tiers.
type UserTypeRepository interface {
	List(ctx context.Context) ([]domain.UserType, error)
	GetByID(ctx context.Context, id string) (*domain.UserType, error)
}

type userTypeRepository struct {
	db DB
}

// NewUserTypeRepository returns a Postgres-backed implementation.
func NewUserTypeRepository(db DB) UserTypeRepository {
	return &userTypeRepository{db: db}
}

func (r *userTypeRepository) List(ctx context.Context) ([]domain.UserType, error) {
	const query = `
        SELECT id, name, weekly_hours_limit, description, created_at, updated_at
        FROM user_types ORDER BY weekly_hours_limit`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []domain.UserType{}
	for rows.Next() {
		ut, err := scanUserType(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ut)
	}
	return result, rows.Err()
}

func (r *userTypeRepository) GetByID(ctx context.Context, id string) (*domain.UserType, error) {
	const query = `
        SELECT id, name, weekly_hours_limit, description, created_at, updated_at
        FROM user_types WHERE id=$1`
	return scanUserType(r.db.QueryRow(ctx, query, id))
}

func scanUserType(row pgx.Row) (*domain.UserType, error) {
	var ut domain.UserType
	if err := row.Scan(&ut.ID, &ut.Name, &ut.WeeklyHoursLimit, &ut.Description, &ut.CreatedAt, &ut.UpdatedAt); err != nil {
		return nil, err
	}
	return &ut, nil
}
