package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/room-booking/internal/domain"
)

const roomColumns = `id, name, description, capacity, equipment, hourly_rate, is_active, created_at, updated_at`

// RoomRepository is the Room Directory. It carries no policy.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Room, error)
	ListActive(ctx context.Context) ([]domain.Room, error)
	ListAvailable(ctx context.Context, start, end time.Time) ([]domain.Room, error)
	Deactivate(ctx context.Context, id string) error
}

type roomRepository struct {
	db DB
}

// NewRoomRepository returns a Postgres-backed implementation.
func NewRoomRepository(db DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	const query = `
        INSERT INTO meeting_rooms (name, description, capacity, equipment, hourly_rate, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	if room.Equipment == nil {
		room.Equipment = []string{}
	}
	return r.db.QueryRow(ctx, query,
		room.Name,
		room.Description,
		room.Capacity,
		room.Equipment,
		room.HourlyRate,
		room.IsActive,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	const query = `
        UPDATE meeting_rooms SET name=$1, description=$2, capacity=$3, equipment=$4, hourly_rate=$5,
            is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	if room.Equipment == nil {
		room.Equipment = []string{}
	}
	return r.db.QueryRow(ctx, query,
		room.Name,
		room.Description,
		room.Capacity,
		room.Equipment,
		room.HourlyRate,
		room.IsActive,
		room.ID,
	).Scan(&room.UpdatedAt)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM meeting_rooms WHERE id=$1`
	return scanRoom(r.db.QueryRow(ctx, query, id))
}

func (r *roomRepository) GetActiveByID(ctx context.Context, id string) (*domain.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM meeting_rooms WHERE id=$1 AND is_active = TRUE`
	return scanRoom(r.db.QueryRow(ctx, query, id))
}

func (r *roomRepository) ListActive(ctx context.Context) ([]domain.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM meeting_rooms WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRooms(rows)
}

// ListAvailable returns active rooms with no confirmed reservation overlapping [start, end).
func (r *roomRepository) ListAvailable(ctx context.Context, start, end time.Time) ([]domain.Room, error) {
	const query = `
        SELECT ` + roomColumns + ` FROM meeting_rooms mr
        WHERE mr.is_active = TRUE
          AND NOT EXISTS (
            SELECT 1 FROM reservations r
            WHERE r.room_id = mr.id AND r.status = $1
              AND r.start_time < $3 AND $2 < r.end_time
          )
        ORDER BY mr.name`
	rows, err := r.db.Query(ctx, query, domain.ReservationStatusConfirmed, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRooms(rows)
}

// Deactivate soft-deletes a room.
func (r *roomRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE meeting_rooms SET is_active = FALSE, updated_at=NOW() WHERE id=$1 AND is_active = TRUE`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	if err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&room.Capacity,
		&room.Equipment,
		&room.HourlyRate,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &room, nil
}

func scanRooms(rows pgx.Rows) ([]domain.Room, error) {
	result := []domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}
	return result, rows.Err()
}
