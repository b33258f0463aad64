package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/domain"
)

const reservationColumns = `id, user_id, room_id, start_time, end_time, status, purpose, total_hours, created_at, updated_at`

// ReservationFilter narrows the admin listing.
type ReservationFilter struct {
	UserID   *string
	RoomID   *string
	Statuses []domain.ReservationStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ReservationRepository is the durable Reservation Store. Reads are issued
// straight to the database; nothing is cached.
type ReservationRepository interface {
	Insert(ctx context.Context, reservation *domain.Reservation) error
	Update(ctx context.Context, reservation *domain.Reservation, expected domain.ReservationStatus) error
	UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error)
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	FindAll(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error)
	FindAdjacent(ctx context.Context, userID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error)
	SumHoursInWindow(ctx context.Context, userID string, windowStart, windowEnd time.Time, status domain.ReservationStatus) (decimal.Decimal, error)
}

type reservationRepository struct {
	db DB
}

// NewReservationRepository returns a Postgres-backed Reservation Store.
func NewReservationRepository(db DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Insert(ctx context.Context, reservation *domain.Reservation) error {
	const query = `
        INSERT INTO reservations (user_id, room_id, start_time, end_time, status, purpose, total_hours)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		reservation.UserID,
		reservation.RoomID,
		reservation.StartTime,
		reservation.EndTime,
		reservation.Status,
		reservation.Purpose,
		reservation.TotalHours,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	return translateError(err)
}

// Update writes every mutable column. The write only applies while the row
// still holds the expected status; otherwise pgx.ErrNoRows is returned.
func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation, expected domain.ReservationStatus) error {
	const query = `
        UPDATE reservations SET room_id=$1, start_time=$2, end_time=$3, status=$4, purpose=$5,
            total_hours=$6, updated_at=NOW()
        WHERE id=$7 AND status=$8
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		reservation.RoomID,
		reservation.StartTime,
		reservation.EndTime,
		reservation.Status,
		reservation.Purpose,
		reservation.TotalHours,
		reservation.ID,
		expected,
	).Scan(&reservation.UpdatedAt)
	return translateError(err)
}

// UpdateStatus moves a reservation from one status to another. The update only
// applies while the row still holds from; otherwise pgx.ErrNoRows is returned.
func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	const query = `
        UPDATE reservations SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + reservationColumns
	reservation, err := scanReservation(r.db.QueryRow(ctx, query, to, id, from))
	if err != nil {
		return nil, translateError(err)
	}
	return reservation, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE id=$1`
	return scanReservation(r.db.QueryRow(ctx, query, id))
}

func (r *reservationRepository) FindByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id=$1 ORDER BY start_time DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) FindAll(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error) {
	builder := squirrel.
		Select(reservationColumns).
		From("reservations").
		OrderBy("start_time DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.RoomID != nil {
		builder = builder.Where(squirrel.Eq{"room_id": *filter.RoomID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// FindOverlapping returns reservations in the room whose [start_time, end_time)
// intersects [start, end).
func (r *reservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + ` FROM reservations
        WHERE room_id=$1 AND status=$2 AND start_time < $4 AND $3 < end_time
        ORDER BY start_time`
	rows, err := r.db.Query(ctx, query, roomID, status, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// FindAdjacent returns the user's reservations, in any room, that end exactly
// at start or begin exactly at end.
func (r *reservationRepository) FindAdjacent(ctx context.Context, userID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + ` FROM reservations
        WHERE user_id=$1 AND status=$2 AND (end_time = $3 OR start_time = $4)
        ORDER BY start_time`
	rows, err := r.db.Query(ctx, query, userID, status, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// SumHoursInWindow totals total_hours for reservations starting in [windowStart, windowEnd).
func (r *reservationRepository) SumHoursInWindow(ctx context.Context, userID string, windowStart, windowEnd time.Time, status domain.ReservationStatus) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(total_hours), 0) FROM reservations
        WHERE user_id=$1 AND status=$2 AND start_time >= $3 AND start_time < $4`
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID, status, windowStart, windowEnd).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.RoomID,
		&res.StartTime,
		&res.EndTime,
		&res.Status,
		&res.Purpose,
		&res.TotalHours,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	result := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	return result, rows.Err()
}
