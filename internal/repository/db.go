package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the pgx surface the repositories depend on. *pgxpool.Pool and
// pgxmock pools both satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"

	slotConstraint = "uq_reservations_room_slot_confirmed"
)

var (
	// ErrSlotTaken is returned when the confirmed (room_id, start_time) uniqueness constraint rejects a write.
	ErrSlotTaken = errors.New("repository: room slot already taken")
	// ErrDuplicate is returned for any other unique violation.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrReference is returned when a foreign key target does not exist.
	ErrReference = errors.New("repository: referenced record missing")
)

// translateError maps Postgres constraint failures onto repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == slotConstraint {
			return ErrSlotTaken
		}
		return ErrDuplicate
	case pgFKViolation:
		return ErrReference
	}
	return err
}
