package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/writemytrip/ownerdesk/internal/platform/db"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository provides booking persistence scoped by owner.
type Repository struct {
	db   dbtx
	txer db.TxBeginner
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, txer: pool}
}

// BookingInScope loads a booking that belongs to one of the owner's
// properties. Bookings outside the scope are reported as not found.
func (r *Repository) BookingInScope(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.Booking, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+reporting.BookingColumns+`
		FROM bookings b
		JOIN room_types rt ON rt.id = b.room_type_id
		JOIN hotels h ON h.id = rt.property_id
		WHERE b.id = $1 AND h.owner_id = $2`, bookingID, ownerID)
	booking, err := reporting.ScanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return reporting.Booking{}, fmt.Errorf("booking %s: %w", bookingID, shared.ErrNotFound)
	}
	if err != nil {
		return reporting.Booking{}, err
	}
	return booking, nil
}

// InsertStatus appends a status change and returns it as stored. The
// booking row is locked while the latest status is checked so two
// concurrent decisions cannot both succeed.
func (r *Repository) InsertStatus(ctx context.Context, change reporting.StatusChange) (reporting.StatusChange, error) {
	var stored reporting.StatusChange
	err := db.WithTx(ctx, r.txer, func(tx pgx.Tx) error {
		var status reporting.BookingStatus
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(
				(SELECT s.status FROM booking_status s WHERE s.booking_id = b.id ORDER BY s.created_at DESC, s.id DESC LIMIT 1),
				b.status)
			FROM bookings b
			WHERE b.id = $1
			FOR UPDATE OF b`, change.BookingID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("booking %s: %w", change.BookingID, shared.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if status != reporting.StatusPending {
			return ErrNotPending
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO booking_status (booking_id, status, changed_by, notes)
			VALUES ($1, $2, $3, $4)
			RETURNING id, booking_id, status, changed_by, COALESCE(notes, ''), created_at`,
			change.BookingID, change.Status, change.ChangedBy, change.Notes)
		stored, err = reporting.ScanStatusChange(row)
		return err
	})
	return stored, err
}

// History lists a booking's status changes, newest first.
func (r *Repository) History(ctx context.Context, bookingID uuid.UUID) ([]reporting.StatusChange, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, booking_id, status, changed_by, COALESCE(notes, ''), created_at
		FROM booking_status
		WHERE booking_id = $1
		ORDER BY created_at DESC, id DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, reporting.ScanStatusChange)
}
