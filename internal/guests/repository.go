package guests

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

// Repository provides guest persistence.
type Repository struct {
	db dbtx
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// inScope matches guests added by the owner or referenced by a booking of
// one of the owner's properties. $1 is the owner id.
const inScope = `(owner_id = $1 OR EXISTS (
		SELECT 1 FROM bookings b
		JOIN room_types rt ON rt.id = b.room_type_id
		JOIN hotels h ON h.id = rt.property_id
		WHERE b.guest_id = guests.id AND h.owner_id = $1))`

// GuestsByOwner lists the guests the owner added directly.
func (r *Repository) GuestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]reporting.Guest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reporting.GuestColumns+` FROM guests WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, reporting.ScanGuest)
}

// GuestInScope loads one guest visible to the owner.
func (r *Repository) GuestInScope(ctx context.Context, ownerID, guestID uuid.UUID) (reporting.Guest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reporting.GuestColumns+` FROM guests WHERE id = $2 AND `+inScope, ownerID, guestID)
	guest, err := reporting.ScanGuest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return reporting.Guest{}, fmt.Errorf("guest %s: %w", guestID, shared.ErrNotFound)
	}
	return guest, err
}

// Create inserts a guest owned by ownerID.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO guests (owner_id, name, email, phone, nationality, id_type, id_number, address,
			emergency_contact, emergency_phone, special_requests, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12)
		RETURNING `+reporting.GuestColumns,
		ownerID, g.Name, g.Email, g.Phone, g.Nationality, g.IDType, g.IDNumber, g.Address,
		g.EmergencyContact, g.EmergencyPhone, g.SpecialRequests, g.Status)
	created, err := reporting.ScanGuest(row)
	if db.IsUniqueViolation(err) {
		return reporting.Guest{}, ErrDuplicateEmail
	}
	return created, err
}

// Update stores the editable fields of g.
func (r *Repository) Update(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE guests SET name = $3, email = $4, phone = $5, nationality = NULLIF($6, ''),
			id_type = NULLIF($7, ''), id_number = NULLIF($8, ''), address = NULLIF($9, ''),
			emergency_contact = NULLIF($10, ''), emergency_phone = NULLIF($11, ''),
			special_requests = NULLIF($12, ''), notes = NULLIF($13, '')
		WHERE id = $2 AND `+inScope+`
		RETURNING `+reporting.GuestColumns,
		ownerID, g.ID, g.Name, g.Email, g.Phone, g.Nationality, g.IDType, g.IDNumber, g.Address,
		g.EmergencyContact, g.EmergencyPhone, g.SpecialRequests, g.Notes)
	updated, err := reporting.ScanGuest(row)
	switch {
	case db.IsUniqueViolation(err):
		return reporting.Guest{}, ErrDuplicateEmail
	case errors.Is(err, pgx.ErrNoRows):
		return reporting.Guest{}, fmt.Errorf("guest %s: %w", g.ID, shared.ErrNotFound)
	}
	return updated, err
}

// UpdateStatus changes a guest's CRM status.
func (r *Repository) UpdateStatus(ctx context.Context, ownerID, guestID uuid.UUID, status reporting.GuestStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE guests SET status = $3 WHERE id = $2 AND `+inScope, ownerID, guestID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("guest %s: %w", guestID, shared.ErrNotFound)
	}
	return nil
}

// Delete removes a guest.
func (r *Repository) Delete(ctx context.Context, ownerID, guestID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM guests WHERE id = $2 AND `+inScope, ownerID, guestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("guest %s: %w", guestID, shared.ErrNotFound)
	}
	return nil
}
