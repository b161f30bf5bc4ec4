package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Repository persists manual finance entries.
type Repository struct {
	db dbtx
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// List returns the owner's entries in [from, to), newest first. Zero
// bounds are open.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, from, to time.Time, entryType reporting.EntryType) ([]reporting.ManualEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reporting.ManualEntryColumns+`
		FROM manual_finances
		WHERE user_id = $1
			AND ($2::date IS NULL OR date >= $2)
			AND ($3::date IS NULL OR date < $3)
			AND ($4 = '' OR type = $4)
		ORDER BY date DESC, created_at DESC`,
		ownerID, nullableDate(from), nullableDate(to), string(entryType))
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, reporting.ScanManualEntry)
}

// Get loads one entry of the owner.
func (r *Repository) Get(ctx context.Context, ownerID, entryID uuid.UUID) (reporting.ManualEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reporting.ManualEntryColumns+` FROM manual_finances WHERE id = $1 AND user_id = $2`, entryID, ownerID)
	entry, err := reporting.ScanManualEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return reporting.ManualEntry{}, fmt.Errorf("entry %s: %w", entryID, shared.ErrNotFound)
	}
	return entry, err
}

// Create inserts an entry.
func (r *Repository) Create(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO manual_finances (user_id, title, description, amount, type, category, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+reporting.ManualEntryColumns,
		e.OwnerID, e.Title, e.Description, e.Amount, e.Type, e.Category, e.Date)
	return reporting.ScanManualEntry(row)
}

// Update replaces the editable fields of an entry of the owner.
func (r *Repository) Update(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE manual_finances
		SET title = $3, description = $4, amount = $5, type = $6, category = $7, date = $8
		WHERE id = $1 AND user_id = $2
		RETURNING `+reporting.ManualEntryColumns,
		e.ID, e.OwnerID, e.Title, e.Description, e.Amount, e.Type, e.Category, e.Date)
	updated, err := reporting.ScanManualEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return reporting.ManualEntry{}, fmt.Errorf("entry %s: %w", e.ID, shared.ErrNotFound)
	}
	return updated, err
}

// Delete removes an entry of the owner.
func (r *Repository) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM manual_finances WHERE id = $1 AND user_id = $2`, entryID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %s: %w", entryID, shared.ErrNotFound)
	}
	return nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
