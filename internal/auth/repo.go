package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Owner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const ownerColumns = `id, email, COALESCE(full_name, ''), COALESCE(business_name, ''), COALESCE(password_hash, ''), created_at`

func scanOwner(row pgx.Row) (*Owner, error) {
	var o Owner
	if err := row.Scan(&o.ID, &o.Email, &o.FullName, &o.BusinessName, &o.PasswordHash, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByEmail fetches an owner by email, ignoring case.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Owner, error) {
	return scanOwner(r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM hotel_owners WHERE lower(email) = $1`, strings.ToLower(email)))
}

// FindByID fetches an owner by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Owner, error) {
	return scanOwner(r.db.QueryRow(ctx, `SELECT `+ownerColumns+` FROM hotel_owners WHERE id = $1`, id))
}

// UpdatePasswordHash replaces the stored hash.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE hotel_owners SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("owner %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
