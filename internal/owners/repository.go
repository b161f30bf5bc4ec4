package owners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository persists account settings.
type Repository struct {
	db dbtx
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const profileColumns = `id, email, COALESCE(full_name, ''), COALESCE(phone, ''), COALESCE(mobile, ''),
	COALESCE(company_name, ''), COALESCE(business_name, ''), COALESCE(logo_url, '')`

func scanProfile(row pgx.Row, id uuid.UUID) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Mobile, &p.CompanyName, &p.BusinessName, &p.LogoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("owner %s: %w", id, shared.ErrNotFound)
	}
	return p, err
}

// Profile loads the owner's account record.
func (r *Repository) Profile(ctx context.Context, ownerID uuid.UUID) (Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM hotel_owners WHERE id = $1`, ownerID), ownerID)
}

// UpdateProfile stores the contact fields.
func (r *Repository) UpdateProfile(ctx context.Context, ownerID uuid.UUID, in ProfileInput) (Profile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE hotel_owners
		SET full_name = $2, phone = NULLIF($3, ''), mobile = NULLIF($4, ''), company_name = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		ownerID, in.FullName, in.Phone, in.Mobile, in.CompanyName)
	return scanProfile(row, ownerID)
}

// UpdateBranding stores the business name and logo url. An empty logo url
// clears the logo.
func (r *Repository) UpdateBranding(ctx context.Context, ownerID uuid.UUID, in BrandingInput) (Profile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE hotel_owners
		SET business_name = NULLIF($2, ''), logo_url = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		ownerID, in.BusinessName, in.LogoURL)
	return scanProfile(row, ownerID)
}

// ClearLogo removes the logo url.
func (r *Repository) ClearLogo(ctx context.Context, ownerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE hotel_owners SET logo_url = NULL, updated_at = NOW() WHERE id = $1`, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("owner %s: %w", ownerID, shared.ErrNotFound)
	}
	return nil
}

// Billing loads the owner's bank details. Owners without a row get empty
// details.
func (r *Repository) Billing(ctx context.Context, ownerID uuid.UUID) (Billing, error) {
	var b Billing
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(bank_name, ''), COALESCE(bank_account_number, ''), COALESCE(ifsc_code, ''), COALESCE(pan_number, '')
		FROM owner_kyc WHERE user_id = $1`, ownerID).Scan(&b.BankName, &b.AccountNumber, &b.IFSCCode, &b.PANNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, nil
	}
	return b, err
}

// UpsertBilling writes the bank details keyed by owner.
func (r *Repository) UpsertBilling(ctx context.Context, ownerID uuid.UUID, b Billing) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO owner_kyc (user_id, bank_name, bank_account_number, ifsc_code, pan_number, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name,
			bank_account_number = EXCLUDED.bank_account_number,
			ifsc_code = EXCLUDED.ifsc_code,
			pan_number = EXCLUDED.pan_number,
			updated_at = EXCLUDED.updated_at`,
		ownerID, b.BankName, b.AccountNumber, b.IFSCCode, b.PANNumber)
	return err
}
