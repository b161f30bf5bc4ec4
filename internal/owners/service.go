package owners

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Store is the persistence contract of the service.
type Store interface {
	Profile(ctx context.Context, ownerID uuid.UUID) (Profile, error)
	UpdateProfile(ctx context.Context, ownerID uuid.UUID, in ProfileInput) (Profile, error)
	UpdateBranding(ctx context.Context, ownerID uuid.UUID, in BrandingInput) (Profile, error)
	ClearLogo(ctx context.Context, ownerID uuid.UUID) error
	Billing(ctx context.Context, ownerID uuid.UUID) (Billing, error)
	UpsertBilling(ctx context.Context, ownerID uuid.UUID, b Billing) error
}

// Passwords checks and replaces account passwords.
type Passwords interface {
	VerifyPassword(ctx context.Context, ownerID uuid.UUID, password string) error
	ChangePassword(ctx context.Context, ownerID uuid.UUID, current, next string) error
}

// Service implements the account settings screen.
type Service struct {
	store     Store
	passwords Passwords
	refresher *reporting.Refresher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs the account service.
func NewService(store Store, passwords Passwords, refresher *reporting.Refresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		passwords: passwords,
		refresher: refresher,
		validate:  httpx.NewValidator(),
		logger:    logger,
	}
}

// Profile returns the owner's account record.
func (s *Service) Profile(ctx context.Context, ownerID uuid.UUID) (Profile, error) {
	if ownerID == uuid.Nil {
		return Profile{}, shared.ErrNotAuthenticated
	}
	return s.store.Profile(ctx, ownerID)
}

// UpdateProfile stores the contact fields.
func (s *Service) UpdateProfile(ctx context.Context, ownerID uuid.UUID, in ProfileInput) (Profile, error) {
	if ownerID == uuid.Nil {
		return Profile{}, shared.ErrNotAuthenticated
	}
	in = ProfileInput{
		FullName:    strings.TrimSpace(in.FullName),
		Phone:       strings.TrimSpace(in.Phone),
		Mobile:      strings.TrimSpace(in.Mobile),
		CompanyName: strings.TrimSpace(in.CompanyName),
	}
	if err := s.validate.Struct(in); err != nil {
		return Profile{}, err
	}
	return s.store.UpdateProfile(ctx, ownerID, in)
}

// UpdateBranding stores the business name and logo. Reports embed the
// branding, so they are invalidated.
func (s *Service) UpdateBranding(ctx context.Context, ownerID uuid.UUID, in BrandingInput) (Profile, error) {
	if ownerID == uuid.Nil {
		return Profile{}, shared.ErrNotAuthenticated
	}
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	if err := s.validate.Struct(in); err != nil {
		return Profile{}, err
	}
	profile, err := s.store.UpdateBranding(ctx, ownerID, in)
	if err != nil {
		return Profile{}, err
	}
	s.bump(ctx, ownerID)
	return profile, nil
}

// RemoveLogo clears the logo url.
func (s *Service) RemoveLogo(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.store.ClearLogo(ctx, ownerID); err != nil {
		return err
	}
	s.bump(ctx, ownerID)
	return nil
}

// Billing returns the stored bank details.
func (s *Service) Billing(ctx context.Context, ownerID uuid.UUID) (Billing, error) {
	if ownerID == uuid.Nil {
		return Billing{}, shared.ErrNotAuthenticated
	}
	return s.store.Billing(ctx, ownerID)
}

// UpdateBilling replaces the bank details after the password is confirmed.
// Submitting the stored values yields shared.ErrNoChanges.
func (s *Service) UpdateBilling(ctx context.Context, ownerID uuid.UUID, in BillingInput) (Billing, error) {
	if ownerID == uuid.Nil {
		return Billing{}, shared.ErrNotAuthenticated
	}
	in.Billing = in.Billing.Normalize()
	if err := s.validate.Struct(in); err != nil {
		return Billing{}, err
	}
	if err := s.passwords.VerifyPassword(ctx, ownerID, in.Password); err != nil {
		return Billing{}, err
	}
	current, err := s.store.Billing(ctx, ownerID)
	if err != nil {
		return Billing{}, err
	}
	if current == in.Billing {
		return Billing{}, shared.ErrNoChanges
	}
	if err := s.store.UpsertBilling(ctx, ownerID, in.Billing); err != nil {
		return Billing{}, err
	}
	s.logger.Info("billing details updated", slog.String("owner_id", ownerID.String()))
	return in.Billing, nil
}

// ChangePassword replaces the password once the confirmation matches.
func (s *Service) ChangePassword(ctx context.Context, ownerID uuid.UUID, in PasswordInput) error {
	if ownerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	return s.passwords.ChangePassword(ctx, ownerID, in.CurrentPassword, in.NewPassword)
}

func (s *Service) bump(ctx context.Context, ownerID uuid.UUID) {
	if err := s.refresher.Bump(ctx, ownerID); err != nil {
		s.logger.Warn("invalidate reports", slog.String("owner_id", ownerID.String()), slog.Any("error", err))
	}
}
