package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	cost int
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost of new hashes.
func (s *Service) WithCost(cost int) {
	s.cost = cost
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Owner, error) {
	owner, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := compare(owner.PasswordHash, password); err != nil {
		return nil, err
	}
	return owner, nil
}

// Owner loads the signed-in account.
func (s *Service) Owner(ctx context.Context, ownerID uuid.UUID) (*Owner, error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.repo.FindByID(ctx, ownerID)
}

// VerifyPassword confirms password belongs to the owner. It backs
// re-confirmation of sensitive account changes.
func (s *Service) VerifyPassword(ctx context.Context, ownerID uuid.UUID, password string) error {
	owner, err := s.Owner(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := compare(owner.PasswordHash, password); err != nil {
		return shared.NewValidationError("password", "password is incorrect")
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, ownerID uuid.UUID, current, next string) error {
	if len(next) < MinPasswordLength {
		return shared.NewValidationError("new_password", fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}
	owner, err := s.Owner(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := compare(owner.PasswordHash, current); err != nil {
		return shared.NewValidationError("current_password", "current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, ownerID, string(hash))
}

func compare(hash, password string) error {
	if hash == "" {
		return shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	return nil
}
