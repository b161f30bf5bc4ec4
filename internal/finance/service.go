package finance

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Store is the persistence contract of the service.
type Store interface {
	List(ctx context.Context, ownerID uuid.UUID, from, to time.Time, entryType reporting.EntryType) ([]reporting.ManualEntry, error)
	Get(ctx context.Context, ownerID, entryID uuid.UUID) (reporting.ManualEntry, error)
	Create(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error)
	Update(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error)
	Delete(ctx context.Context, ownerID, entryID uuid.UUID) error
}

// Service manages manual entries and keeps the finance report current.
type Service struct {
	store     Store
	refresher *reporting.Refresher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs the service.
func NewService(store Store, refresher *reporting.Refresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, refresher: refresher, validate: httpx.NewValidator(), logger: logger}
}

// List returns the owner's entries matching filter with their totals.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (ListResult, error) {
	if ownerID == uuid.Nil {
		return ListResult{}, shared.ErrNotAuthenticated
	}
	var from, to time.Time
	if filter.Year != 0 {
		from = time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	}
	entries, err := s.store.List(ctx, ownerID, from, to, filter.Type)
	if err != nil {
		return ListResult{}, err
	}
	if entries == nil {
		entries = []reporting.ManualEntry{}
	}
	return ListResult{Entries: entries, Summary: Summarize(entries)}, nil
}

// Create validates and stores a new entry.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input EntryInput) (reporting.ManualEntry, error) {
	entry, err := s.entry(ownerID, input)
	if err != nil {
		return reporting.ManualEntry{}, err
	}
	created, err := s.store.Create(ctx, entry)
	if err != nil {
		return reporting.ManualEntry{}, err
	}
	s.bump(ctx, ownerID)
	return created, nil
}

// Update replaces an existing entry of the owner.
func (s *Service) Update(ctx context.Context, ownerID, entryID uuid.UUID, input EntryInput) (reporting.ManualEntry, error) {
	entry, err := s.entry(ownerID, input)
	if err != nil {
		return reporting.ManualEntry{}, err
	}
	entry.ID = entryID
	updated, err := s.store.Update(ctx, entry)
	if err != nil {
		return reporting.ManualEntry{}, err
	}
	s.bump(ctx, ownerID)
	return updated, nil
}

// Delete removes an entry of the owner.
func (s *Service) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.store.Delete(ctx, ownerID, entryID); err != nil {
		return err
	}
	s.bump(ctx, ownerID)
	return nil
}

func (s *Service) entry(ownerID uuid.UUID, input EntryInput) (reporting.ManualEntry, error) {
	if ownerID == uuid.Nil {
		return reporting.ManualEntry{}, shared.ErrNotAuthenticated
	}
	if err := s.validate.Struct(input); err != nil {
		return reporting.ManualEntry{}, err
	}
	return input.Entry(ownerID)
}

func (s *Service) bump(ctx context.Context, ownerID uuid.UUID) {
	if err := s.refresher.Bump(ctx, ownerID); err != nil {
		s.logger.Warn("bump reports after entry write", slog.String("owner_id", ownerID.String()), slog.Any("error", err))
	}
}
