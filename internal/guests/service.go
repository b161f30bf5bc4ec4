package guests

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Store is the persistence contract of the service.
type Store interface {
	GuestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]reporting.Guest, error)
	GuestInScope(ctx context.Context, ownerID, guestID uuid.UUID) (reporting.Guest, error)
	Create(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error)
	Update(ctx context.Context, ownerID uuid.UUID, g reporting.Guest) (reporting.Guest, error)
	UpdateStatus(ctx context.Context, ownerID, guestID uuid.UUID, status reporting.GuestStatus) error
	Delete(ctx context.Context, ownerID, guestID uuid.UUID) error
}

// Service implements the guests screen.
type Service struct {
	store     Store
	fetcher   *reporting.Fetcher
	refresher *reporting.Refresher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService constructs the guests service.
func NewService(store Store, source reporting.Store, refresher *reporting.Refresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		fetcher:   reporting.NewFetcher(source),
		refresher: refresher,
		validate:  httpx.NewValidator(),
		logger:    logger,
	}
}

// Stitched runs the guests report: the owner's guests with booking figures.
func (s *Service) Stitched(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[[]reporting.GuestWithStats], error) {
	return reporting.Run(ctx, s.refresher, ownerID, reporting.ReportGuests, func(ctx context.Context) ([]reporting.GuestWithStats, error) {
		ds, err := s.fetcher.Load(ctx, ownerID, reporting.BookingQuery{})
		if err != nil {
			return nil, err
		}
		owned, err := s.store.GuestsByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("guests: load owned guests: %w", err)
		}
		return reporting.StitchGuests(mergeGuests(owned, ds.Relations.Guests), reporting.Stitch(ds)), nil
	})
}

// mergeGuests unions both lists by id, keeping the first occurrence.
func mergeGuests(lists ...[]reporting.Guest) []reporting.Guest {
	seen := make(map[uuid.UUID]struct{})
	var out []reporting.Guest
	for _, list := range lists {
		for _, g := range list {
			if _, ok := seen[g.ID]; ok {
				continue
			}
			seen[g.ID] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}

// List filters, sorts and pages the owner's guests.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter Filter, page, perPage int) (ListResult, error) {
	snap, err := s.Stitched(ctx, ownerID)
	if err != nil {
		return ListResult{}, err
	}
	filtered := filter.Apply(snap.Report)
	pagination := shared.NewPagination(page, perPage, len(filtered))
	return ListResult{
		Guests:      shared.Page(filtered, pagination),
		Stats:       ComputeStats(snap.Report),
		Pagination:  pagination,
		GeneratedAt: snap.GeneratedAt,
		Stale:       snap.Stale,
		Notice:      snap.Notice,
	}, nil
}

// Export returns every guest matching filter, unpaged.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]reporting.GuestWithStats, error) {
	snap, err := s.Stitched(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(snap.Report), nil
}

// Get loads one guest in the owner's scope.
func (s *Service) Get(ctx context.Context, ownerID, guestID uuid.UUID) (reporting.Guest, error) {
	if ownerID == uuid.Nil {
		return reporting.Guest{}, shared.ErrNotAuthenticated
	}
	return s.store.GuestInScope(ctx, ownerID, guestID)
}

// Create validates input and inserts a guest owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (reporting.Guest, error) {
	if ownerID == uuid.Nil {
		return reporting.Guest{}, shared.ErrNotAuthenticated
	}
	if err := s.validate.Struct(input); err != nil {
		return reporting.Guest{}, err
	}
	guest, err := s.store.Create(ctx, ownerID, NewGuest(input))
	if err != nil {
		return reporting.Guest{}, err
	}
	s.bump(ctx, ownerID)
	return guest, nil
}

// Update applies a partial edit.
func (s *Service) Update(ctx context.Context, ownerID, guestID uuid.UUID, input UpdateInput) (reporting.Guest, error) {
	if ownerID == uuid.Nil {
		return reporting.Guest{}, shared.ErrNotAuthenticated
	}
	if err := s.validate.Struct(input); err != nil {
		return reporting.Guest{}, err
	}
	current, err := s.store.GuestInScope(ctx, ownerID, guestID)
	if err != nil {
		return reporting.Guest{}, err
	}
	next := input.Apply(current)
	if next == current {
		return reporting.Guest{}, shared.ErrNoChanges
	}
	guest, err := s.store.Update(ctx, ownerID, next)
	if err != nil {
		return reporting.Guest{}, err
	}
	s.bump(ctx, ownerID)
	return guest, nil
}

// SetStatus changes the CRM status of a guest.
func (s *Service) SetStatus(ctx context.Context, ownerID, guestID uuid.UUID, input StatusInput) error {
	if ownerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.validate.Struct(input); err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, ownerID, guestID, reporting.GuestStatus(input.Status)); err != nil {
		return err
	}
	s.bump(ctx, ownerID)
	return nil
}

// Delete removes a guest in the owner's scope.
func (s *Service) Delete(ctx context.Context, ownerID, guestID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.ErrNotAuthenticated
	}
	if err := s.store.Delete(ctx, ownerID, guestID); err != nil {
		return err
	}
	s.bump(ctx, ownerID)
	return nil
}

func (s *Service) bump(ctx context.Context, ownerID uuid.UUID) {
	if err := s.refresher.Bump(ctx, ownerID); err != nil {
		s.logger.Warn("bump reports after guest write", slog.String("owner_id", ownerID.String()), slog.Any("error", err))
	}
}
