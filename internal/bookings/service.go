package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Store is the persistence contract of the service.
type Store interface {
	BookingInScope(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.Booking, error)
	InsertStatus(ctx context.Context, change reporting.StatusChange) (reporting.StatusChange, error)
	History(ctx context.Context, bookingID uuid.UUID) ([]reporting.StatusChange, error)
}

// Service implements the bookings screen.
type Service struct {
	store     Store
	fetcher   *reporting.Fetcher
	refresher *reporting.Refresher
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewService constructs the bookings service.
func NewService(store Store, source reporting.Store, refresher *reporting.Refresher, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		fetcher:   reporting.NewFetcher(source),
		refresher: refresher,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Stitched runs the bookings report: every booking in the owner's scope
// with its relations, newest first.
func (s *Service) Stitched(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[[]reporting.BookingWithRelations], error) {
	return reporting.Run(ctx, s.refresher, ownerID, reporting.ReportBookings, func(ctx context.Context) ([]reporting.BookingWithRelations, error) {
		ds, err := s.fetcher.Load(ctx, ownerID, reporting.BookingQuery{})
		if err != nil {
			return nil, err
		}
		return reporting.Stitch(ds), nil
	})
}

// List filters and pages the owner's bookings.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter Filter, page, perPage int) (ListResult, error) {
	snap, err := s.Stitched(ctx, ownerID)
	if err != nil {
		return ListResult{}, err
	}
	today := Today(s.now(), s.loc)
	filtered := filter.Apply(snap.Report, today)
	pagination := shared.NewPagination(page, perPage, len(filtered))
	return ListResult{
		Bookings:    shared.Page(filtered, pagination),
		Stats:       ComputeStats(snap.Report, today),
		Pagination:  pagination,
		GeneratedAt: snap.GeneratedAt,
		Stale:       snap.Stale,
		Notice:      snap.Notice,
	}, nil
}

// Stats returns the list counters only.
func (s *Service) Stats(ctx context.Context, ownerID uuid.UUID) (Stats, error) {
	snap, err := s.Stitched(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(snap.Report, Today(s.now(), s.loc)), nil
}

// Approve confirms a pending booking.
func (s *Service) Approve(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.StatusChange, error) {
	return s.decide(ctx, ownerID, bookingID, approve)
}

// Reject cancels a pending booking.
func (s *Service) Reject(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.StatusChange, error) {
	return s.decide(ctx, ownerID, bookingID, reject)
}

func (s *Service) decide(ctx context.Context, ownerID, bookingID uuid.UUID, d Decision) (reporting.StatusChange, error) {
	if ownerID == uuid.Nil {
		return reporting.StatusChange{}, shared.ErrNotAuthenticated
	}
	booking, err := s.store.BookingInScope(ctx, ownerID, bookingID)
	if err != nil {
		return reporting.StatusChange{}, err
	}
	history, err := s.store.History(ctx, bookingID)
	if err != nil {
		return reporting.StatusChange{}, fmt.Errorf("bookings: load history: %w", err)
	}
	current := booking.Status
	if latest, ok := reporting.LatestStatusChanges(history)[bookingID]; ok {
		current = latest.Status
	}
	if current != reporting.StatusPending {
		return reporting.StatusChange{}, ErrNotPending
	}

	changedBy := ownerID
	change, err := s.store.InsertStatus(ctx, reporting.StatusChange{
		BookingID: bookingID,
		Status:    d.Status,
		ChangedBy: &changedBy,
		Notes:     d.Note,
	})
	if err != nil {
		return reporting.StatusChange{}, fmt.Errorf("bookings: append status: %w", err)
	}
	if err := s.refresher.Bump(ctx, ownerID); err != nil {
		s.logger.Warn("bump reports after booking decision", slog.String("owner_id", ownerID.String()), slog.Any("error", err))
	}
	s.logger.Info("booking decision recorded",
		slog.String("booking_id", bookingID.String()),
		slog.String("status", string(d.Status)))
	return change, nil
}

// History lists the status changes of a booking in the owner's scope.
func (s *Service) History(ctx context.Context, ownerID, bookingID uuid.UUID) ([]reporting.StatusChange, error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if _, err := s.store.BookingInScope(ctx, ownerID, bookingID); err != nil {
		return nil, err
	}
	history, err := s.store.History(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("bookings: load history: %w", err)
	}
	return reporting.SortStatusHistory(history), nil
}
