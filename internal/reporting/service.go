package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Config carries the settings shared by every report.
type Config struct {
	Location       *time.Location
	CommissionRate decimal.Decimal
}

// Service builds the dashboard and finance reports.
type Service struct {
	store     Store
	fetcher   *Fetcher
	refresher *Refresher
	loc       *time.Location
	rate      decimal.Decimal
	now       func() time.Time
}

// NewService wires a Store and Refresher into a Service. A nil refresher
// runs reports untracked. The commission rate is used as given, so a zero
// rate charges no commission.
func NewService(store Store, refresher *Refresher, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		fetcher:   NewFetcher(store),
		refresher: refresher,
		loc:       loc,
		rate:      cfg.CommissionRate,
		now:       time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Location is the timezone used for calendar boundaries.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Refresher exposes the run tracker shared with the feature screens.
func (s *Service) Refresher() *Refresher {
	return s.refresher
}

// Dashboard runs the dashboard report for the owner.
func (s *Service) Dashboard(ctx context.Context, ownerID uuid.UUID) (Snapshot[DashboardReport], error) {
	return Run(ctx, s.refresher, ownerID, ReportDashboard, func(ctx context.Context) (DashboardReport, error) {
		return s.BuildDashboard(ctx, ownerID)
	})
}

// Finance runs the year-to-date finance report for the owner.
func (s *Service) Finance(ctx context.Context, ownerID uuid.UUID) (Snapshot[FinanceReport], error) {
	return Run(ctx, s.refresher, ownerID, ReportFinance, func(ctx context.Context) (FinanceReport, error) {
		return s.BuildFinance(ctx, ownerID)
	})
}

// BuildDashboard computes the dashboard without run tracking.
func (s *Service) BuildDashboard(ctx context.Context, ownerID uuid.UUID) (DashboardReport, error) {
	if ownerID == uuid.Nil {
		return DashboardReport{}, shared.ErrNotAuthenticated
	}
	var (
		ds       Dataset
		branding Branding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = s.fetcher.Load(gctx, ownerID, BookingQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		branding, err = s.store.Branding(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("reporting: load branding: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardReport{}, err
	}
	return BuildDashboard(Stitch(ds), branding, s.now(), s.loc), nil
}

// BuildFinance computes the finance report without run tracking.
func (s *Service) BuildFinance(ctx context.Context, ownerID uuid.UUID) (FinanceReport, error) {
	if ownerID == uuid.Nil {
		return FinanceReport{}, shared.ErrNotAuthenticated
	}
	now := s.now().In(s.loc)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.loc)

	var (
		ds      Dataset
		entries []ManualEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = s.fetcher.Load(gctx, ownerID, BookingQuery{CreatedFrom: yearStart})
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ManualEntries(gctx, ownerID, yearStart)
		if err != nil {
			return fmt.Errorf("reporting: load manual entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return FinanceReport{}, err
	}
	return BuildFinance(ds.Scope, Stitch(ds), entries, now.Year(), s.loc, s.rate), nil
}

// Branding returns the owner's business identity.
func (s *Service) Branding(ctx context.Context, ownerID uuid.UUID) (Branding, error) {
	if ownerID == uuid.Nil {
		return Branding{}, shared.ErrNotAuthenticated
	}
	branding, err := s.store.Branding(ctx, ownerID)
	if err != nil {
		return Branding{}, fmt.Errorf("reporting: load branding: %w", err)
	}
	return branding, nil
}

// Invalidate marks the owner's reports outdated after a write.
func (s *Service) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	return s.refresher.Bump(ctx, ownerID)
}
