// Package properties lists the owner's properties with room inventory and
// current occupancy.
package properties

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Property is a listing with its inventory figures.
type Property struct {
	reporting.Property
	RoomTypes     int `json:"room_types"`
	TotalRooms    int `json:"total_rooms"`
	OccupiedRooms int `json:"occupied_rooms"`
}

// Stats are the counters above the property list.
type Stats struct {
	TotalProperties  int     `json:"total_properties"`
	ActiveProperties int     `json:"active_properties"`
	TotalRooms       int     `json:"total_rooms"`
	AvailableRooms   int     `json:"available_rooms"`
	OccupancyRate    float64 `json:"occupancy_rate"`
}

// Report is the cached properties snapshot.
type Report struct {
	Properties []Property `json:"properties"`
	Stats      Stats      `json:"stats"`
}

// Filter holds the list query.
type Filter struct {
	Status reporting.PropertyStatus
	Query  string
}

// ParseFilter validates raw query values.
func ParseFilter(status, query string) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(query)}
	switch s := reporting.PropertyStatus(strings.ToLower(strings.TrimSpace(status))); {
	case s == "" || s == "all":
	case s.Valid():
		f.Status = s
	default:
		return Filter{}, shared.NewValidationError("status", "must be one of all active inactive suspended pending_approval")
	}
	return f, nil
}

// Apply keeps the properties matching f. Search covers name, city and
// property type.
func (f Filter) Apply(props []Property) []Property {
	query := strings.ToLower(f.Query)
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.City), query) &&
			!strings.Contains(strings.ToLower(p.PropertyType), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Build derives per-property inventory and the owner-wide stats. A booking
// occupies its rooms while its effective status is checked-in.
func Build(scope reporting.Scope, bookings []reporting.BookingWithRelations) Report {
	occupied := make(map[uuid.UUID]int)
	for _, b := range bookings {
		if b.EffectiveStatus != reporting.StatusCheckedIn || b.Property == nil {
			continue
		}
		rooms := b.RoomsBooked
		if rooms < 1 {
			rooms = 1
		}
		occupied[b.Property.ID] += rooms
	}
	byProperty := make(map[uuid.UUID][]reporting.RoomType)
	for _, rt := range scope.RoomTypes {
		byProperty[rt.PropertyID] = append(byProperty[rt.PropertyID], rt)
	}

	report := Report{Properties: make([]Property, 0, len(scope.Properties))}
	occupiedTotal := 0
	for _, p := range scope.Properties {
		item := Property{
			Property:      p,
			RoomTypes:     len(byProperty[p.ID]),
			TotalRooms:    reporting.TotalRooms(byProperty[p.ID]),
			OccupiedRooms: occupied[p.ID],
		}
		report.Properties = append(report.Properties, item)
		report.Stats.TotalProperties++
		if p.Status == reporting.PropertyActive {
			report.Stats.ActiveProperties++
		}
		report.Stats.TotalRooms += item.TotalRooms
		occupiedTotal += item.OccupiedRooms
	}
	report.Stats.AvailableRooms = max(report.Stats.TotalRooms-occupiedTotal, 0)
	rate := reporting.SafePercent(float64(occupiedTotal), float64(report.Stats.TotalRooms))
	report.Stats.OccupancyRate = math.Round(math.Min(rate, 100)*10) / 10
	return report
}

// Result is one filtered view of the report.
type Result struct {
	Properties  []Property `json:"properties"`
	Stats       Stats      `json:"stats"`
	GeneratedAt time.Time  `json:"generated_at"`
	Stale       bool       `json:"stale"`
	Notice      string     `json:"notice,omitempty"`
}

// Service implements the properties screen.
type Service struct {
	fetcher   *reporting.Fetcher
	refresher *reporting.Refresher
	logger    *slog.Logger
}

// NewService constructs the service.
func NewService(source reporting.Store, refresher *reporting.Refresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: reporting.NewFetcher(source), refresher: refresher, logger: logger}
}

// Report runs the properties report for the owner.
func (s *Service) Report(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[Report], error) {
	return reporting.Run(ctx, s.refresher, ownerID, reporting.ReportProperties, func(ctx context.Context) (Report, error) {
		ds, err := s.fetcher.Load(ctx, ownerID, reporting.BookingQuery{})
		if err != nil {
			return Report{}, err
		}
		return Build(ds.Scope, reporting.Stitch(ds)), nil
	})
}

// List filters the report. Stats always cover every property.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter Filter) (Result, error) {
	snap, err := s.Report(ctx, ownerID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Properties:  filter.Apply(snap.Report.Properties),
		Stats:       snap.Report.Stats,
		GeneratedAt: snap.GeneratedAt,
		Stale:       snap.Stale,
		Notice:      snap.Notice,
	}, nil
}
