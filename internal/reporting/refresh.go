package reporting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// ErrStaleRun is returned when a run finishes after a newer run of the
// same report was started.
var ErrStaleRun = errors.New("reporting: stale run discarded")

// User-facing notices attached to fallback snapshots.
const (
	NoticeFetchFailed = "Could not refresh data. Showing the last loaded figures."
	NoticeSuperseded  = "A newer refresh replaced this one."
)

// Snapshot wraps a report with the metadata of the run that produced it.
type Snapshot[T any] struct {
	Report      T         `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
	Generation  int64     `json:"generation"`
	Stale       bool      `json:"stale"`
	Notice      string    `json:"notice,omitempty"`
}

// Ticket identifies one pipeline run.
type Ticket struct {
	OwnerID    uuid.UUID
	Report     string
	Generation int64
}

func (t Ticket) key() string {
	return t.OwnerID.String() + ":" + t.Report
}

type inflightRun struct {
	generation int64
	cancel     context.CancelFunc
}

// Refresher serialises report runs per owner and report. Starting a run
// cancels the previous in-flight one, and only the newest generation may
// commit its snapshot.
type Refresher struct {
	cache   *Cache
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]inflightRun
	local    map[string]int64
}

// NewRefresher constructs a Refresher. Without a cache, generations are
// tracked in process and no snapshot survives the run.
func NewRefresher(cache *Cache, logger *slog.Logger, metrics *Metrics) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cache:    cache,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		inflight: make(map[string]inflightRun),
		local:    make(map[string]int64),
	}
}

// WithNow overrides the refresher clock for testing.
func (r *Refresher) WithNow(fn func() time.Time) {
	if fn != nil {
		r.now = fn
	}
}

// Begin starts a new run and returns its ticket and the context the run
// must use.
func (r *Refresher) Begin(ctx context.Context, ownerID uuid.UUID, report string) (Ticket, context.Context, error) {
	ticket := Ticket{OwnerID: ownerID, Report: report}
	if r.cache != nil {
		gen, err := r.cache.NextGeneration(ctx, ownerID, report)
		if err != nil {
			return Ticket{}, nil, err
		}
		ticket.Generation = gen
	}

	runCtx, cancel := context.WithCancel(ctx)
	key := ticket.key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.local[key]++
		ticket.Generation = r.local[key]
	}
	if prev, ok := r.inflight[key]; ok && prev.generation < ticket.Generation {
		prev.cancel()
	}
	r.inflight[key] = inflightRun{generation: ticket.Generation, cancel: cancel}
	return ticket, runCtx, nil
}

// Finish releases the run's context.
func (r *Refresher) Finish(t Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := t.key()
	if run, ok := r.inflight[key]; ok && run.generation == t.Generation {
		run.cancel()
		delete(r.inflight, key)
	}
}

// Current reports whether t is still the newest run of its report.
func (r *Refresher) Current(ctx context.Context, t Ticket) (bool, error) {
	if r.cache != nil {
		gen, err := r.cache.Generation(ctx, t.OwnerID, t.Report)
		if err != nil {
			return false, err
		}
		return gen == t.Generation, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local[t.key()] == t.Generation, nil
}

// Invalidate cancels the owner's in-flight runs. Local generations are
// advanced so those runs cannot commit.
func (r *Refresher) Invalidate(ownerID uuid.UUID) {
	prefix := ownerID.String() + ":"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, run := range r.inflight {
		if strings.HasPrefix(key, prefix) {
			run.cancel()
			delete(r.inflight, key)
		}
	}
	if r.cache == nil {
		for _, report := range Reports {
			r.local[prefix+report]++
		}
	}
}

// Bump invalidates the owner's reports after a write.
func (r *Refresher) Bump(ctx context.Context, ownerID uuid.UUID) error {
	if r == nil {
		return nil
	}
	r.Invalidate(ownerID)
	if r.cache == nil {
		return nil
	}
	return r.cache.Bump(ctx, ownerID)
}

// Listen forwards bumps published by other instances to Invalidate.
func (r *Refresher) Listen(ctx context.Context) error {
	if r == nil || r.cache == nil {
		return nil
	}
	return r.cache.ListenForInvalidation(ctx, r.Invalidate)
}

func (r *Refresher) commit(ctx context.Context, t Ticket, value any) error {
	if r.cache != nil {
		stored, err := r.cache.CommitSnapshot(ctx, t.OwnerID, t.Report, t.Generation, value)
		if err != nil {
			return err
		}
		if !stored {
			return ErrStaleRun
		}
		return nil
	}
	current, err := r.Current(ctx, t)
	if err != nil {
		return err
	}
	if !current {
		return ErrStaleRun
	}
	return nil
}

// Run executes build as a tracked run of the owner's report. A failed
// build falls back to the last committed snapshot, or the zero report,
// marked stale with a notice. Only authentication failures and caller
// cancellation are returned as errors.
func Run[T any](ctx context.Context, r *Refresher, ownerID uuid.UUID, report string, build func(context.Context) (T, error)) (Snapshot[T], error) {
	if ownerID == uuid.Nil {
		return Snapshot[T]{}, shared.ErrNotAuthenticated
	}
	if r == nil {
		value, err := build(ctx)
		if err != nil {
			return Snapshot[T]{}, err
		}
		return Snapshot[T]{Report: value, GeneratedAt: time.Now()}, nil
	}

	logger := r.logger.With(slog.String("report", report), slog.String("owner_id", ownerID.String()))

	ticket, runCtx, err := r.Begin(ctx, ownerID, report)
	if err != nil {
		logger.Warn("begin report run", slog.Any("error", err))
		ticket = Ticket{OwnerID: ownerID, Report: report}
		runCtx = ctx
	} else {
		defer r.Finish(ticket)
	}

	value, err := build(runCtx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return Snapshot[T]{}, err
		}
		if ctx.Err() != nil {
			return Snapshot[T]{}, ctx.Err()
		}
		if runCtx.Err() != nil {
			r.metrics.observe(report, outcomeSuperseded)
			logger.Info("report run superseded", slog.Int64("generation", ticket.Generation))
			return fallback[T](ctx, r, ticket, NoticeSuperseded), nil
		}
		r.metrics.observe(report, outcomeFallback)
		logger.Error("report run failed", slog.Any("error", err))
		return fallback[T](ctx, r, ticket, NoticeFetchFailed), nil
	}

	snap := Snapshot[T]{Report: value, GeneratedAt: r.now(), Generation: ticket.Generation}
	if ticket.Generation == 0 {
		r.metrics.observe(report, outcomeFresh)
		return snap, nil
	}
	switch err := r.commit(ctx, ticket, snap); {
	case errors.Is(err, ErrStaleRun):
		r.metrics.observe(report, outcomeDiscarded)
		logger.Info("stale report run discarded", slog.Int64("generation", ticket.Generation))
	case err != nil:
		logger.Warn("commit report snapshot", slog.Any("error", err))
		r.metrics.observe(report, outcomeFresh)
	default:
		r.metrics.observe(report, outcomeFresh)
	}
	return snap, nil
}

func fallback[T any](ctx context.Context, r *Refresher, t Ticket, notice string) Snapshot[T] {
	var snap Snapshot[T]
	if r.cache != nil {
		found, err := r.cache.LoadSnapshot(ctx, t.OwnerID, t.Report, &snap)
		if err != nil {
			r.logger.Warn("load last-known snapshot", slog.String("report", t.Report), slog.Any("error", err))
		}
		if !found || err != nil {
			snap = Snapshot[T]{}
		}
	}
	snap.Stale = true
	snap.Notice = notice
	return snap
}
