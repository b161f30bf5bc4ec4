package reporting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

type tally struct {
	Count int `json:"count"`
}

func newTestRefresher(t *testing.T) (*Refresher, *Cache, *Metrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Hour)
	metrics := NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRefresher(cache, logger, metrics), cache, metrics
}

func constant(n int) func(context.Context) (tally, error) {
	return func(context.Context) (tally, error) { return tally{Count: n}, nil }
}

func TestRunCommitsFreshSnapshot(t *testing.T) {
	r, cache, metrics := newTestRefresher(t)
	owner := uuid.New()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	r.WithNow(func() time.Time { return now })

	snap, err := Run(context.Background(), r, owner, ReportDashboard, constant(4))
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Report.Count)
	assert.False(t, snap.Stale)
	assert.Equal(t, int64(1), snap.Generation)
	assert.Equal(t, now, snap.GeneratedAt)

	var stored Snapshot[tally]
	found, err := cache.LoadSnapshot(context.Background(), owner, ReportDashboard, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, stored.Report.Count)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(ReportDashboard, outcomeFresh)))
}

func TestRunDiscardsStaleResult(t *testing.T) {
	r, cache, metrics := newTestRefresher(t)
	owner := uuid.New()
	ctx := context.Background()

	_, err := Run(ctx, r, owner, ReportFinance, constant(1))
	require.NoError(t, err)

	// A write lands while the run is computing.
	snap, err := Run(ctx, r, owner, ReportFinance, func(context.Context) (tally, error) {
		require.NoError(t, cache.Bump(ctx, owner))
		return tally{Count: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Report.Count, "the request still receives its own result")

	var stored Snapshot[tally]
	found, err := cache.LoadSnapshot(ctx, owner, ReportFinance, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, stored.Report.Count, "stale result must not replace the committed snapshot")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(ReportFinance, outcomeDiscarded)))
}

func TestRunFallsBackToLastKnownSnapshot(t *testing.T) {
	r, _, metrics := newTestRefresher(t)
	owner := uuid.New()
	ctx := context.Background()

	_, err := Run(ctx, r, owner, ReportDashboard, constant(7))
	require.NoError(t, err)

	snap, err := Run(ctx, r, owner, ReportDashboard, func(context.Context) (tally, error) {
		return tally{}, errors.New("connection refused")
	})
	require.NoError(t, err)
	assert.True(t, snap.Stale)
	assert.Equal(t, NoticeFetchFailed, snap.Notice)
	assert.Equal(t, 7, snap.Report.Count)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(ReportDashboard, outcomeFallback)))
}

func TestRunFallbackWithoutSnapshotIsEmpty(t *testing.T) {
	r, _, _ := newTestRefresher(t)
	snap, err := Run(context.Background(), r, uuid.New(), ReportGuests, func(context.Context) (tally, error) {
		return tally{Count: 3}, errors.New("timeout")
	})
	require.NoError(t, err)
	assert.True(t, snap.Stale)
	assert.Zero(t, snap.Report.Count)
	assert.Equal(t, NoticeFetchFailed, snap.Notice)
}

func TestRunSupersededByNewerRun(t *testing.T) {
	r, _, metrics := newTestRefresher(t)
	owner := uuid.New()
	ctx := context.Background()

	snap, err := Run(ctx, r, owner, ReportBookings, func(runCtx context.Context) (tally, error) {
		newer, _, err := r.Begin(ctx, owner, ReportBookings)
		require.NoError(t, err)
		defer r.Finish(newer)
		<-runCtx.Done()
		return tally{}, runCtx.Err()
	})
	require.NoError(t, err)
	assert.True(t, snap.Stale)
	assert.Equal(t, NoticeSuperseded, snap.Notice)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues(ReportBookings, outcomeSuperseded)))
}

func TestRunReturnsCallerCancellation(t *testing.T) {
	r, _, _ := newTestRefresher(t)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := Run(ctx, r, uuid.New(), ReportDashboard, func(context.Context) (tally, error) {
		cancel()
		return tally{}, context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsMissingOwner(t *testing.T) {
	r, _, _ := newTestRefresher(t)
	called := false
	_, err := Run(context.Background(), r, uuid.Nil, ReportDashboard, func(context.Context) (tally, error) {
		called = true
		return tally{}, nil
	})
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	assert.False(t, called)
}

func TestRunWithoutCacheTracksLocalGenerations(t *testing.T) {
	r := NewRefresher(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	owner := uuid.New()
	ctx := context.Background()

	first, err := Run(ctx, r, owner, ReportDashboard, constant(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Generation)

	snap, err := Run(ctx, r, owner, ReportDashboard, func(context.Context) (tally, error) {
		require.NoError(t, r.Bump(ctx, owner))
		return tally{Count: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Report.Count)
	assert.Equal(t, int64(2), snap.Generation)

	ticket, _, err := r.Begin(ctx, owner, ReportDashboard)
	require.NoError(t, err)
	defer r.Finish(ticket)
	assert.Equal(t, int64(4), ticket.Generation)
}

func TestListenCancelsRunsOnOtherInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	newInstance := func() (*Refresher, *redis.Client) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRefresher(NewCache(client, time.Minute), logger, nil), client
	}
	listener, _ := newInstance()
	writer, _ := newInstance()
	owner := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, listener.Listen(ctx))

	ticket, runCtx, err := listener.Begin(ctx, owner, ReportDashboard)
	require.NoError(t, err)
	defer listener.Finish(ticket)

	require.NoError(t, writer.Bump(ctx, owner))
	require.Eventually(t, func() bool { return runCtx.Err() != nil }, 2*time.Second, 10*time.Millisecond)

	current, err := listener.Current(ctx, ticket)
	require.NoError(t, err)
	assert.False(t, current)
}
