package bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/reportingtest"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

func newTestRouter(t *testing.T, owner *reportingtest.Owner) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewHandler(nil, newTestService(owner), shared.NewIdempotencyStore(client, time.Hour))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), &shared.Session{OwnerID: owner.ID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	return r
}

func TestHandlerApproveIsIdempotent(t *testing.T) {
	owner := reportingtest.NewOwner(4)
	booking := owner.AddBooking(5000, reporting.StatusPending, fixedNow, nil)
	router := newTestRouter(t, owner)

	approve := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bookings/"+booking.ID.String()+"/approve", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := approve("k-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	var change reporting.StatusChange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
	assert.Equal(t, reporting.StatusConfirmed, change.Status)

	assert.Equal(t, http.StatusConflict, approve("k-1").Code)
	// A fresh key reaches the service, which refuses a settled booking.
	assert.Equal(t, http.StatusUnprocessableEntity, approve("k-2").Code)
	// The failed attempt released its key.
	assert.Equal(t, http.StatusUnprocessableEntity, approve("k-2").Code)
}

func TestHandlerListAndErrors(t *testing.T) {
	owner := reportingtest.NewOwner(4)
	owner.AddBooking(5000, reporting.StatusPending, fixedNow, nil)
	owner.AddBooking(7000, reporting.StatusConfirmed, fixedNow, nil)
	router := newTestRouter(t, owner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?status=pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var result ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Bookings, 1)
	assert.Equal(t, 2, result.Stats.Total)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?status=lost", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Pending)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/not-a-uuid/reject", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/"+uuid.NewString()+"/history", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
