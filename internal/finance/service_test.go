package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

type memEntries struct {
	entries []reporting.ManualEntry
}

func (m *memEntries) List(ctx context.Context, ownerID uuid.UUID, from, to time.Time, entryType reporting.EntryType) ([]reporting.ManualEntry, error) {
	var out []reporting.ManualEntry
	for _, e := range m.entries {
		if e.OwnerID != ownerID || (entryType != "" && e.Type != entryType) {
			continue
		}
		if (!from.IsZero() && e.Date.Before(from)) || (!to.IsZero() && !e.Date.Before(to)) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memEntries) Get(ctx context.Context, ownerID, entryID uuid.UUID) (reporting.ManualEntry, error) {
	for _, e := range m.entries {
		if e.ID == entryID && e.OwnerID == ownerID {
			return e, nil
		}
	}
	return reporting.ManualEntry{}, shared.ErrNotFound
}

func (m *memEntries) Create(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memEntries) Update(ctx context.Context, e reporting.ManualEntry) (reporting.ManualEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == e.ID && m.entries[i].OwnerID == e.OwnerID {
			e.CreatedAt = m.entries[i].CreatedAt
			m.entries[i] = e
			return e, nil
		}
	}
	return reporting.ManualEntry{}, shared.ErrNotFound
}

func (m *memEntries) Delete(ctx context.Context, ownerID, entryID uuid.UUID) error {
	for i := range m.entries {
		if m.entries[i].ID == entryID && m.entries[i].OwnerID == ownerID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func TestEntryInputRules(t *testing.T) {
	owner := uuid.New()
	entry, err := EntryInput{
		Title: " Banquet ", Description: "  ", Amount: decimal.RequireFromString("1500.555"),
		Type: "income", Category: "Events & Functions", Date: "2025-10-20",
	}.Entry(owner)
	require.NoError(t, err)
	assert.Equal(t, "Banquet", entry.Title)
	assert.Nil(t, entry.Description)
	assert.Equal(t, "1500.56", entry.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, owner, entry.OwnerID)

	_, err = EntryInput{Title: "Power", Amount: decimal.Zero, Type: "expense", Category: "Spa & Wellness", Date: "2025-02-30"}.Entry(owner)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields["category"], "expense")

	assert.True(t, ValidCategory(reporting.EntryExpense, "Other"))
	assert.False(t, ValidCategory(reporting.EntryIncome, "Other"))
}

func TestServiceBumpsReportsOnWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := reporting.NewCache(client, time.Hour)
	refresher := reporting.NewRefresher(cache, nil, reporting.NewMetrics(prometheus.NewRegistry()))

	store := &memEntries{}
	svc := NewService(store, refresher, nil)
	ctx := context.Background()
	owner := uuid.New()

	before, err := cache.Generation(ctx, owner, reporting.ReportFinance)
	require.NoError(t, err)

	created, err := svc.Create(ctx, owner, EntryInput{Title: "Power", Amount: decimal.NewFromInt(400), Type: "expense", Category: "Utilities", Date: "2025-03-01"})
	require.NoError(t, err)
	after, err := cache.Generation(ctx, owner, reporting.ReportFinance)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	_, err = svc.Create(ctx, owner, EntryInput{Title: "Tour", Amount: decimal.NewFromInt(1000), Type: "income", Category: "Tour Packages", Date: "2024-12-30"})
	require.NoError(t, err)

	result, err := svc.List(ctx, owner, ListFilter{Year: 2025})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.True(t, result.Summary.Net.Equal(decimal.NewFromInt(-400)))

	all, err := svc.List(ctx, owner, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Entries, 2)
	assert.True(t, all.Summary.Net.Equal(decimal.NewFromInt(600)))

	_, err = svc.Update(ctx, uuid.New(), created.ID, EntryInput{Title: "Power", Amount: decimal.NewFromInt(1), Type: "expense", Category: "Utilities", Date: "2025-03-01"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, created.ID), shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.Nil, created.ID), shared.ErrNotAuthenticated)
}

func newTestRouter(svc EntryService, owner uuid.UUID) http.Handler {
	h := NewHandler(nil, svc)
	h.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), &shared.Session{OwnerID: owner})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	return r
}

func TestHandlerEntries(t *testing.T) {
	owner := uuid.New()
	router := newTestRouter(NewService(&memEntries{}, nil, nil), owner)
	serve := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := serve(http.MethodGet, "/finance/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats categoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Len(t, cats.Income, 8)
	assert.Len(t, cats.Expense, 10)

	rec = serve(http.MethodPost, "/finance/entries", `{"title":"Banquet","amount":"1500.50","type":"income","category":"Events & Functions","date":"2025-05-04"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created reporting.ManualEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = serve(http.MethodPost, "/finance/entries", `{"title":"","amount":10,"type":"refund","category":"x","date":"soon"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem.Errors, "title")
	assert.Contains(t, problem.Errors, "type")
	assert.Contains(t, problem.Errors, "date")

	rec = serve(http.MethodPut, "/finance/entries/"+created.ID.String(), `{"title":"Banquet","amount":2000,"type":"income","category":"Events & Functions","date":"2025-05-04"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodGet, "/finance/entries?type=income&year=2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Entries, 1)
	assert.True(t, list.Summary.Income.Equal(decimal.NewFromInt(2000)))

	rec = serve(http.MethodGet, "/finance/entries?year=25", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(http.MethodGet, "/finance/entries/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="manual-entries-2025-06-01.xlsx"`, rec.Header().Get("Content-Disposition"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Entries", "Summary"}, f.GetSheetList())
	title, err := f.GetCellValue("Entries", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Banquet", title)

	rec = serve(http.MethodDelete, "/finance/entries/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(http.MethodDelete, "/finance/entries/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
