package reportinghttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/export"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

type stubService struct {
	dashboard reporting.Snapshot[reporting.DashboardReport]
	finance   reporting.Snapshot[reporting.FinanceReport]
	err       error
	owners    []uuid.UUID
}

func (s *stubService) Dashboard(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.DashboardReport], error) {
	s.owners = append(s.owners, ownerID)
	if ownerID == uuid.Nil {
		return reporting.Snapshot[reporting.DashboardReport]{}, shared.ErrNotAuthenticated
	}
	return s.dashboard, s.err
}

func (s *stubService) Finance(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.FinanceReport], error) {
	s.owners = append(s.owners, ownerID)
	return s.finance, s.err
}

func (s *stubService) Branding(ctx context.Context, ownerID uuid.UUID) (reporting.Branding, error) {
	return reporting.Branding{BusinessName: "Sea View Group"}, nil
}

type stubPDF struct {
	last export.FinancePayload
	err  error
}

func (s *stubPDF) RenderFinance(ctx context.Context, payload export.FinancePayload) ([]byte, error) {
	s.last = payload
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("PDF"), 100)...), nil
}

func financeSnapshot() reporting.Snapshot[reporting.FinanceReport] {
	ledger := reporting.NewMonthlyLedger(2025, time.UTC, reporting.DefaultCommissionRate)
	ledger.AddBooking(reporting.Booking{TotalAmount: decimal.NewFromInt(200000), CreatedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)})
	return reporting.Snapshot[reporting.FinanceReport]{
		Report: reporting.FinanceReport{
			Year:   2025,
			Months: ledger.Finalize(),
			Totals: reporting.FinanceTotals{
				TotalEarnings:   decimal.NewFromInt(200000),
				NetRevenue:      decimal.NewFromInt(180000),
				CombinedRevenue: decimal.NewFromInt(200000),
				CombinedNet:     decimal.NewFromInt(180000),
			},
		},
		Stale:  true,
		Notice: reporting.NoticeFetchFailed,
	}
}

func newRouter(h *Handler, owner uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if owner != uuid.Nil {
				req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{OwnerID: owner}))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.MountRoutes(r)
	return r
}

func TestDashboardPassesOwnerExplicitly(t *testing.T) {
	owner := uuid.New()
	svc := &stubService{dashboard: reporting.Snapshot[reporting.DashboardReport]{
		Report: reporting.DashboardReport{Stats: reporting.DashboardStats{TotalRevenue: decimal.NewFromInt(123457), TotalBookings: 4}},
	}}
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, svc, nil), owner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{owner}, svc.owners)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "₹1,23,457", body["total_revenue_display"])
	report := body["report"].(map[string]any)
	assert.EqualValues(t, 4, report["stats"].(map[string]any)["total_bookings"])
}

func TestDashboardWithoutSessionIsUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, &stubService{}, nil), uuid.Nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFinanceViewProjection(t *testing.T) {
	svc := &stubService{finance: financeSnapshot()}
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, svc, nil), uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance?view=crm", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body financeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, reporting.ViewCRM, body.Display.View)
	assert.Len(t, body.Display.Series, 6)
	assert.Equal(t, "₹1,80,000", body.Formatted["net"])
	assert.True(t, body.Stale)
	assert.Equal(t, reporting.NoticeFetchFailed, body.Notice)
}

func TestFinanceRejectsUnknownView(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, &stubService{}, nil), uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance?view=weekly", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFinanceCSV(t *testing.T) {
	svc := &stubService{finance: financeSnapshot()}
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, svc, nil), uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/export.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="finance-2025.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Month,Bookings,Revenue"))
}

func TestFinancePDF(t *testing.T) {
	svc := &stubService{finance: financeSnapshot()}
	pdf := &stubPDF{}
	h := NewHandler(nil, svc, pdf)
	fixed := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	h.WithNow(func() time.Time { return fixed })

	rec := httptest.NewRecorder()
	newRouter(h, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/report.pdf?view=manual", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	assert.Equal(t, reporting.ViewManual, pdf.last.View)
	assert.Equal(t, "Sea View Group", pdf.last.Branding.BusinessName)
	assert.Equal(t, fixed, pdf.last.GeneratedAt)
}

func TestFinancePDFFailure(t *testing.T) {
	svc := &stubService{finance: financeSnapshot()}
	rec := httptest.NewRecorder()
	newRouter(NewHandler(nil, svc, &stubPDF{err: errors.New("gotenberg down")}), uuid.New()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/report.pdf", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
