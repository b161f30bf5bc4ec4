// Package reportinghttp serves the dashboard and finance reports.
package reportinghttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/export"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

const pdfTimeout = 20 * time.Second

// ReportService defines the report contract used by the handler.
type ReportService interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.DashboardReport], error)
	Finance(ctx context.Context, ownerID uuid.UUID) (reporting.Snapshot[reporting.FinanceReport], error)
	Branding(ctx context.Context, ownerID uuid.UUID) (reporting.Branding, error)
}

// PDFService renders finance content to PDF bytes.
type PDFService interface {
	RenderFinance(ctx context.Context, payload export.FinancePayload) ([]byte, error)
}

// Handler coordinates HTTP requests for owner reports.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	pdf     PDFService
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, pdf PDFService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service, pdf: pdf, now: time.Now}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type dashboardResponse struct {
	reporting.Snapshot[reporting.DashboardReport]
	TotalRevenueDisplay string `json:"total_revenue_display"`
}

type financeResponse struct {
	Report      reporting.FinanceReport  `json:"report"`
	Display     reporting.FinanceDisplay `json:"display"`
	Formatted   map[string]string        `json:"formatted"`
	GeneratedAt time.Time                `json:"generated_at"`
	Stale       bool                     `json:"stale"`
	Notice      string                   `json:"notice,omitempty"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.OwnerIDFromContext(r.Context())
	snap, err := h.service.Dashboard(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		Snapshot:            snap,
		TotalRevenueDisplay: reporting.FormatINR(snap.Report.Stats.TotalRevenue),
	})
}

func (h *Handler) handleFinance(w http.ResponseWriter, r *http.Request) {
	view, err := reporting.ParseFinanceView(r.URL.Query().Get("view"))
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("view", "must be one of combined crm manual"))
		return
	}
	ownerID := shared.OwnerIDFromContext(r.Context())
	snap, err := h.service.Finance(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, "finance", err)
		return
	}
	display := snap.Report.Display(view)
	t := snap.Report.Totals
	httpx.JSON(w, http.StatusOK, financeResponse{
		Report:  snap.Report,
		Display: display,
		Formatted: map[string]string{
			"revenue":          reporting.FormatINR(display.Revenue),
			"net":              reporting.FormatINR(display.Net),
			"total_earnings":   reporting.FormatINR(t.TotalEarnings),
			"total_commission": reporting.FormatINR(t.TotalCommission),
			"pending_payouts":  reporting.FormatINR(snap.Report.KPIs.PendingPayouts),
		},
		GeneratedAt: snap.GeneratedAt,
		Stale:       snap.Stale,
		Notice:      snap.Notice,
	})
}

func (h *Handler) handleFinanceCSV(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.OwnerIDFromContext(r.Context())
	snap, err := h.service.Finance(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, "finance csv", err)
		return
	}
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := export.WriteCSV(buf, export.FinanceTable(snap.Report)); err != nil {
		h.respondError(w, "write finance csv", err)
		return
	}
	filename := fmt.Sprintf("finance-%d.csv", snap.Report.Year)
	if err := httpx.Attachment(w, "text/csv; charset=utf-8", filename, buf.Bytes()); err != nil {
		h.logger.Warn("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) handleFinancePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.respondError(w, "pdf exporter", fmt.Errorf("pdf exporter not configured"))
		return
	}
	view, err := reporting.ParseFinanceView(r.URL.Query().Get("view"))
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("view", "must be one of combined crm manual"))
		return
	}
	ownerID := shared.OwnerIDFromContext(r.Context())
	snap, err := h.service.Finance(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, "finance pdf", err)
		return
	}
	branding, err := h.service.Branding(r.Context(), ownerID)
	if err != nil {
		h.logger.Warn("load branding for pdf", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()
	pdfBytes, err := h.pdf.RenderFinance(ctx, export.FinancePayload{
		Branding:    branding,
		Report:      snap.Report,
		View:        view,
		GeneratedAt: h.now(),
		Notice:      snap.Notice,
	})
	if err != nil {
		h.respondError(w, "render pdf", err)
		return
	}
	filename := fmt.Sprintf("finance-%d-%s.pdf", snap.Report.Year, view)
	if err := httpx.Attachment(w, "application/pdf", filename, pdfBytes); err != nil {
		h.logger.Warn("stream pdf", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	h.logger.Error("report request failed", slog.String("action", action), slog.Any("error", err))
	httpx.RespondError(w, err)
}
