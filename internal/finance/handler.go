package finance

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/export"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// EntryService is the contract used by the handler.
type EntryService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) (ListResult, error)
	Create(ctx context.Context, ownerID uuid.UUID, input EntryInput) (reporting.ManualEntry, error)
	Update(ctx context.Context, ownerID, entryID uuid.UUID, input EntryInput) (reporting.ManualEntry, error)
	Delete(ctx context.Context, ownerID, entryID uuid.UUID) error
}

// Handler serves the manual entry endpoints.
type Handler struct {
	logger  *slog.Logger
	service EntryService
	now     func() time.Time
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service EntryService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

type categoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, categoriesResponse{
		Income:  Categories[reporting.EntryIncome],
		Expense: Categories[reporting.EntryExpense],
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := listFilter(w, r)
	if !ok {
		return
	}
	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), filter)
	if err != nil {
		h.fail(w, "list entries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Create(r.Context(), shared.OwnerIDFromContext(r.Context()), input)
	if err != nil {
		h.fail(w, "create entry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Update(r.Context(), shared.OwnerIDFromContext(r.Context()), id, input)
	if err != nil {
		h.fail(w, "update entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), shared.OwnerIDFromContext(r.Context()), id); err != nil {
		h.fail(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportXLSX writes the filtered entries and their totals as a workbook.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	filter, ok := listFilter(w, r)
	if !ok {
		return
	}
	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), filter)
	if err != nil {
		h.fail(w, "export entries", err)
		return
	}
	summary := export.Table{
		Sheet:  "Summary",
		Header: []string{"Income", "Expenses", "Net"},
		Rows:   [][]any{{result.Summary.Income, result.Summary.Expenses, result.Summary.Net}},
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.EntriesTable(result.Entries), summary); err != nil {
		h.fail(w, "write entries xlsx", err)
		return
	}
	filename := "manual-entries-" + h.now().Format("2006-01-02") + ".xlsx"
	if err := httpx.Attachment(w, export.ContentTypeXLSX, filename, buf.Bytes()); err != nil {
		h.logger.Warn("stream entries export", slog.Any("error", err))
	}
}

func listFilter(w http.ResponseWriter, r *http.Request) (ListFilter, bool) {
	q := r.URL.Query()
	filter, err := ParseListFilter(q.Get("year"), q.Get("type"))
	if err != nil {
		httpx.RespondError(w, err)
		return ListFilter{}, false
	}
	return filter, true
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error("finance request failed", slog.String("action", action), slog.Any("error", err))
	httpx.RespondError(w, err)
}
