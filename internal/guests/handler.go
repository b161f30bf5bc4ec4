package guests

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/export"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// GuestService is the contract used by the handler.
type GuestService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter Filter, page, perPage int) (ListResult, error)
	Export(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]reporting.GuestWithStats, error)
	Get(ctx context.Context, ownerID, guestID uuid.UUID) (reporting.Guest, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (reporting.Guest, error)
	Update(ctx context.Context, ownerID, guestID uuid.UUID, input UpdateInput) (reporting.Guest, error)
	SetStatus(ctx context.Context, ownerID, guestID uuid.UUID, input StatusInput) error
	Delete(ctx context.Context, ownerID, guestID uuid.UUID) error
}

// Handler serves the guest endpoints.
type Handler struct {
	logger  *slog.Logger
	service GuestService
	now     func() time.Time
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service GuestService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), filter, page, perPage)
	if err != nil {
		h.fail(w, "list guests", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	guest, err := h.service.Create(r.Context(), shared.OwnerIDFromContext(r.Context()), input)
	if err != nil {
		h.fail(w, "create guest", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, guest)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := guestID(w, r)
	if !ok {
		return
	}
	guest, err := h.service.Get(r.Context(), shared.OwnerIDFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, "get guest", err)
		return
	}
	httpx.JSON(w, http.StatusOK, guest)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := guestID(w, r)
	if !ok {
		return
	}
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	guest, err := h.service.Update(r.Context(), shared.OwnerIDFromContext(r.Context()), id, input)
	if err != nil {
		h.fail(w, "update guest", err)
		return
	}
	httpx.JSON(w, http.StatusOK, guest)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := guestID(w, r)
	if !ok {
		return
	}
	var input StatusInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetStatus(r.Context(), shared.OwnerIDFromContext(r.Context()), id, input); err != nil {
		h.fail(w, "set guest status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := guestID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), shared.OwnerIDFromContext(r.Context()), id); err != nil {
		h.fail(w, "delete guest", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", func(buf *bytes.Buffer, table export.Table) error {
		return export.WriteCSV(buf, table)
	})
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", export.ContentTypeXLSX, func(buf *bytes.Buffer, table export.Table) error {
		return export.WriteXLSX(buf, table)
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(*bytes.Buffer, export.Table) error) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	guests, err := h.service.Export(r.Context(), shared.OwnerIDFromContext(r.Context()), filter)
	if err != nil {
		h.fail(w, "export guests", err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, export.GuestsTable(guests)); err != nil {
		h.fail(w, "write guests "+ext, err)
		return
	}
	filename := "guests-" + h.now().Format("2006-01-02") + "." + ext
	if err := httpx.Attachment(w, contentType, filename, buf.Bytes()); err != nil {
		h.logger.Warn("stream guest export", slog.Any("error", err))
	}
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	q := r.URL.Query()
	filter, err := ParseFilter(q.Get("q"), q.Get("status"), q.Get("sort"))
	if err != nil {
		httpx.RespondError(w, err)
		return Filter{}, false
	}
	return filter, true
}

func guestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error("guests request failed", slog.String("action", action), slog.Any("error", err))
	httpx.RespondError(w, err)
}
