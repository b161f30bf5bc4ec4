package bookings

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

const idempotencyModule = "bookings"

// BookingService is the contract used by the handler.
type BookingService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter Filter, page, perPage int) (ListResult, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (Stats, error)
	Approve(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.StatusChange, error)
	Reject(ctx context.Context, ownerID, bookingID uuid.UUID) (reporting.StatusChange, error)
	History(ctx context.Context, ownerID, bookingID uuid.UUID) ([]reporting.StatusChange, error)
}

// Handler serves the bookings endpoints.
type Handler struct {
	logger      *slog.Logger
	service     BookingService
	idempotency *shared.IdempotencyStore
}

// NewHandler constructs the handler. A nil idempotency store disables
// Idempotency-Key handling.
func NewHandler(logger *slog.Logger, service BookingService, idempotency *shared.IdempotencyStore) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, idempotency: idempotency}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := ParseFilter(q.Get("status"), q.Get("q"), q.Get("range"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), filter, page, perPage)
	if err != nil {
		h.fail(w, "list bookings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "booking stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (reporting.StatusChange, error)) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	ctx := r.Context()
	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}

	change, err := fn(ctx, shared.OwnerIDFromContext(ctx), bookingID)
	if err != nil {
		if key != "" && h.idempotency != nil {
			if derr := h.idempotency.Delete(ctx, key, idempotencyModule); derr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", derr))
			}
		}
		h.fail(w, "booking decision", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, change)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	history, err := h.service.History(r.Context(), shared.OwnerIDFromContext(r.Context()), bookingID)
	if err != nil {
		h.fail(w, "booking history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error("bookings request failed", slog.String("action", action), slog.Any("error", err))
	httpx.RespondError(w, err)
}
