package properties

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// PropertyService is the contract used by the handler.
type PropertyService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter Filter) (Result, error)
}

// Handler serves the properties endpoints.
type Handler struct {
	logger  *slog.Logger
	service PropertyService
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service PropertyService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers property endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/properties", h.List)
	r.Get("/properties/stats", h.Stats)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := ParseFilter(q.Get("status"), q.Get("q"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), filter)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), shared.OwnerIDFromContext(r.Context()), Filter{})
	if err != nil {
		h.logger.Error("property stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result.Stats)
}
