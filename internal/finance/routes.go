package finance

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
)

// MountRoutes registers manual entry endpoints next to the finance report.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/finance/categories", h.Categories)
	r.Get("/finance/entries", h.List)
	r.Post("/finance/entries", h.Create)
	r.Put("/finance/entries/{id}", h.Update)
	r.Delete("/finance/entries/{id}", h.Delete)
	r.With(httpx.OwnerLimiter(10, time.Minute)).Get("/finance/entries/export.xlsx", h.ExportXLSX)
}
