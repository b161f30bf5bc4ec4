package guests

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
)

// MountRoutes registers guest endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/guests", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Group(func(r chi.Router) {
			r.Use(httpx.OwnerLimiter(10, time.Minute))
			r.Get("/export.csv", h.ExportCSV)
			r.Get("/export.xlsx", h.ExportXLSX)
		})
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Patch("/{id}/status", h.SetStatus)
		r.Delete("/{id}", h.Delete)
	})
}
