package reportinghttp

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
)

// MountRoutes registers report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/finance", h.handleFinance)
	r.Group(func(gr chi.Router) {
		gr.Use(httpx.OwnerLimiter(10, time.Minute))
		gr.Get("/finance/export.csv", h.handleFinanceCSV)
		gr.Get("/finance/report.pdf", h.handleFinancePDF)
	})
}
