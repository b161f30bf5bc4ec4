package owners

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
)

// MountRoutes registers account settings endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/account", func(r chi.Router) {
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/branding", h.UpdateBranding)
		r.Delete("/branding/logo", h.RemoveLogo)
		r.Get("/billing", h.GetBilling)
		r.Group(func(r chi.Router) {
			r.Use(httpx.OwnerLimiter(5, time.Minute))
			r.Put("/billing", h.UpdateBilling)
			r.Put("/password", h.ChangePassword)
		})
	})
}
