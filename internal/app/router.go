package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/writemytrip/ownerdesk/internal/auth"
	"github.com/writemytrip/ownerdesk/internal/bookings"
	"github.com/writemytrip/ownerdesk/internal/finance"
	"github.com/writemytrip/ownerdesk/internal/guests"
	"github.com/writemytrip/ownerdesk/internal/observability"
	"github.com/writemytrip/ownerdesk/internal/owners"
	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/properties"
	reportinghttp "github.com/writemytrip/ownerdesk/internal/reporting/http"
	"github.com/writemytrip/ownerdesk/internal/shared"
	"github.com/writemytrip/ownerdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	ReportHandler     *reportinghttp.Handler
	BookingsHandler   *bookings.Handler
	GuestsHandler     *guests.Handler
	FinanceHandler    *finance.Handler
	PropertiesHandler *properties.Handler
	AccountHandler    *owners.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
	// RequestsPerMinute overrides the per-IP request cap.
	RequestsPerMinute int
}

// NewRouter constructs the chi.Router with the owner API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:            params.Logger,
		Config:            params.Config,
		SessionManager:    params.SessionManager,
		Metrics:           params.Metrics,
		RequestsPerMinute: params.RequestsPerMinute,
	}) {
		r.Use(mw)
	}
	if params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireOwner)
		params.ReportHandler.MountRoutes(r)
		params.FinanceHandler.MountRoutes(r)
		params.BookingsHandler.MountRoutes(r)
		params.GuestsHandler.MountRoutes(r)
		params.PropertiesHandler.MountRoutes(r)
		params.AccountHandler.MountRoutes(r)
		if params.JobHandler != nil {
			params.JobHandler.MountOwnerRoutes(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	return r
}
