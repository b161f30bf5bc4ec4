// Package observability exposes the owner API's request metrics and the
// registry the report and job collectors share.
package observability

import (
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

const (
	sessionOwner     = "owner"
	sessionAnonymous = "anonymous"
	unknownRoute     = "unknown"
)

// Metrics holds the API collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	exports  *prometheus.CounterVec
}

// NewMetrics builds the registry. Report and job collectors register
// against Registerer so one /metrics scrape covers the whole process.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ownerdesk_http_requests_total",
		Help: "Owner API requests by screen, route, status code and whether an owner was signed in.",
	}, []string{"screen", "route", "code", "session"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ownerdesk_http_request_duration_seconds",
		Help:    "Owner API request duration by screen.",
		Buckets: []float64{.025, .05, .1, .25, .5, 1, 2, 5, 10},
	}, []string{"screen"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ownerdesk_exports_total",
		Help: "File downloads served to owners by screen and format.",
	}, []string{"screen", "format"})
	registry.MustRegister(requests, latency, exports)
	return &Metrics{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requests: requests,
		latency:  latency,
		exports:  exports,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every request. It must run after the session loader
// so signed-in requests are told apart from anonymous ones.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routePattern(r)
		screen := Screen(route)
		session := sessionAnonymous
		if shared.OwnerIDFromContext(r.Context()) != uuid.Nil {
			session = sessionOwner
		}
		m.requests.WithLabelValues(screen, route, strconv.Itoa(recorder.status), session).Inc()
		m.latency.WithLabelValues(screen).Observe(time.Since(start).Seconds())
		if format := exportFormat(recorder.Header().Get("Content-Disposition")); format != "" && recorder.status < 300 {
			m.exports.WithLabelValues(screen, format).Inc()
		}
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Screen names the back-office screen a route pattern belongs to, e.g.
// "/finance/entries/{id}" is "finance" and "/dashboard" is "dashboard".
func Screen(route string) string {
	if route == unknownRoute {
		return unknownRoute
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	switch first {
	case "":
		return "root"
	case "healthz", "metrics", "jobs":
		return "system"
	case "reports":
		return "dashboard"
	}
	return first
}

func exportFormat(disposition string) string {
	if !strings.HasPrefix(disposition, "attachment") {
		return ""
	}
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	ext := strings.TrimPrefix(path.Ext(strings.Trim(name, `"`)), ".")
	return strings.ToLower(ext)
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unknownRoute
}
