package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Authenticator is the contract used by the handler.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Owner, error)
	Owner(ctx context.Context, ownerID uuid.UUID) (*Owner, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        Authenticator
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Authenticator, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.With(httpx.OwnerLimiter(10, time.Minute)).Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Owner     *Owner    `json:"owner"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.Bind(r, h.validator, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}

	owner, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate owner", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	sess, err := h.sessionManager.Create(r.Context(), owner.ID, owner.Email)
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.sessionManager.SetCookie(w, sess)
	h.logger.Info("owner signed in", slog.String("owner_id", owner.ID.String()))
	httpx.JSON(w, http.StatusOK, loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Owner: owner})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if err := h.sessionManager.Destroy(r.Context(), sess); err != nil {
			h.logger.Warn("destroy session", slog.Any("error", err))
		}
	}
	h.sessionManager.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	owner, err := h.service.Owner(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owner)
}
