package owners

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

// AccountService is the contract used by the handler.
type AccountService interface {
	Profile(ctx context.Context, ownerID uuid.UUID) (Profile, error)
	UpdateProfile(ctx context.Context, ownerID uuid.UUID, in ProfileInput) (Profile, error)
	UpdateBranding(ctx context.Context, ownerID uuid.UUID, in BrandingInput) (Profile, error)
	RemoveLogo(ctx context.Context, ownerID uuid.UUID) error
	Billing(ctx context.Context, ownerID uuid.UUID) (Billing, error)
	UpdateBilling(ctx context.Context, ownerID uuid.UUID, in BillingInput) (Billing, error)
	ChangePassword(ctx context.Context, ownerID uuid.UUID, in PasswordInput) error
}

// Handler serves the account settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service AccountService
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service AccountService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in ProfileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), shared.OwnerIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var in BrandingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	profile, err := h.service.UpdateBranding(r.Context(), shared.OwnerIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, "update branding", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveLogo(r.Context(), shared.OwnerIDFromContext(r.Context())); err != nil {
		h.fail(w, "remove logo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetBilling(w http.ResponseWriter, r *http.Request) {
	billing, err := h.service.Billing(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "get billing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, billing)
}

func (h *Handler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var in BillingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	billing, err := h.service.UpdateBilling(r.Context(), shared.OwnerIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, "update billing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, billing)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in PasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), shared.OwnerIDFromContext(r.Context()), in); err != nil {
		h.fail(w, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Error("account request failed", slog.String("action", action), slog.Any("error", err))
	httpx.RespondError(w, err)
}
