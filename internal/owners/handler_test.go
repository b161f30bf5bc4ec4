package owners

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemytrip/ownerdesk/internal/platform/httpx"
	"github.com/writemytrip/ownerdesk/internal/shared"
)

func newTestRouter(svc *Service, owner uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), &shared.Session{OwnerID: owner})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestAccountHandlers(t *testing.T) {
	svc, _, id := newTestService(t)
	router := newTestRouter(svc, id)

	rec := serve(router, http.MethodGet, "/account/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "owner@seaview.test", profile.Email)

	rec = serve(router, http.MethodPut, "/account/profile", `{"full_name":"","phone":"1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "is required", problem.Errors["full_name"])

	rec = serve(router, http.MethodDelete, "/account/branding/logo", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodPut, "/account/billing", `{"bank_name":"State Bank","password":"sunrise-42"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPut, "/account/billing", `{"bank_name":"State Bank","password":"sunrise-42"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem = httpx.ProblemDetail{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, shared.ErrNoChanges.Error(), problem.Detail)

	rec = serve(router, http.MethodGet, "/account/billing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var billing Billing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &billing))
	assert.Equal(t, "State Bank", billing.BankName)

	rec = serve(router, http.MethodPut, "/account/password", `{"current_password":"sunrise-42","new_password":"harbour-7","confirm_password":"harbour-9"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem = httpx.ProblemDetail{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "does not match", problem.Errors["confirm_password"])

	rec = serve(router, http.MethodPut, "/account/password", `{"current_password":"sunrise-42","new_password":"harbour-7","confirm_password":"harbour-7"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAccountRequiresSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := serve(newTestRouter(svc, uuid.Nil), http.MethodGet, "/account/profile", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
