package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/writemytrip/ownerdesk/internal/shared"
)

// Attachment streams data as a downloadable file.
func Attachment(w http.ResponseWriter, contentType, filename string, data []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, err := w.Write(data)
	return err
}

// OwnerLimiter rate limits requests per signed-in owner, falling back to
// the client IP for anonymous requests.
func OwnerLimiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(OwnerRateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "slow down and retry shortly")
		}),
	)
}

// OwnerRateLimitKey keys limits by owner id when a session is present.
func OwnerRateLimitKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return "owner:" + sess.OwnerID.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
