package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is an authenticated owner session stored in Redis.
type Session struct {
	Token     string    `json:"-"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionManager issues and resolves owner sessions. A request may present
// the token as a bearer credential or through the session cookie.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
	now        func() time.Time
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
		now:        time.Now,
	}
}

// Create starts a session for the owner.
func (sm *SessionManager) Create(ctx context.Context, ownerID uuid.UUID, email string) (*Session, error) {
	if ownerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	token, err := sm.generateToken()
	if err != nil {
		return nil, err
	}
	now := sm.now()
	sess := &Session{
		Token:     token,
		OwnerID:   ownerID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), data, sm.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load resolves the session presented by the request. It returns
// ErrNotAuthenticated when no valid session is attached.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token := sm.tokenFromRequest(r)
	if token == "" || !sm.validToken(token) {
		return nil, ErrNotAuthenticated
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	if sess.OwnerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	sess.Token = token
	return &sess, nil
}

// Destroy deletes the session.
func (sm *SessionManager) Destroy(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(sess.Token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// SetCookie writes the session cookie.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
	})
}

// ClearCookie expires the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(sm.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Tokens are "<random>.<mac>" so forged values are rejected before Redis
// is consulted.
func (sm *SessionManager) generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	id := base64.RawURLEncoding.EncodeToString(b)
	return id + "." + sm.sign(id), nil
}

func (sm *SessionManager) validToken(token string) bool {
	id, mac, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return false
	}
	return hmac.Equal([]byte(mac), []byte(sm.sign(id)))
}

func (sm *SessionManager) sign(id string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (sm *SessionManager) redisKey(token string) string {
	id, _, _ := strings.Cut(token, ".")
	return "session:" + id
}
