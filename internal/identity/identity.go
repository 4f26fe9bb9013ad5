// Package identity resolves the chat session id of a request.
package identity

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionHeaderName   = "X-Skinmatch-Session-ID"
	SessionCookieName   = "chat_uid"
	SessionQueryParam   = "session_id"
	sessionCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const (
	sessionIDKey contextKey = iota
	issuedKey
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// SessionIDFromContext extracts the session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// IssuedFromContext reports whether the middleware minted the session ID for
// this request rather than reading it from the client.
func IssuedFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(issuedKey).(bool)
	return v
}

// WithSessionID returns a context carrying id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// SanitizeSessionID trims id and returns "" if it is not an acceptable id.
func SanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if !sessionIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// SessionIDFromRequest reads the session ID from the header, the query
// string or the cookie, in that order.
func SessionIDFromRequest(r *http.Request) string {
	if sid := SanitizeSessionID(r.Header.Get(SessionHeaderName)); sid != "" {
		return sid
	}
	if sid := SanitizeSessionID(r.URL.Query().Get(SessionQueryParam)); sid != "" {
		return sid
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return SanitizeSessionID(c.Value)
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(sessionCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware injects the request's session ID, minting one and setting the
// session cookie when the client sent none.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromRequest(r)
			issued := false
			if sessionID == "" {
				sessionID = NewSessionID()
				issued = true
			}
			setSessionCookie(w, sessionID, isDev)

			ctx := WithSessionID(r.Context(), sessionID)
			ctx = context.WithValue(ctx, issuedKey, issued)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for rate limiting and tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
