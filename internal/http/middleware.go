package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fjod/go_cart/storefront/internal/backend"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"

	// UsernameCookie carries the logged-in user's name, as set by the login page.
	UsernameCookie = "username"
	UsernameHeader = "X-Username"
)

// Identity is the caller of a request and the credentials forwarded to the backend for them.
type Identity struct {
	Username    string
	Credentials backend.Credentials
	// Role and Verified are set once the backend has confirmed the session.
	Role     backend.Role
	Verified bool
}

// IdentityMiddleware reads the caller from the username cookie or header. The backend
// session cookie, when present, travels with the identity.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{Credentials: backend.Anonymous}

		if c, err := r.Cookie(UsernameCookie); err == nil {
			id.Username = strings.TrimSpace(c.Value)
		}
		if id.Username == "" {
			id.Username = strings.TrimSpace(r.Header.Get(UsernameHeader))
		}
		if c, err := r.Cookie(backend.SessionCookieName); err == nil && c.Value != "" {
			id.Credentials = backend.SessionCookie(c.Value)
		} else if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			id.Credentials = backend.BearerToken(strings.TrimPrefix(auth, "Bearer "))
		}

		if id.Username == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware confirms the forwarded credentials with the backend and replaces the
// claimed identity with the session's owner. Requests without credentials, or whose
// claimed username belongs to someone else, are rejected.
func SessionMiddleware(backendFor BackendFunc, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := getIdentityFromContext(r.Context())
			if !ok || id.Credentials == nil || id.Credentials == backend.Anonymous {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "a valid session is required")
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			session, err := backendFor(id.Credentials).VerifySession(ctx)
			cancel()
			if err != nil {
				handleError(w, err)
				return
			}
			if session.Username == "" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "a valid session is required")
				return
			}
			if id.Username != session.Username {
				respondError(w, http.StatusForbidden, "identity_mismatch", "session does not belong to this user")
				return
			}

			id.Role = session.Role
			id.Verified = true
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through verified identities holding role.
func RequireRole(role backend.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := getIdentityFromContext(r.Context())
			if !ok || !id.Verified {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "a valid session is required")
				return
			}
			if id.Role != role {
				respondError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity stores id in ctx the same way IdentityMiddleware does.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func getIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Username != ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
