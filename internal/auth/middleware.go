package auth

import (
	"context"
	"net/http"

	"github.com/sakif/waste-portal/internal/model"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "token"

// Identity is the authenticated caller, resolved from the token once per
// request and carried in the request context.
type Identity struct {
	UserID int64
	Role   model.Role
}

// contextKey is unexported so only this package can place or read the
// identity value in a context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth validates the session cookie and stores the caller's
// Identity in the request context. Missing or invalid tokens end the
// request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ends the request with 403 unless the authenticated caller
// holds one of the given roles. Must sit inside RequireAuth.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok || !allowed[ident.Role] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden","message":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated caller. The second
// return is false when the request never passed RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok && ident.UserID > 0
}

// ContextWithIdentity places an identity directly in a context. Handler
// tests use it to simulate an authenticated request without minting a
// real token.
func ContextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, err
	}

	userID, role, err := tokens.Validate(cookie.Value)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: userID, Role: role}, nil
}
