package api

import (
	"context"
	"net/http"

	"github.com/mindocean/mindocean/internal/api/respond"
	"github.com/mindocean/mindocean/internal/auth"
)

type ctxKey int

const userKey ctxKey = iota

// UserFrom returns the authenticated user attached to the request context,
// or nil for anonymous requests.
func UserFrom(ctx context.Context) *auth.UserInfo {
	u, _ := ctx.Value(userKey).(*auth.UserInfo)
	return u
}

func withUser(ctx context.Context, u *auth.UserInfo) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// AuthMiddleware resolves the bearer token when one is present and attaches
// the user to the request context. Requests without a token pass through
// anonymously; owner-only routes enforce identity via RequireUser.
func AuthMiddleware(authorizer auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r)
			if err == nil {
				if u, err := authorizer.Authorize(r.Context(), token); err == nil {
					r = r.WithContext(withUser(r.Context(), u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser guards owner-only handlers; anonymous requests get 401.
func RequireUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil {
			respond.WriteUnauthorized(w, "authentication required")
			return
		}
		next(w, r, u.UserID)
	}
}
