package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/response"
)

// Resolver turns a bearer token into the caller it identifies. It should
// fail when the token is invalid or its user no longer exists.
type Resolver func(ctx context.Context, token string) (auth.Principal, error)

// Auth rejects requests without a valid bearer token and stores the
// resolved principal in the request context.
//
// The token is read from "Authorization: Bearer <t>". A "token" query
// parameter is accepted as well so browser websocket clients can connect.
func Auth(resolve Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Not authorized, no token")
				return
			}

			p, err := resolve(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("auth: token rejected", "error", err)
				response.Unauthorized(w, "Not authorized, token failed")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), p)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the raw token or returns "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
