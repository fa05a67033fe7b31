package middleware

import (
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = apperror.Unauthenticated("unauthenticated")
	ErrInvalidToken    = apperror.Unauthenticated("invalid or expired token")
	ErrAdminOnly       = apperror.Forbidden("forbidden: admin only")
)

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// AuthMiddleware attaches the caller identity when a token is present.
// Requests without a token pass through anonymously; a token that fails
// verification is rejected. RequireUser and RequireAdmin gate routes.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejecting invalid access token", zap.Error(err))
				transport.WriteError(w, r, ErrInvalidToken)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = logger.WithUserID(ctx, id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			transport.WriteError(w, r, ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			transport.WriteError(w, r, ErrUnauthenticated)
			return
		}
		if !id.IsAdmin() {
			logger.FromCtx(r.Context()).Warn("non-admin attempted admin route", zap.String("path", r.URL.Path))
			transport.WriteError(w, r, ErrAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}
