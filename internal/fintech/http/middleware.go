package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// AuthnMiddleware authenticates the bearer access token, rejecting
// blacklisted tokens, and injects the caller's identity into the request
// context. The raw token is kept around for logout's blacklist write.
func AuthnMiddleware(auth *service.AuthFlow) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeError(w, r, domain.ErrInvalidToken)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			identity, err := auth.Authenticate(ctx, raw)
			if err != nil {
				log.Warn("request authentication failed", "err", err)
				writeError(w, r, err)
				return
			}

			ctx = context.WithValue(ctx, httpx.CtxKeyEmail, identity.Email)
			ctx = context.WithValue(ctx, httpx.CtxKeyRole, identity.Role.String())
			ctx = context.WithValue(ctx, httpx.CtxKeyAccessToken, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFromContext pulls the authenticated email injected by
// AuthnMiddleware.
func identityFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(httpx.CtxKeyEmail).(string)
	return email, ok && email != ""
}

// accessTokenFromContext pulls the raw bearer token injected by
// AuthnMiddleware.
func accessTokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(httpx.CtxKeyAccessToken).(string)
	return raw, ok && raw != ""
}
