package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/deliverzler/functions/pkg/errors"
	"github.com/deliverzler/functions/pkg/httputil"
	"github.com/deliverzler/functions/pkg/logger"
)

type contextKeyType string

const principalKey contextKeyType = "principal"

// Principal is the verified identity behind a request. Claims are the signed
// custom claims of the token, read fresh on every request.
type Principal struct {
	UID    string
	Email  string
	Claims map[string]any
}

// TokenVerifier verifies a bearer token and returns the identity it carries.
type TokenVerifier func(ctx context.Context, token string) (*Principal, error)

// Authenticate verifies the bearer token of every request and stores the
// resulting principal in the request context. Requests without a valid token
// are rejected with UNAUTHENTICATED.
func Authenticate(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperrors.Unauthenticated("missing authorization header"), nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				httputil.WriteError(w, r, apperrors.Unauthenticated("invalid authorization header format"), nil)
				return
			}

			principal, err := verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil || principal == nil || principal.UID == "" {
				httputil.WriteError(w, r, apperrors.Unauthenticated("invalid or expired token"), nil)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = logger.WithCallerUID(ctx, principal.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal stored by Authenticate, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// ContextWithPrincipal stores p in ctx. Used by non-HTTP entry points and tests.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
