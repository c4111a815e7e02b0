package middleware

import (
	"log/slog"
	"net/http"

	"github.com/deliverzler/functions/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, caller_uid, trace_id and span_id. Mount it after
// RequestLogging, Tracing and Authenticate.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if p := PrincipalFromContext(ctx); p != nil && logger.CallerUIDFromContext(ctx) == "" {
				ctx = logger.WithCallerUID(ctx, p.UID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
