package http

import (
	"net/http"
	"strings"

	apperrors "github.com/deliverzler/functions/pkg/errors"
	"github.com/deliverzler/functions/pkg/httputil"
)

// maxBodyBytes bounds callable request bodies.
const maxBodyBytes = 1 << 20

// ContentTypeJSON rejects POST requests whose body is not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength != 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				httputil.WriteError(w, r, apperrors.InvalidArgument("", "Content-Type must be application/json"), nil)
				return
			}
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}
