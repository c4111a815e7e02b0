package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/deliverzler/functions/internal/identity"
	apperrors "github.com/deliverzler/functions/pkg/errors"
	"github.com/deliverzler/functions/pkg/httputil"
	"github.com/deliverzler/functions/pkg/middleware"
	"github.com/deliverzler/functions/pkg/validator"
)

// TokenIssuer signs ID tokens for email and password sign-ins.
type TokenIssuer interface {
	IssueToken(ctx context.Context, email, password string) (string, time.Time, error)
}

// AuthHandler serves the local sign-in endpoint.
type AuthHandler struct {
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, logger: logger}
}

// TokenRequest is the body of the token endpoint.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a signed ID token.
type TokenResponse struct {
	IDToken   string    `json:"idToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token handles POST /api/v1/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteBadRequest(w, r, "invalid request body")
		return
	}

	token, expiresAt, err := h.tokens.IssueToken(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		httputil.WriteError(w, r, apperrors.Unauthenticated("invalid email or password"), h.logger)
		return
	case errors.Is(err, identity.ErrAccountDisabled):
		httputil.WriteError(w, r, apperrors.PermissionDenied("account is disabled"), h.logger)
		return
	case err != nil:
		httputil.WriteError(w, r, apperrors.Internal("failed to issue token", err), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, TokenResponse{IDToken: token, ExpiresAt: expiresAt})
}

// Verifier adapts an identity provider to the authentication middleware.
func Verifier(p identity.Provider) middleware.TokenVerifier {
	return func(ctx context.Context, token string) (*middleware.Principal, error) {
		caller, err := p.VerifyToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{
			UID:    caller.UID,
			Email:  caller.Email,
			Claims: caller.Claims.Map(),
		}, nil
	}
}
