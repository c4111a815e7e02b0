package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/service"
	"github.com/deliverzler/functions/pkg/httputil"
	"github.com/deliverzler/functions/pkg/middleware"
)

// AdminService is the account manager behind the callables.
type AdminService interface {
	CreateAdmin(ctx context.Context, caller *domain.Caller, in service.CreateAdminInput) (*service.CreateAdminResult, error)
	DeleteAdmin(ctx context.Context, caller *domain.Caller, adminID string) error
	BootstrapSuperAdmin(ctx context.Context, caller *domain.Caller) (*service.BootstrapResult, error)
}

// CallableHandler serves the admin callables.
type CallableHandler struct {
	admins AdminService
	logger *slog.Logger
}

// NewCallableHandler creates a new callable handler.
func NewCallableHandler(admins AdminService, logger *slog.Logger) *CallableHandler {
	return &CallableHandler{admins: admins, logger: logger}
}

// --- Request DTOs ---

// CreateAdminRequest is the body of createAdmin. Fields are checked by the
// service so that blank names are rejected after trimming.
type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DeleteAdminRequest is the body of deleteAdmin. AdminID is checked by the
// service after the caller's claims.
type DeleteAdminRequest struct {
	AdminID string `json:"adminId"`
}

// SuccessResponse is returned by callables that only report success.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// callerFromRequest converts the authenticated principal into a caller.
func callerFromRequest(r *http.Request) *domain.Caller {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return nil
	}
	return &domain.Caller{
		UID:    p.UID,
		Email:  p.Email,
		Claims: domain.ClaimsFromMap(p.Claims),
	}
}

// decode reads an optional JSON body; an empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// CreateAdmin handles POST /api/v1/callables/createAdmin
func (h *CallableHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteBadRequest(w, r, "invalid request body")
		return
	}

	res, err := h.admins.CreateAdmin(r.Context(), callerFromRequest(r), service.CreateAdminInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, res)
}

// DeleteAdmin handles POST /api/v1/callables/deleteAdmin
func (h *CallableHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	var req DeleteAdminRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteBadRequest(w, r, "invalid request body")
		return
	}
	if err := h.admins.DeleteAdmin(r.Context(), callerFromRequest(r), req.AdminID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, SuccessResponse{Success: true})
}

// BootstrapSuperAdmin handles POST /api/v1/callables/bootstrapSuperAdmin
func (h *CallableHandler) BootstrapSuperAdmin(w http.ResponseWriter, r *http.Request) {
	res, err := h.admins.BootstrapSuperAdmin(r.Context(), callerFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, res)
}
