package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
	"github.com/deliverzler/functions/internal/repository"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// CreateAdminInput holds the fields of a createAdmin call.
type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
}

// CreateAdminResult describes the created administrator.
type CreateAdminResult struct {
	UID   string      `json:"uid"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// BootstrapResult reports the outcome of a bootstrap call.
type BootstrapResult struct {
	Success           bool `json:"success"`
	AlreadySuperAdmin bool `json:"alreadySuperAdmin"`
}

// AdminService manages privileged accounts. Authorization is decided from
// the caller's verified claims only; user records are informational, except
// during the one-time bootstrap.
type AdminService struct {
	accounts identity.Provider
	users    repository.UserRepository
	markers  repository.BootstrapMarkerRepository
	logger   *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	accounts identity.Provider,
	users repository.UserRepository,
	markers repository.BootstrapMarkerRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		accounts: accounts,
		users:    users,
		markers:  markers,
		logger:   logger,
	}
}

func requireSuperAdmin(caller *domain.Caller, action string) error {
	if caller == nil || caller.UID == "" {
		return apperrors.Unauthenticated("authentication required")
	}
	if !caller.Claims.IsSuperAdmin() {
		return apperrors.PermissionDenied("only super admins can " + action)
	}
	return nil
}

func validateCreateAdmin(in *CreateAdminInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.InvalidArgument("name", "name is required")
	}
	if !domain.IsValidEmail(in.Email) {
		return apperrors.InvalidArgument("email", "email is invalid")
	}
	if len(in.Password) < domain.MinPasswordLength {
		return apperrors.InvalidArgument("password", "password must be at least 6 characters")
	}
	return nil
}

// CreateAdmin registers an administrator account, grants it admin claims and
// writes its user record. A failure after the account exists deletes the
// account again.
func (s *AdminService) CreateAdmin(ctx context.Context, caller *domain.Caller, in CreateAdminInput) (*CreateAdminResult, error) {
	if err := requireSuperAdmin(caller, "create admins"); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateCreateAdmin(&in); err != nil {
		return nil, err
	}

	saga := domain.NewSaga(
		domain.SagaStepCreateAccount,
		domain.SagaStepSetClaims,
		domain.SagaStepWriteUserRecord,
	)

	// Step 1: create the account.
	acc, err := s.accounts.CreateAccount(ctx, domain.NewAccount{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.Name,
	})
	if err != nil {
		saga.Step(domain.SagaStepCreateAccount).Fail(err.Error())
		return nil, createAccountError(err, in.Email)
	}
	saga.Step(domain.SagaStepCreateAccount).Complete()

	// Step 2: grant admin claims.
	if err := s.accounts.SetClaims(ctx, acc.UID, domain.AdminClaims()); err != nil {
		saga.Step(domain.SagaStepSetClaims).Fail(err.Error())
		s.compensateCreateAdmin(ctx, saga, acc.UID)
		return nil, apperrors.Internal("failed to create admin", err)
	}
	saga.Step(domain.SagaStepSetClaims).Complete()

	// Step 3: write the user record.
	err = s.users.Set(ctx, &domain.User{
		ID:        acc.UID,
		Name:      in.Name,
		Email:     in.Email,
		Role:      domain.RoleAdmin,
		CreatedBy: caller.UID,
	})
	if err != nil {
		saga.Step(domain.SagaStepWriteUserRecord).Fail(err.Error())
		s.compensateCreateAdmin(ctx, saga, acc.UID)
		return nil, apperrors.Internal("failed to create admin", err)
	}
	saga.Step(domain.SagaStepWriteUserRecord).Complete()

	s.logger.InfoContext(ctx, "admin created",
		slog.String("admin_id", acc.UID),
		slog.String("created_by", caller.UID),
	)

	return &CreateAdminResult{
		UID:   acc.UID,
		Name:  in.Name,
		Email: in.Email,
		Role:  domain.RoleAdmin,
	}, nil
}

// compensateCreateAdmin deletes the created account. Claims vanish with it,
// so the completed steps count as compensated only once the delete succeeds.
func (s *AdminService) compensateCreateAdmin(ctx context.Context, saga *domain.Saga, uid string) {
	if err := s.accounts.DeleteAccount(ctx, uid); err != nil && !errors.Is(err, identity.ErrAccountNotFound) {
		s.logger.ErrorContext(ctx, "create admin rollback incomplete",
			slog.String("admin_id", uid),
			slog.String("error", err.Error()),
			slog.Any("saga", saga.Steps),
		)
		return
	}

	for _, step := range saga.Completed() {
		step.Compensate()
	}
	s.logger.WarnContext(ctx, "create admin rolled back",
		slog.String("admin_id", uid),
		slog.Any("saga", saga.Steps),
	)
}

func createAccountError(err error, email string) error {
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		return apperrors.AlreadyExists("account", "email", email)
	case errors.Is(err, identity.ErrInvalidEmail):
		return apperrors.InvalidArgument("email", "email is invalid")
	case errors.Is(err, identity.ErrWeakPassword):
		return apperrors.InvalidArgument("password", "password is too weak")
	case errors.Is(err, identity.ErrPasswordTooLong):
		return apperrors.InvalidArgument("password", "password must be at most 72 bytes")
	default:
		return apperrors.Internal("failed to create admin account", err)
	}
}

// DeleteAdmin removes an administrator's account and user record. Deleting
// an already missing account succeeds.
func (s *AdminService) DeleteAdmin(ctx context.Context, caller *domain.Caller, adminID string) error {
	if err := requireSuperAdmin(caller, "delete admins"); err != nil {
		return err
	}
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return apperrors.InvalidArgument("adminId", "adminId is required")
	}
	if adminID == caller.UID {
		return apperrors.FailedPrecondition("cannot delete your own account")
	}

	target, err := s.accounts.GetAccount(ctx, adminID)
	switch {
	case errors.Is(err, identity.ErrAccountNotFound):
		s.logger.InfoContext(ctx, "admin account already deleted",
			slog.String("admin_id", adminID),
		)
	case err != nil:
		return apperrors.Internal("failed to look up admin", err)
	case target.Claims.IsSuperAdmin():
		return apperrors.FailedPrecondition("cannot delete a super admin")
	default:
		if err := s.accounts.DeleteAccount(ctx, adminID); err != nil && !errors.Is(err, identity.ErrAccountNotFound) {
			s.logger.WarnContext(ctx, "failed to delete admin account",
				slog.String("admin_id", adminID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.users.Delete(ctx, adminID); err != nil {
		return apperrors.Internal("failed to delete admin record", err)
	}

	s.logger.InfoContext(ctx, "admin deleted",
		slog.String("admin_id", adminID),
		slog.String("deleted_by", caller.UID),
	)
	return nil
}

var errSuperAdminFound = errors.New("super admin found")

// BootstrapSuperAdmin promotes the caller to super admin when the caller's
// user record says superAdmin and no account holds super admin claims yet.
// The bootstrap marker makes the promotion happen at most once; a caller
// that already holds the marker completes its own interrupted promotion.
func (s *AdminService) BootstrapSuperAdmin(ctx context.Context, caller *domain.Caller) (*BootstrapResult, error) {
	if caller == nil || caller.UID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if caller.Claims.IsSuperAdmin() {
		return &BootstrapResult{Success: true, AlreadySuperAdmin: true}, nil
	}

	record, err := s.users.Get(ctx, caller.UID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.PermissionDenied("caller is not designated as super admin")
		}
		return nil, apperrors.Internal("failed to read user record", err)
	}
	if record.Role != domain.RoleSuperAdmin {
		return nil, apperrors.PermissionDenied("caller is not designated as super admin")
	}

	var holder string
	err = identity.ForEachAccount(ctx, s.accounts, func(acc domain.Account) error {
		if acc.Claims.IsSuperAdmin() {
			holder = acc.UID
			return errSuperAdminFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errSuperAdminFound):
		if holder == caller.UID {
			// Claims were granted after the caller's token was minted.
			return &BootstrapResult{Success: true, AlreadySuperAdmin: true}, nil
		}
		return nil, apperrors.FailedPrecondition("a super admin already exists")
	case err != nil:
		return nil, apperrors.Internal("failed to list accounts", err)
	}

	claimed, err := s.markers.Claim(ctx, caller.UID)
	if err != nil {
		return nil, apperrors.Internal("failed to claim bootstrap", err)
	}
	if !claimed {
		marker, err := s.markers.Get(ctx)
		if err != nil {
			return nil, apperrors.Internal("failed to read bootstrap marker", err)
		}
		if marker == nil || marker.ClaimedBy != caller.UID {
			return nil, apperrors.FailedPrecondition("super admin bootstrap already claimed")
		}
		// An earlier attempt by this caller claimed the marker but never
		// granted the claims.
		s.logger.WarnContext(ctx, "resuming interrupted super admin bootstrap",
			slog.String("uid", caller.UID),
			slog.Time("claimed_at", marker.ClaimedAt),
		)
	}

	if err := s.accounts.SetClaims(ctx, caller.UID, domain.SuperAdminClaims()); err != nil {
		if relErr := s.markers.Release(ctx); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release bootstrap marker",
				slog.String("uid", caller.UID),
				slog.String("error", relErr.Error()),
			)
		}
		return nil, apperrors.Internal("failed to set super admin claims", err)
	}

	s.logger.InfoContext(ctx, "super admin bootstrapped",
		slog.String("uid", caller.UID),
	)
	return &BootstrapResult{Success: true}, nil
}
