package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
	"github.com/deliverzler/functions/internal/repository"
)

// ClaimsSyncReport counts the accounts a sync updated, or would update in a
// dry run.
type ClaimsSyncReport struct {
	SuperAdmins int
	Admins      int
	DryRun      bool
}

// ClaimsSyncService copies roles from user records onto account claims. It
// backfills claims for admins created before claims were enforced.
type ClaimsSyncService struct {
	users    repository.UserRepository
	accounts identity.Provider
	logger   *slog.Logger
}

// NewClaimsSyncService creates a new claims sync service.
func NewClaimsSyncService(users repository.UserRepository, accounts identity.Provider, logger *slog.Logger) *ClaimsSyncService {
	return &ClaimsSyncService{
		users:    users,
		accounts: accounts,
		logger:   logger,
	}
}

// SyncClaims sets super admin claims for every superAdmin record, then admin
// claims for every admin record. It stops at the first failure.
func (s *ClaimsSyncService) SyncClaims(ctx context.Context, dryRun bool) (*ClaimsSyncReport, error) {
	report := &ClaimsSyncReport{DryRun: dryRun}

	for _, role := range []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin} {
		users, err := s.users.ListByRole(ctx, role)
		if err != nil {
			return report, fmt.Errorf("list %s records: %w", role, err)
		}

		claims := domain.ClaimsForRole(role)
		for _, u := range users {
			s.logger.InfoContext(ctx, "setting claims",
				slog.String("uid", u.ID),
				slog.String("email", u.Email),
				slog.String("role", role.String()),
				slog.Bool("dry_run", dryRun),
			)
			if !dryRun {
				if err := s.accounts.SetClaims(ctx, u.ID, claims); err != nil {
					return report, fmt.Errorf("set claims for %s: %w", u.ID, err)
				}
			}
			if role == domain.RoleSuperAdmin {
				report.SuperAdmins++
			} else {
				report.Admins++
			}
		}
	}

	return report, nil
}
