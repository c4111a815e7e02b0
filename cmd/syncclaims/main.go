// Command syncclaims copies the role of every admin and super admin user
// record onto the custom claims of its account.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deliverzler/functions/internal/app"
	"github.com/deliverzler/functions/internal/config"
	"github.com/deliverzler/functions/internal/service"
	pkgconfig "github.com/deliverzler/functions/pkg/config"
	"github.com/deliverzler/functions/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report the accounts that would be updated without writing claims")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline for the sync")
	flag.Parse()

	if err := run(*dryRun, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "syncclaims: %v\n", err)
		os.Exit(1)
	}
}

func run(dryRun bool, timeout time.Duration) error {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New("syncclaims", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	backends, err := app.OpenBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("close backends", slog.String("error", err.Error()))
		}
	}()

	report, err := service.NewClaimsSyncService(backends.Users, backends.Accounts, log).SyncClaims(ctx, dryRun)
	if err != nil {
		return err
	}

	verb := "updated"
	if report.DryRun {
		verb = "would update"
	}
	fmt.Printf("%s %d super admin and %d admin accounts\n", verb, report.SuperAdmins, report.Admins)
	return nil
}
