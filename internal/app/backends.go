package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"github.com/deliverzler/functions/internal/config"
	"github.com/deliverzler/functions/internal/identity"
	fbidentity "github.com/deliverzler/functions/internal/identity/firebase"
	"github.com/deliverzler/functions/internal/identity/local"
	"github.com/deliverzler/functions/internal/repository"
	fsrepo "github.com/deliverzler/functions/internal/repository/firestore"
	"github.com/deliverzler/functions/internal/repository/postgres"
	"github.com/deliverzler/functions/migrations"
	"github.com/deliverzler/functions/pkg/breaker"
	"github.com/deliverzler/functions/pkg/database"
	"github.com/deliverzler/functions/pkg/health"
)

// Backends holds the document store and identity provider selected by the
// configuration. Fields for unselected backends are nil.
type Backends struct {
	Pool        *pgxpool.Pool
	FirebaseApp *firebase.App
	Firestore   *firestore.Client

	Reviews       repository.ReviewRepository
	Stores        repository.StoreRepository
	Users         repository.UserRepository
	Notifications repository.AdminNotificationRepository
	Markers       repository.BootstrapMarkerRepository

	Accounts identity.Provider
	// Tokens is set only for the local identity provider.
	Tokens *local.Provider
}

// OpenBackends connects to the configured document store and identity
// provider. On error everything opened so far is closed.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Backends, err error) {
	b := &Backends{}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	if cfg.UsesPostgres() {
		if err := b.openPostgres(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	if cfg.UsesFirebase() {
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		b.FirebaseApp, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
		if err != nil {
			return nil, fmt.Errorf("init firebase app: %w", err)
		}
		logger.Info("firebase app initialized", slog.String("project_id", cfg.FirebaseProjectID))
	}

	switch cfg.DocumentStore {
	case config.StoreFirestore:
		b.Firestore, err = b.FirebaseApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firestore client: %w", err)
		}
		b.Reviews = fsrepo.NewReviewRepository(b.Firestore)
		b.Stores = fsrepo.NewStoreRepository(b.Firestore)
		b.Users = fsrepo.NewUserRepository(b.Firestore)
		b.Notifications = fsrepo.NewAdminNotificationRepository(b.Firestore)
		b.Markers = fsrepo.NewBootstrapMarkerRepository(b.Firestore)
	default:
		b.Reviews = postgres.NewReviewRepository(b.Pool)
		b.Stores = postgres.NewStoreRepository(b.Pool)
		b.Users = postgres.NewUserRepository(b.Pool)
		b.Notifications = postgres.NewAdminNotificationRepository(b.Pool)
		b.Markers = postgres.NewBootstrapMarkerRepository(b.Pool)
	}
	logger.Info("document store selected", slog.String("store", cfg.DocumentStore))

	var accounts identity.Provider
	switch cfg.IdentityProvider {
	case config.IdentityFirebase:
		client, err := b.FirebaseApp.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firebase auth client: %w", err)
		}
		accounts = fbidentity.NewProvider(client)
	default:
		expiry, err := cfg.TokenExpiry()
		if err != nil {
			return nil, err
		}
		b.Tokens = local.NewProvider(b.Pool, local.NewTokenManager(cfg.JWTSecret, expiry))
		accounts = b.Tokens
	}
	b.Accounts = identity.NewGuarded(accounts, breaker.DefaultConfig("identity-"+cfg.IdentityProvider), logger)
	logger.Info("identity provider selected", slog.String("provider", cfg.IdentityProvider))

	return b, nil
}

func (b *Backends) openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	b.Pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "functions")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}
	return nil
}

// RegisterHealth adds a critical check for each open document store.
func (b *Backends) RegisterHealth(h *health.Handler) {
	if b.Pool != nil {
		h.RegisterCritical("postgres", func(ctx context.Context) error {
			return b.Pool.Ping(ctx)
		})
	}
	if b.Firestore != nil {
		h.RegisterCritical("firestore", func(ctx context.Context) error {
			return fsrepo.Ping(ctx, b.Firestore)
		})
	}
}

// Close releases every open connection.
func (b *Backends) Close() error {
	var errs []error
	if b.Firestore != nil {
		if err := b.Firestore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close firestore: %w", err))
		}
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
	return errors.Join(errs...)
}
