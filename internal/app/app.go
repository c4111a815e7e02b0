package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deliverzler/functions/internal/config"
	"github.com/deliverzler/functions/internal/event"
	handler "github.com/deliverzler/functions/internal/handler/http"
	"github.com/deliverzler/functions/internal/messaging"
	"github.com/deliverzler/functions/internal/messaging/fcm"
	kafkasender "github.com/deliverzler/functions/internal/messaging/kafka"
	"github.com/deliverzler/functions/internal/service"
	"github.com/deliverzler/functions/pkg/breaker"
	"github.com/deliverzler/functions/pkg/database"
	"github.com/deliverzler/functions/pkg/health"
	pkgkafka "github.com/deliverzler/functions/pkg/kafka"
	"github.com/deliverzler/functions/pkg/tracing"
)

// App wires together all dependencies and runs the callable server and the
// trigger consumers.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backends       *Backends
	redis          *redis.Client
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.closeResources()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a.backends, err = OpenBackends(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Idempotency store for trigger deliveries.
	var store pkgkafka.IdempotencyStore
	if redisCfg := cfg.Redis(); redisCfg != nil {
		a.redis, err = database.NewRedisClient(ctx, *redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		store = pkgkafka.NewRedisIdempotencyStore(a.redis, cfg.IdempotencyTTL)
	} else {
		logger.Warn("REDIS_HOST not set, using in-memory idempotency store")
		store = pkgkafka.NewMemoryIdempotencyStore(cfg.IdempotencyTTL)
	}

	sender, err := a.newSender(ctx)
	if err != nil {
		return nil, err
	}

	// Build the dependency graph.
	b := a.backends
	ratingService := service.NewRatingService(b.Reviews, b.Stores, logger)
	orderNotifier := service.NewOrderNotifier(sender, cfg.NotificationTopic, logger)
	driverNotifier := service.NewDriverNotifier(b.Users, b.Notifications, logger)
	adminService := service.NewAdminService(b.Accounts, b.Users, b.Markers, logger)

	// Kafka trigger consumers.
	consumerHandler := event.NewConsumerHandler(ratingService, orderNotifier, driverNotifier, logger)
	a.consumers = event.NewConsumers(event.ConsumerSettings{
		Brokers:      cfg.KafkaBrokers,
		GroupID:      cfg.KafkaConsumerGroup,
		MaxAttempts:  cfg.KafkaMaxAttempts,
		RetryBackoff: cfg.KafkaRetryBackoff,
	}, consumerHandler, store, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	b.RegisterHealth(healthHandler)
	if a.redis != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// The token route exists only for the local identity provider.
	var tokens handler.TokenIssuer
	if b.Tokens != nil {
		tokens = b.Tokens
	}

	// HTTP router.
	router := handler.NewRouter(
		adminService,
		handler.Verifier(b.Accounts),
		tokens,
		handler.RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		healthHandler,
		logger,
	)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// newSender builds the configured topic sender behind a circuit breaker.
func (a *App) newSender(ctx context.Context) (messaging.TopicSender, error) {
	var next messaging.TopicSender
	switch a.cfg.MessagingProvider {
	case config.MessagingFCM:
		client, err := a.backends.FirebaseApp.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firebase messaging client: %w", err)
		}
		next = fcm.NewSender(client, a.logger)
	default:
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
		a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
		next = kafkasender.NewSender(a.producer, a.logger)
	}
	a.logger.Info("messaging provider selected", slog.String("provider", a.cfg.MessagingProvider))
	return messaging.NewGuarded(next, breaker.DefaultConfig("messaging-"+a.cfg.MessagingProvider), a.logger), nil
}

// Run starts the HTTP server and Kafka consumers, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start Kafka consumers.
	for _, c := range a.consumers {
		go func() {
			a.logger.Info("starting trigger consumer", slog.String("topic", c.Topic()))
			if err := c.Start(ctx); err != nil {
				a.logger.Error("kafka consumer error",
					slog.String("topic", c.Topic()),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight calls)
// 2. Kafka consumers (finish in-flight triggers)
// 3. Tracer (flush pending spans)
// 4. Producer, Redis and document stores
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (10s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Close Kafka consumers.
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Flush pending spans after the drain so in-flight spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Release connections.
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases the producer, Redis and the document stores.
func (a *App) closeResources() error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.backends != nil {
		if err := a.backends.Close(); err != nil {
			a.logger.Error("document store close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
