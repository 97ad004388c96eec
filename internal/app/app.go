package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/featureflags-backend/internal/adapter/postgres"
	segmentrepo "github.com/heartmarshall/featureflags-backend/internal/adapter/postgres/segment"
	"github.com/heartmarshall/featureflags-backend/internal/audit"
	"github.com/heartmarshall/featureflags-backend/internal/auth"
	"github.com/heartmarshall/featureflags-backend/internal/config"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
	"github.com/heartmarshall/featureflags-backend/internal/service/segment"
	"github.com/heartmarshall/featureflags-backend/internal/transport/middleware"
	"github.com/heartmarshall/featureflags-backend/internal/transport/rest"
)

// Run is the application entry point. It wires configuration, storage, the
// permission policy, activity subscribers and the HTTP server, and blocks
// until ctx is canceled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		db := stdlib.OpenDBFromPool(pool)
		err := postgres.Migrate(ctx, db, logger)
		_ = db.Close()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pol, err := policy.LoadFile(cfg.Policy.Path)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			postgres.NewPoolCollector(pool),
		)
	}

	subs, err := buildSubscribers(ctx, cfg.Audit, logger, pool, reg)
	if err != nil {
		return err
	}
	defer subs.close()

	emitter := audit.NewEmitter(logger, audit.Config{
		BufferSize:     cfg.Audit.BufferSize,
		HandlerTimeout: cfg.Audit.HandlerTimeout,
	}, subs.list...)
	if subs.metrics != nil {
		subs.metrics.Observe(emitter)
	}

	segments := segment.NewService(
		logger,
		segmentrepo.New(pool),
		policy.NewResolver(pol),
		emitter,
		postgres.NewTxManager(pool),
	)

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	deps := rest.RouterDeps{
		Log:      logger,
		Health:   rest.NewHealthHandler(Version, pool, subs.probes...),
		Segments: rest.NewSegmentHandler(segments, logger),
		Auth:     middleware.Auth(jwt),
	}
	if reg != nil {
		// assigned conditionally so a nil registry stays a nil interface
		deps.Gatherer = reg
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      rest.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		// Requests are drained, so no new events can arrive.
		if err := emitter.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("application stopped with error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("application stopped")
	return nil
}
