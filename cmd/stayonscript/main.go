package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/app"
	"github.com/stayonscript/stayonscript/internal/content"
	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/identity"
	"github.com/stayonscript/stayonscript/internal/observability"
	"github.com/stayonscript/stayonscript/internal/platform/cache"
	"github.com/stayonscript/stayonscript/internal/platform/db"
	"github.com/stayonscript/stayonscript/internal/shared"
	"github.com/stayonscript/stayonscript/internal/tenant"
	"github.com/stayonscript/stayonscript/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "stayonscript_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	store := docstore.NewPGStore(dbpool)

	accessCache := access.NewCache(redisClient, cfg.AccessCacheTTL, logger)
	grantStore := access.NewGrantStore(redisClient, cfg.ImpersonationTTL, logger)
	resolver := access.NewResolver(store, accessCache, logger)
	guard := access.Guard{
		Resolver: resolver,
		Grants:   grantStore,
		Logger:   logger,
		Observe:  metrics.ObserveGuardDecision,
	}
	accessHandler := access.NewHandler(logger, guard, grantStore, auditLogger)

	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(logger, identityService, sessionManager, csrfManager, accessCache, grantStore, auditLogger)

	tenantResolver := tenant.NewResolver(store, logger)
	tenantHandler := tenant.NewHandler(logger, tenantResolver, store, auditLogger)

	contentService := content.NewService(store, logger)
	contentHandler := content.NewHandler(logger, contentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		Metrics:         metrics,
		Guard:           guard,
		IdentityHandler: identityHandler,
		AccessHandler:   accessHandler,
		TenantHandler:   tenantHandler,
		ContentHandler:  contentHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
