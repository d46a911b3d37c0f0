// Command server runs the back-office API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/backoffice/internal/application/partnerimport"
	"github.com/erp/backoffice/internal/application/records"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/organization"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/sheet"
	"github.com/erp/backoffice/internal/infrastructure/storage"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/erp/backoffice/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const maxImportRows = 5000

func main() {
	configFile := flag.String("config", "", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg.ForEnvironment(cfg.App.Env))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting back-office API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logExport, err := telemetry.NewLogExport(ctx, cfg.Telemetry, version)
	if err != nil {
		return err
	}
	defer func() { _ = logExport.Shutdown(context.Background()) }()
	log = logExport.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	tracing, err := telemetry.NewTracing(ctx, cfg.Telemetry, version, log.Named("telemetry"))
	if err != nil {
		return err
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down tracing", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log.Named("gorm"), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))
	if err := telemetry.TraceDatabase(db.DB, db.Driver, cfg.Telemetry, tracing.Provider(), log.Named("telemetry")); err != nil {
		return fmt.Errorf("failed to enable database tracing: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			return err
		}
	}

	store := cache.NewStore(ctx, cfg.Redis, log)
	defer func() { _ = store.Close() }()

	svcs := records.NewServices(records.Repositories{
		Partners:  persistence.NewGormRepository[partner.Partner](db.DB),
		Cotations: persistence.NewGormRepository[trade.Cotation](db.DB),
		Tenders:   persistence.NewGormRepository[trade.Tender](db.DB),
		Offerings: persistence.NewGormRepository[catalog.Offering](db.DB),
		Members:   persistence.NewGormRepository[organization.Member](db.DB),
		Offices:   persistence.NewGormRepository[organization.Office](db.DB),
		Visitors:  persistence.NewGormRepository[identity.Visitor](db.DB),
	}, records.WithCache(store, cfg.Redis.ListTTL), records.WithLogger(log.Named("records")))

	workbook := sheet.Excel{MaxRows: maxImportRows}
	importOpts := []partnerimport.Option{
		partnerimport.WithTTL(cfg.Import.SessionTTL),
		partnerimport.WithLogger(log.Named("import")),
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3Archive(ctx, &cfg.Storage, storage.WithLogger(log.Named("storage")))
		if err != nil {
			return err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return err
		}
		importOpts = append(importOpts, partnerimport.WithArchive(archive))
	}
	importer := partnerimport.NewService(workbook, store, svcs.Partners, importOpts...)

	policy, err := auth.NewPolicy(cfg.Auth.PolicyPath)
	if err != nil {
		return err
	}
	authenticator := auth.NewAuthenticator(cfg.Auth.Admins, auth.NewJWTService(cfg.JWT), auth.NewRevocations(store))
	if len(cfg.Auth.Admins) == 0 {
		log.Warn("No admin account configured, every login will be rejected")
	}

	metrics := telemetry.NewMetrics("backoffice")

	observers := []gin.HandlerFunc{metrics.GinMiddleware()}
	if tracing.Enabled() {
		observers = append(observers, middleware.Tracing(cfg.Telemetry.ServiceName, tracing.Provider())...)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log.Named("http"),
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MaxUploadSize:  cfg.HTTP.MaxUploadSize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Observe:        observers,
	})
	if err != nil {
		return fmt.Errorf("failed to build HTTP engine: %w", err)
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}
	health := handler.NewHealthHandler(version, checks)
	engine.GET("/health", health.Health)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	r := router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		Authenticator: authenticator,
		SkipPaths:     []string{"/api/v1/auth/login"},
		Logger:        log.Named("auth"),
	})))
	r.Register(router.APIRoutes(router.Dependencies{
		Records:       svcs,
		Importer:      importer,
		Authenticator: authenticator,
		Permissions:   policy,
		Workbook:      workbook,
		Metrics:       metrics,
		MaxUpload:     cfg.HTTP.MaxUploadSize,
		Logger:        log.Named("http"),
	})...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, db.Driver, migrations.FS, log.Named("migrate"))
	if err != nil {
		return err
	}
	return m.Up()
}
