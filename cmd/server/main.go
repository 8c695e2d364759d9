package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	billingapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/billing"
	identityapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/identity"
	inboxapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/inbox"
	mediaapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/auth"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/cache"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/dns"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/event"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/ratelimit"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/scheduler"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/storage"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/telemetry"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/handler"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/router"
)

const version = "1.0.0"

//	@title			Hotel Accelerator API
//	@version		1.0
//	@description	Multi-tenant hotel platform: guest sites, staff console and super-admin console

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token or the session cookie. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.Telemetry.ServiceName)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Hotel Accelerator backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("root_domain", cfg.Tenancy.RootDomain),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	clk := clock.New()

	// Telemetry first so the DB plugin and HTTP middleware see the providers
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	metrics, err := telemetry.NewGatingMetrics(meterProvider.Meter("hotel/gating"))
	if err != nil {
		log.Fatal("Failed to create gating metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis is optional; every Redis-backed component has an in-process fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = persistence.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	objectRepo := persistence.NewGormStorageObjectRepository(db.DB)
	usageReader := persistence.NewGormUsageReader(db.DB)

	// Property cache and its invalidation paths
	propertyCache, err := cache.NewPropertyCache(cfg.Tenancy.CacheMaxEntries, cfg.Tenancy.CacheTTL)
	if err != nil {
		log.Fatal("Failed to create property cache", zap.Error(err))
	}
	var (
		broadcaster cache.Broadcaster
		invalidator *cache.RedisInvalidator
	)
	if redisClient != nil {
		invalidator = cache.NewRedisInvalidator(redisClient, propertyCache, cache.WithInvalidatorLogger(log))
		broadcaster = invalidator
	}
	lookup := cache.NewCachedPropertyLookup(propertyRepo, propertyCache)

	eventBus := event.NewInMemoryEventBus(log)
	invalidation := cache.NewInvalidationHandler(propertyCache, broadcaster, log)
	eventBus.Subscribe(invalidation, invalidation.EventTypes()...)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Tenancy
	resolverCfg, err := tenancy.ResolverConfigFrom(cfg.Tenancy)
	if err != nil {
		log.Fatal("Invalid tenancy configuration", zap.Error(err))
	}
	tenantResolver := tenancy.NewResolver(lookup, resolverCfg, log, tenancy.WithResolutionMetrics(metrics))

	txtResolver := dns.NewResolver(dns.Config{
		Nameservers: cfg.DNS.Nameservers,
		Timeout:     cfg.DNS.Timeout,
		Observer:    metrics,
	}, log)
	verifier := tenancy.NewVerifier(propertyRepo, txtResolver, eventBus, tenancy.VerifierConfig{
		Timeout: cfg.DNS.Timeout,
		Clock:   clk,
	}, log, tenancy.WithVerificationMetrics(metrics))
	adminService := tenancy.NewAdminService(propertyRepo, eventBus, resolverCfg, log, tenancy.WithAdminClock(clk))

	// Sessions
	jwtService := auth.NewJWTService(cfg.JWT, clk)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient, clk)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist(clk)
	}
	sessions := tenancy.NewPropertyResolver(jwtService, blacklist, userRepo, membershipRepo, propertyRepo, log)

	// Quotas and the services they gate
	quotaCfg, err := billingapp.QuotaServiceConfigFrom(cfg.Quota)
	if err != nil {
		log.Fatal("Invalid quota configuration", zap.Error(err))
	}
	quotaService := billingapp.NewQuotaService(propertyRepo, usageReader, quotaCfg, log, billingapp.WithMetrics(metrics))
	messageService := inboxapp.NewMessageService(messageRepo, quotaService, log)

	var objectStorage mediaapp.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("No storage bucket configured, media uploads use the in-process stub")
		objectStorage = storage.NewStubObjectStorage()
	}
	uploadCfg := mediaapp.DefaultUploadServiceConfig()
	if cfg.Storage.PresignExpiry > 0 {
		uploadCfg.URLExpiry = cfg.Storage.PresignExpiry
	}
	uploadService := mediaapp.NewUploadService(objectRepo, objectStorage, quotaService, uploadCfg, log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, clk, log)
	memberService := identityapp.NewMemberService(
		userRepo, membershipRepo, propertyRepo, quotaService, blacklist, cfg.JWT.SessionDuration, log,
	)

	// Rate limiting
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Backend == "redis" && redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, "hotel:rl", clk)
	} else {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.WithMaxKeys(cfg.RateLimit.MaxKeys), ratelimit.WithClock(clk))
	}
	rules := make(map[string]ratelimit.Rule, len(cfg.RateLimit.Rules))
	for op, r := range cfg.RateLimit.Rules {
		rules[op] = ratelimit.Rule{Window: r.Window, MaxRequests: r.MaxRequests}
	}
	rateLimiter := middleware.NewRateLimiter(limiter, rules, metrics, cfg.RateLimit.Enabled)

	// Background work
	reverify := scheduler.NewDomainReverifyScheduler(verifier, log, scheduler.DomainReverifySchedulerConfig{
		Enabled:  cfg.DNS.ReverifyEnabled && cfg.DNS.ReverifyInterval > 0,
		Interval: cfg.DNS.ReverifyInterval,
		Clock:    clk,
	})
	if err := reverify.Start(ctx); err != nil {
		log.Fatal("Failed to start domain re-verification", zap.Error(err))
	}

	invalidatorCtx, stopInvalidator := context.WithCancel(ctx)
	if invalidator != nil {
		go func() {
			if err := invalidator.Run(invalidatorCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Cache invalidation subscriber stopped", zap.Error(err))
			}
		}()
	}

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validator", zap.Error(err))
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.Cookie.Secure
	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS:           middleware.CORSConfigFrom(cfg.HTTP),
		Security:       security,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.Mount(engine, router.Handlers{
		Health:   handler.NewHealthHandler(db, version),
		Site:     handler.NewSiteHandler(messageService),
		Auth:     handler.NewAuthHandler(authService, cfg.Cookie),
		Property: handler.NewPropertyHandler(adminService, verifier, quotaService),
		Content:  handler.NewContentHandler(messageService, uploadService),
		Platform: handler.NewPlatformHandler(adminService, memberService),
	}, router.Gates{
		Resolver:            tenantResolver,
		Sessions:            sessions,
		Limiter:             rateLimiter,
		CookieName:          cfg.Cookie.Name,
		TrustRoutingHeaders: cfg.Tenancy.TrustRoutingHeaders,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := reverify.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping domain re-verification", zap.Error(err))
	}
	stopInvalidator()
	if invalidator != nil {
		if err := invalidator.Close(); err != nil {
			log.Error("Error closing cache invalidation subscriber", zap.Error(err))
		}
	}
	propertyCache.Close()
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
