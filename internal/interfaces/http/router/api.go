package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/handler"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

// Rate-limited operation classes
const (
	OpAuth         = "auth"
	OpInboxWrite   = "inbox_write"
	OpVerifyDomain = "verify_domain"
	OpQuotas       = "quotas"
	OpMonitoring   = "monitoring"
	OpMediaUpload  = "media_upload"
)

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	Logger         *zap.Logger
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the global chain installed.
// Order matters: the request id must exist before the access logger runs,
// and tracing must wrap everything that can fail.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanEnricher(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.SecureWithConfig(cfg.Security),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	return engine, nil
}

// Handlers groups the HTTP handlers mounted by Mount
type Handlers struct {
	Health   *handler.HealthHandler
	Site     *handler.SiteHandler
	Auth     *handler.AuthHandler
	Property *handler.PropertyHandler
	Content  *handler.ContentHandler
	Platform *handler.PlatformHandler
}

// Gates are the request gating components shared by the route groups
type Gates struct {
	Resolver            middleware.TenantResolver
	Sessions            middleware.SessionResolver
	Limiter             *middleware.RateLimiter
	CookieName          string
	TrustRoutingHeaders bool
}

// Mount registers /health and every /api/v1 group on engine
func Mount(engine *gin.Engine, h Handlers, g Gates) {
	engine.GET("/health", h.Health.Health)

	NewRouter(engine).
		Register(SiteGroup(h.Site, g)).
		Register(AuthGroup(h.Auth, g)).
		Register(AdminGroup(h.Property, h.Content, g)).
		Register(PlatformGroup(h.Platform, g)).
		Setup()
}

// SiteGroup is the guest API. The host decides the property.
func SiteGroup(h *handler.SiteHandler, g Gates) *DomainGroup {
	return NewDomainGroup("site", "/site").
		Use(
			middleware.TenantResolution(g.Resolver, middleware.TenantConfig{
				Context:             tenancy.ContextPublic,
				TrustRoutingHeaders: g.TrustRoutingHeaders,
			}),
			middleware.RequireTenant(),
		).
		GET("", h.GetSite).
		POST("/messages", g.Limiter.Limit(OpInboxWrite, middleware.KeyByTenantAndIP), h.SubmitMessage)
}

// AuthGroup needs no tenant: the property comes from the membership
func AuthGroup(h *handler.AuthHandler, g Gates) *DomainGroup {
	auth := middleware.PropertyAuth(g.Sessions, g.CookieName)
	return NewDomainGroup("auth", "/auth").
		POST("/login", g.Limiter.Limit(OpAuth, middleware.KeyByTenantAndIP), h.Login).
		POST("/logout", auth, h.Logout).
		GET("/me", auth, h.Me)
}

// AdminGroup is the staff console of the signed-in user's property
func AdminGroup(ph *handler.PropertyHandler, ch *handler.ContentHandler, g Gates) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(
			middleware.PropertyAuth(g.Sessions, g.CookieName),
			middleware.RequireProperty(),
		)

	admin.Group("property", "/property").
		GET("", ph.GetProperty).
		PUT("/domain", ph.RegisterDomain).
		DELETE("/domain", ph.RemoveDomain).
		POST("/domain/verify", g.Limiter.Limit(OpVerifyDomain, middleware.KeyByProperty), ph.VerifyDomain)

	admin.GET("/quotas", g.Limiter.Limit(OpQuotas, middleware.KeyByProperty), ph.GetQuotas)

	admin.Group("messages", "/messages").
		GET("", ch.ListMessages).
		PATCH("/:id", ch.UpdateMessageStatus)

	admin.Group("media", "/media").
		POST("/uploads", g.Limiter.Limit(OpMediaUpload, middleware.KeyByProperty), ch.RequestUpload).
		POST("/uploads/:id/complete", ch.CompleteUpload)

	return admin
}

// PlatformGroup is the super-admin console, served on the platform host only
func PlatformGroup(h *handler.PlatformHandler, g Gates) *DomainGroup {
	platform := NewDomainGroup("platform", "/platform").
		Use(
			middleware.TenantResolution(g.Resolver, middleware.TenantConfig{
				Context:             tenancy.ContextAdmin,
				TrustRoutingHeaders: g.TrustRoutingHeaders,
			}),
			middleware.RequirePlatform(),
			middleware.PropertyAuth(g.Sessions, g.CookieName),
			middleware.RequireSuperAdmin(),
		)

	monitor := g.Limiter.Limit(OpMonitoring, middleware.KeyByProperty)
	platform.Group("properties", "/properties").
		GET("", monitor, h.ListProperties).
		POST("", h.CreateProperty).
		GET("/:id", monitor, h.GetProperty).
		PATCH("/:id/plan", h.ChangePlan).
		PATCH("/:id/features", h.SetFeatures).
		POST("/:id/deactivate", h.Deactivate).
		POST("/:id/reactivate", h.Reactivate).
		GET("/:id/members", monitor, h.ListMembers).
		POST("/:id/members", h.AddMember).
		DELETE("/:id/members/:userId", h.RemoveMember)

	return platform
}
