// Package router wires the HTTP engine, middleware stack and route
// groups together.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds the dependencies needed to build the engine
type Config struct {
	AppConfig      *config.Config
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// New creates a gin engine with the standard middleware stack and wraps
// it in a Router.
func New(cfg Config) *Router {
	if cfg.AppConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.AppConfig.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.AppConfig.HTTP.TrustedProxies)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AppConfig.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AppConfig.HTTP.CORSAllowOrigins
	}
	if len(cfg.AppConfig.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.AppConfig.HTTP.CORSAllowMethods
	}
	if len(cfg.AppConfig.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.AppConfig.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
	)

	jwtCfg := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtCfg.TokenBlacklist = cfg.TokenBlacklist
	jwtCfg.Logger = cfg.Logger
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	engine.GET("/health", healthCheck)
	engine.GET("/api/v1/health", healthCheck)

	return &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
}
